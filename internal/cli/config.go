package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	PIN       string
	Output    string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("TMH_SERVER", "http://localhost:8080"),
		PIN:       os.Getenv("TMH_PIN"),
		Output:    "text",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
