package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	// Run from an empty directory so a stray .env is never picked up
	s.T().Chdir(s.T().TempDir())
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load()
	s.Require().NoError(err)

	s.Equal(StorageMemory, cfg.Storage)
	s.Equal(8080, cfg.HTTPPort)
	s.Equal(time.Second, cfg.TickInterval)

	buyIn, err := cfg.BuyIn()
	s.Require().NoError(err)
	s.Equal("5", buyIn.String())

	level, err := cfg.SlogLevel()
	s.Require().NoError(err)
	s.Equal(slog.LevelInfo, level)
}

func (s *ConfigSuite) TestEnvironmentOverrides() {
	s.T().Setenv("TMH_STORAGE", "sqlite")
	s.T().Setenv("TMH_SQLITE_PATH", "/tmp/x.db")
	s.T().Setenv("TMH_TICK_INTERVAL", "250ms")
	s.T().Setenv("TMH_LOG_LEVEL", "debug")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(StorageSQLite, cfg.Storage)
	s.Equal("/tmp/x.db", cfg.SQLitePath)
	s.Equal(250*time.Millisecond, cfg.TickInterval)

	level, err := cfg.SlogLevel()
	s.Require().NoError(err)
	s.Equal(slog.LevelDebug, level)
}

func (s *ConfigSuite) TestDotEnvFile() {
	path := filepath.Join(s.T().TempDir(), "test.env")
	s.Require().NoError(os.WriteFile(path, []byte("TMH_HTTP_PORT=9090\nTMH_DEFAULT_BUY_IN=10\n"), 0o600))
	s.T().Cleanup(func() {
		_ = os.Unsetenv("TMH_HTTP_PORT")
		_ = os.Unsetenv("TMH_DEFAULT_BUY_IN")
	})

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal(9090, cfg.HTTPPort)
	s.Equal("10", cfg.DefaultBuyIn)
}

func (s *ConfigSuite) TestRejectsUnknownStorage() {
	s.T().Setenv("TMH_STORAGE", "postgres")
	_, err := Load()
	s.Error(err)
}

func (s *ConfigSuite) TestRejectsBadBuyIn() {
	s.T().Setenv("TMH_DEFAULT_BUY_IN", "0")
	_, err := Load()
	s.Error(err)

	s.T().Setenv("TMH_DEFAULT_BUY_IN", "2.555")
	_, err = Load()
	s.Error(err)
}

func (s *ConfigSuite) TestRejectsBadDuration() {
	s.T().Setenv("TMH_TICK_INTERVAL", "soon")
	_, err := Load()
	s.Error(err)
}
