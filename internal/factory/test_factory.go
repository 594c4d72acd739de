package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/trackmyhand/internal/dependencies/mocks"
	"github.com/mcoot/trackmyhand/internal/metrics"
	"github.com/mcoot/trackmyhand/internal/services/game"
	"github.com/mcoot/trackmyhand/internal/services/profile"
	"github.com/mcoot/trackmyhand/internal/services/tracker"
	"github.com/mcoot/trackmyhand/internal/storage/memory"
	"github.com/mcoot/trackmyhand/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockPredictor *mocks.MockPredictor
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockPredictor := mocks.NewMockPredictor()

	profileCfg := profile.DefaultConfig()
	profileCfg.BcryptCost = bcrypt.MinCost

	app := newWithDependencies(store, mockClock, mockRandom, mockPredictor, metrics.New(), testutil.NopLogger(),
		game.DefaultConfig(), profileCfg, tracker.DefaultConfig())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockPredictor: mockPredictor,
	}
}
