package factory

import (
	"context"
	"time"

	"github.com/mcoot/conquest-go/internal/dependencies/mocks"
	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/auth"
	"github.com/mcoot/conquest-go/internal/storage/memory"
	"github.com/mcoot/conquest-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, auth.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// Initialize sets up the registry and a profile for each named player
func (t *TestApp) Initialize(ctx context.Context, players ...model.PlayerID) error {
	if _, err := t.RegistryService.InitializeProgram(ctx); err != nil {
		return err
	}
	for _, p := range players {
		if _, err := t.RegistryService.CreatePlayerProfile(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
