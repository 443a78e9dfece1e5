package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeptutor/ragdoctor/internal/config"
)

type stubEngine struct{ name string }

func (s stubEngine) Name() string                  { return s.name }
func (s stubEngine) Describe() string              { return "stub" }
func (s stubEngine) Ready(_ context.Context) error { return nil }
func (s stubEngine) Close() error                  { return nil }

func stubFactory(name string) Factory {
	return func(_ *config.Config, _ *slog.Logger) (Engine, error) {
		return stubEngine{name: name}, nil
	}
}

func TestRegisterAndOpen(t *testing.T) {
	Register("stub-a", stubFactory("stub-a"))
	Register("stub-b", stubFactory("stub-b"))

	assert.True(t, Registered("stub-a"))
	assert.False(t, Registered("nonexistent"))

	names := Names()
	assert.Contains(t, names, "stub-a")
	assert.Contains(t, names, "stub-b")
	assert.IsIncreasing(t, names)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := Open("stub-a", &config.Config{}, logger)
	require.NoError(t, err)
	assert.Equal(t, "stub-a", eng.Name())
	require.NoError(t, eng.Ready(context.Background()))
	require.NoError(t, eng.Close())
}

func TestOpenUnknown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := Open("never-registered", &config.Config{}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not compiled")
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	Register("stub-dup", stubFactory("stub-dup"))
	assert.Panics(t, func() {
		Register("stub-dup", stubFactory("stub-dup"))
	})
}
