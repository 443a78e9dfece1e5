package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeptutor/ragdoctor/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePipeline struct{ id string }

func (f fakePipeline) ID() string { return f.id }
func (f fakePipeline) Query(_ context.Context, _ Request) (*Result, error) {
	return &Result{Answer: "ok"}, nil
}

func fakeBuilder(id string) Builder {
	return func(_ *config.Config, _ *slog.Logger) (Pipeline, error) {
		return fakePipeline{id: id}, nil
	}
}

func TestEmptyRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.List())
	assert.False(t, reg.Has("anything"))

	_, err := reg.Get("anything", &config.Config{}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown id")
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{ID: "alpha", Name: "Alpha"}, fakeBuilder("alpha"))
	reg.Register(Descriptor{ID: "beta", Name: "Beta"}, fakeBuilder("beta"))

	descs := reg.List()
	require.Len(t, descs, 2)
	assert.Equal(t, "alpha", descs[0].ID)
	assert.Equal(t, "beta", descs[1].ID)

	require.True(t, reg.Has("beta"))

	pl, err := reg.Get("alpha", &config.Config{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "alpha", pl.ID())
}

func TestRegisterDuplicatePanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{ID: "dup"}, fakeBuilder("dup"))
	assert.Panics(t, func() {
		reg.Register(Descriptor{ID: "dup"}, fakeBuilder("dup"))
	})
}

func TestBuilderErrorPropagates(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{ID: "broken"}, func(_ *config.Config, _ *slog.Logger) (Pipeline, error) {
		return nil, errors.New("collaborator missing")
	})

	_, err := reg.Get("broken", &config.Config{}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collaborator missing")
}

func TestDefaultRegistryContents(t *testing.T) {
	// Engine-backed pipelines register from the engine packages; only the
	// engine-free llamaindex pipeline is unconditionally present.
	ids := make([]string, 0)
	for _, d := range Default.List() {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, "llamaindex")
	assert.NotContains(t, ids, "raganything")
	assert.NotContains(t, ids, "lightrag")
}

type fakeLLM struct {
	lastSystem string
	lastPrompt string
	answer     string
	err        error
	calls      int
}

func (f *fakeLLM) Complete(_ context.Context, system, prompt string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastPrompt = prompt
	return f.answer, f.err
}

func (f *fakeLLM) Model() string { return "fake" }

func TestSynthesizeEmptyPassages(t *testing.T) {
	gen := &fakeLLM{answer: "should not be used"}
	answer, err := Synthesize(context.Background(), gen, AnswerSystemPrompt, "what?", nil)
	require.NoError(t, err)
	assert.Empty(t, answer)
	assert.Zero(t, gen.calls, "model must not be called without retrieved context")
}

func TestSynthesizeNumbersContext(t *testing.T) {
	gen := &fakeLLM{answer: "entropy increases"}
	answer, err := Synthesize(context.Background(), gen, AnswerSystemPrompt, "what about entropy?",
		[]string{"first passage", "second passage"})
	require.NoError(t, err)
	assert.Equal(t, "entropy increases", answer)
	assert.Equal(t, AnswerSystemPrompt, gen.lastSystem)
	assert.Contains(t, gen.lastPrompt, "[1] first passage")
	assert.Contains(t, gen.lastPrompt, "[2] second passage")
	assert.Contains(t, gen.lastPrompt, "Question: what about entropy?")
}

func TestSynthesizeModelError(t *testing.T) {
	gen := &fakeLLM{err: errors.New("rate limited")}
	_, err := Synthesize(context.Background(), gen, AnswerSystemPrompt, "q", []string{"p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestNormalizeTopK(t *testing.T) {
	assert.Equal(t, defaultTopK, NormalizeTopK(0))
	assert.Equal(t, defaultTopK, NormalizeTopK(-3))
	assert.Equal(t, 9, NormalizeTopK(9))
}
