package rag

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePipeline struct {
	id      string
	answer  string
	err     error
	lastReq pipeline.Request
}

func (f *fakePipeline) ID() string { return f.id }
func (f *fakePipeline) Query(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Result{Answer: f.answer, Sources: []string{"doc.pdf"}}, nil
}

func testRegistry(pl *fakePipeline) *pipeline.Registry {
	reg := pipeline.NewRegistry()
	reg.Register(pipeline.Descriptor{ID: pl.id, Name: pl.id},
		func(_ *config.Config, _ *slog.Logger) (pipeline.Pipeline, error) {
			return pl, nil
		})
	return reg
}

func TestSearchValidation(t *testing.T) {
	pl := &fakePipeline{id: "raganything", answer: "fine"}
	reg := testRegistry(pl)
	cfg := &config.Config{Provider: "raganything"}

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"empty query", Request{KBName: "kb1"}, "query must not be empty"},
		{"empty kb", Request{Query: "q"}, "knowledge base name must not be empty"},
		{"unknown provider", Request{Query: "q", KBName: "kb1", Provider: "nope"}, `unknown provider "nope"`},
		{"invalid mode", Request{Query: "q", KBName: "kb1", Mode: "turbo"}, `invalid mode "turbo"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Search(context.Background(), reg, cfg, testLogger(), tt.req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSearchProviderFallback(t *testing.T) {
	pl := &fakePipeline{id: "raganything", answer: "the main topic is entropy"}
	reg := testRegistry(pl)
	cfg := &config.Config{Provider: "raganything"}

	res, err := Search(context.Background(), reg, cfg, testLogger(), Request{
		Query:  "What is the main topic?",
		KBName: "physics",
	})
	require.NoError(t, err)
	assert.Equal(t, "raganything", res.Provider)
	assert.Equal(t, "physics", res.KBName)
	assert.Equal(t, "the main topic is entropy", res.Answer)
	assert.Equal(t, []string{"doc.pdf"}, res.Sources)

	// Mode defaults to naive when the request leaves it blank.
	assert.Equal(t, "naive", pl.lastReq.Mode)
	assert.Equal(t, "physics", pl.lastReq.KB)
}

func TestSearchEmptyAnswerIsNotAnError(t *testing.T) {
	pl := &fakePipeline{id: "raganything", answer: ""}
	reg := testRegistry(pl)
	cfg := &config.Config{Provider: "raganything"}

	res, err := Search(context.Background(), reg, cfg, testLogger(), Request{
		Query:  "q",
		KBName: "kb1",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Answer)
}

func TestSearchPipelineError(t *testing.T) {
	pl := &fakePipeline{id: "raganything", err: errors.New("qdrant unreachable")}
	reg := testRegistry(pl)
	cfg := &config.Config{Provider: "raganything"}

	_, err := Search(context.Background(), reg, cfg, testLogger(), Request{
		Query:  "q",
		KBName: "kb1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qdrant unreachable")
}

func TestSearchConstructionError(t *testing.T) {
	reg := pipeline.NewRegistry()
	reg.Register(pipeline.Descriptor{ID: "broken"},
		func(_ *config.Config, _ *slog.Logger) (pipeline.Pipeline, error) {
			return nil, errors.New("no embedder")
		})
	cfg := &config.Config{Provider: "broken"}

	_, err := Search(context.Background(), reg, cfg, testLogger(), Request{
		Query:  "q",
		KBName: "kb1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constructing pipeline")
}
