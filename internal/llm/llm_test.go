package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Greater(t, EstimateTokens("one two three four five"), 0)
	// Longer text estimates more tokens.
	short := EstimateTokens("hello world")
	long := EstimateTokens(strings.Repeat("hello world ", 50))
	assert.Greater(t, long, short)
}

func TestFitBudget(t *testing.T) {
	assert.Equal(t, "", FitBudget("anything", 0))

	// Text within budget is unchanged.
	assert.Equal(t, "short text", FitBudget("short text", 100))

	// Text over budget gets truncated at a word boundary with an ellipsis.
	long := strings.Repeat("word ", 2000)
	got := FitBudget(long, 100)
	assert.Less(t, len(got), len(long))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.NotContains(t, strings.TrimSuffix(got, "..."), "wor ")
}
