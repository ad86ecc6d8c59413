package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

func TestCompleteEchoesFirstSource(t *testing.T) {
	svc := NewGenerationService()
	prompt := "CONTEXT:\n[Source 1]\nThe redemption fee is 2.5% of proceeds.\n\n[Source 2]\nOther text.\n\nQUESTION: fee?\n\nANSWER:"

	completion, err := svc.Complete(context.Background(), prompt, driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Contains(t, completion.Text, "Based on the fund documents")
	assert.Contains(t, completion.Text, "The redemption fee is 2.5% of proceeds.")
	assert.NotContains(t, completion.Text, "Other text")
	assert.Equal(t, Model, completion.Model)
	assert.Positive(t, completion.TokensUsed)
}

func TestCompleteWithoutContext(t *testing.T) {
	svc := NewGenerationService()

	completion, err := svc.Complete(context.Background(), "QUESTION: anything?\n\nANSWER:", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "I cannot find this information in the provided documents.", completion.Text)
}

func TestCompleteDeterministic(t *testing.T) {
	svc := NewGenerationService()
	prompt := "[Source 1]\nStable content.\nQUESTION: q\nANSWER:"

	a, err := svc.Complete(context.Background(), prompt, driven.GenerateOptions{})
	require.NoError(t, err)
	b, err := svc.Complete(context.Background(), prompt, driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPing(t *testing.T) {
	assert.NoError(t, NewGenerationService().Ping(context.Background()))
}
