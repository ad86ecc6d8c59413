package bm25

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

func chunk(id, content string) domain.Chunk {
	return domain.Chunk{ID: id, Content: content}
}

func TestTokenise(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "lowercases and splits on punctuation",
			input:    "The Fund's fee: 2.5%!",
			expected: []string{"the", "fund", "s", "fee", "2", "5"},
		},
		{
			name:     "empty input",
			input:    "  ,.; ",
			expected: nil,
		},
		{
			name:     "digits kept",
			input:    "NAV 104.25 USD",
			expected: []string{"nav", "104", "25", "usd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenise(tt.input))
		})
	}
}

func TestScoreEmptyIndex(t *testing.T) {
	idx := New()

	hits, err := idx.Score(context.Background(), "redemption fee")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestScoreRanksTermMatches(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("c1", "The redemption fee is 2.5% of NAV. The redemption window closes quarterly."),
		chunk("c2", "The fund invests in European government bonds."),
		chunk("c3", "A redemption request must be submitted in writing."),
	}))

	hits, err := idx.Score(ctx, "redemption fee")
	require.NoError(t, err)

	require.Len(t, hits, 2, "only chunks containing a query term are scored")
	assert.Equal(t, "c1", hits[0].ChunkID, "chunk matching both terms ranks first")
	assert.Equal(t, "c3", hits[1].ChunkID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestScoreConsistentTokenisation(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("c1", "Management Fee: 1.2% per annum"),
	}))

	// Query casing and punctuation must not matter.
	for _, q := range []string{"management fee", "MANAGEMENT FEE", "management-fee?"} {
		hits, err := idx.Score(ctx, q)
		require.NoError(t, err)
		require.Len(t, hits, 1, "query %q", q)
		assert.Equal(t, "c1", hits[0].ChunkID)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("c1", "redemption fee details"),
		chunk("c2", "redemption policy details"),
	}))
	require.Equal(t, 2, idx.Len())

	require.NoError(t, idx.Remove(ctx, []string{"c1"}))
	assert.Equal(t, 1, idx.Len())

	hits, err := idx.Score(ctx, "redemption")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c2", hits[0].ChunkID)

	// Removing an unknown ID is a no-op.
	require.NoError(t, idx.Remove(ctx, []string{"missing"}))
	assert.Equal(t, 1, idx.Len())
}

func TestChunkIDs(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("c1", "alpha"),
		chunk("c2", "beta"),
	}))

	ids, err := idx.ChunkIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"c1": {}, "c2": {}}, ids)
}

func TestAddIsIdempotentPerChunk(t *testing.T) {
	ctx := context.Background()
	idx := New()

	c := chunk("c1", "fee schedule")
	require.NoError(t, idx.Add(ctx, []domain.Chunk{c}))
	require.NoError(t, idx.Add(ctx, []domain.Chunk{c}))

	assert.Equal(t, 1, idx.Len())

	hits, err := idx.Score(ctx, "fee")
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestLengthNormalisation(t *testing.T) {
	ctx := context.Background()
	idx := New()

	// Same term frequency, but c2 is much longer; with b=0.75 the
	// shorter chunk must score higher.
	require.NoError(t, idx.Add(ctx, []domain.Chunk{
		chunk("c1", "redemption fee"),
		chunk("c2", "redemption fee and a very long tail of additional boilerplate text about nothing in particular that pads the document length considerably"),
	}))

	hits, err := idx.Score(ctx, "redemption")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].ChunkID)
}
