package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
	"github.com/parchment-labs/fundqa/internal/logger"
)

// Retriever performs hybrid retrieval: lexical BM25 and dense cosine
// scores are fetched under one index snapshot, min-max normalised, and
// fused by weighted sum over the union of candidate chunk IDs.
type Retriever struct {
	index    driven.Index
	embedder driven.EmbeddingService
	settings domain.RetrievalSettings
}

// NewRetriever creates a retriever. The embedder may be nil, in which
// case retrieval degrades to lexical-only scoring.
func NewRetriever(index driven.Index, embedder driven.EmbeddingService, settings domain.RetrievalSettings) *Retriever {
	return &Retriever{
		index:    index,
		embedder: embedder,
		settings: settings,
	}
}

// Retrieve returns the top-k candidates for the question. k <= 0 uses
// the configured default. Results are sorted by combined score
// descending, ties broken by dense score then chunk ID.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievalCandidate, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = r.settings.TopK
	}

	// Embedding calls out to a remote service, so it happens before
	// the index snapshot is taken. Failure degrades to lexical-only
	// rather than failing the query.
	var embedding []float32
	if r.embedder != nil {
		emb, err := r.embedder.Embed(ctx, question)
		if err != nil {
			logger.Warn("Dense retrieval unavailable: %v (lexical only)", err)
		} else {
			embedding = emb
		}
	}

	// Scoring and hydration share one snapshot so a concurrent
	// replace never leaves the two score lists, or the hydrated
	// chunks, describing different index states.
	var results []domain.RetrievalCandidate
	err := r.index.Snapshot(ctx, func(view driven.IndexView) error {
		lexical, err := lexicalScores(ctx, view, question)
		if err != nil {
			return err
		}
		var dense map[string]float64
		if embedding != nil {
			dense, err = denseScores(ctx, view, embedding)
			if err != nil {
				logger.Warn("Dense retrieval unavailable: %v (lexical only)", err)
				dense = nil
			}
		}

		logger.Debug("Retrieval: %d lexical hits, %d dense hits", len(lexical), len(dense))

		candidates := r.fuse(lexical, dense)
		if r.settings.MinScore > 0 {
			candidates = filterByScore(candidates, r.settings.MinScore)
		}
		if len(candidates) > k {
			candidates = candidates[:k]
		}

		results, err = hydrate(ctx, view, candidates)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// scored pairs a chunk ID with its fused component scores before
// hydration.
type scored struct {
	chunkID  string
	lexical  float64
	dense    float64
	combined float64
}

func lexicalScores(ctx context.Context, view driven.IndexView, question string) (map[string]float64, error) {
	hits, err := view.ScoreLexical(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("lexical scoring: %w", err)
	}
	scores := make(map[string]float64, len(hits))
	for _, hit := range hits {
		scores[hit.ChunkID] = hit.Score
	}
	return scores, nil
}

func denseScores(ctx context.Context, view driven.IndexView, embedding []float32) (map[string]float64, error) {
	hits, err := view.ScoreDense(ctx, embedding)
	if err != nil {
		return nil, fmt.Errorf("dense scoring: %w", err)
	}
	scores := make(map[string]float64, len(hits))
	for _, hit := range hits {
		scores[hit.ChunkID] = hit.Similarity
	}
	return scores, nil
}

// fuse normalises each score list to [0,1] and merges them over the
// union of chunk IDs. A chunk missing from one list contributes 0 for
// that component.
func (r *Retriever) fuse(lexical, dense map[string]float64) []scored {
	lexNorm := minMaxNormalise(lexical)
	denseNorm := minMaxNormalise(dense)

	union := make(map[string]struct{}, len(lexNorm)+len(denseNorm))
	for id := range lexNorm {
		union[id] = struct{}{}
	}
	for id := range denseNorm {
		union[id] = struct{}{}
	}

	candidates := make([]scored, 0, len(union))
	for id := range union {
		c := scored{
			chunkID: id,
			lexical: lexNorm[id],
			dense:   denseNorm[id],
		}
		c.combined = r.settings.LexicalWeight*c.lexical + r.settings.DenseWeight*c.dense
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].combined != candidates[j].combined {
			return candidates[i].combined > candidates[j].combined
		}
		if candidates[i].dense != candidates[j].dense {
			return candidates[i].dense > candidates[j].dense
		}
		return candidates[i].chunkID < candidates[j].chunkID
	})

	return candidates
}

// minMaxNormalise maps scores to [0,1]. Zero variance, including a
// single candidate, maps every score to 1.0.
func minMaxNormalise(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return nil
	}

	first := true
	var lo, hi float64
	for _, s := range scores {
		if first {
			lo, hi = s, s
			first = false
			continue
		}
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	out := make(map[string]float64, len(scores))
	if hi == lo {
		for id := range scores {
			out[id] = 1.0
		}
		return out
	}
	for id, s := range scores {
		out[id] = (s - lo) / (hi - lo)
	}
	return out
}

func filterByScore(candidates []scored, floor float64) []scored {
	kept := candidates[:0]
	for _, c := range candidates {
		if c.combined >= floor {
			kept = append(kept, c)
		}
	}
	return kept
}

// hydrate resolves chunk IDs to full candidates against the same view
// that scored them, so a scored chunk is always resolvable. The
// not-found skip stays as a guard for store-level races outside the
// coordinator's control.
func hydrate(ctx context.Context, view driven.IndexView, candidates []scored) ([]domain.RetrievalCandidate, error) {
	results := make([]domain.RetrievalCandidate, 0, len(candidates))
	for _, c := range candidates {
		chunk, err := view.GetChunk(ctx, c.chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", c.chunkID, err)
		}
		results = append(results, domain.RetrievalCandidate{
			Chunk:         *chunk,
			LexicalScore:  c.lexical,
			DenseScore:    c.dense,
			CombinedScore: c.combined,
		})
	}
	return results, nil
}
