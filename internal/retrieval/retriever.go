package retrieval

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
)

const stageRetrieve = "retrieve"

// Query returns the k chunks most similar to text, most similar first.
// Equal scores keep chunk order. k <= 0 means models.DefaultTopK.
func (ix *Index) Query(ctx context.Context, text string, k int) (models.RetrievalResult, error) {
	if k <= 0 {
		k = models.DefaultTopK
	}
	result := models.RetrievalResult{Query: text}

	queryEmbedding, err := ix.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return result, models.NewStageError(stageRetrieve, models.ErrEmbeddingFailed, err)
	}

	// chromem does not order ties, so rank the whole collection here
	hits, err := ix.store.Search(ctx, queryEmbedding, ix.store.Count())
	if err != nil {
		return result, models.NewStageError(stageRetrieve, models.ErrEmbeddingFailed, err)
	}

	scored := make([]models.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		c, ok := ix.chunks[h.ID]
		if !ok {
			return result, models.NewStageError(stageRetrieve, models.ErrEmbeddingFailed,
				eris.Errorf("unknown document %s in index", h.ID))
		}
		scored = append(scored, models.ScoredChunk{Chunk: c, Score: h.Similarity})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Ordinal < scored[j].Ordinal
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	result.Chunks = scored

	log.Debug().Str("query", text).Int("k", k).Int("returned", len(scored)).Msg("Retrieved chunks")
	return result, nil
}
