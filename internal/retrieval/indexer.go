package retrieval

import (
	"context"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/models"
)

const (
	stageIndex     = "index"
	collectionName = "document_chunks"
)

// Index is a read-only similarity index over the chunks of one document.
// It remembers the embedder it was built with so queries are embedded in
// the same space as the chunks.
type Index struct {
	store    *chromemdb.VectorDBManager
	embedder embeddings.Embedder
	chunks   map[string]models.Chunk
}

// Build embeds all chunks in one call and inserts them into a fresh
// in-memory collection. Any failure discards the whole index.
func Build(ctx context.Context, embedder embeddings.Embedder, chunks []models.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, models.NewStageError(stageIndex, models.ErrEmptyDocument, eris.New("no chunks to index"))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	log.Info().Int("chunks", len(chunks)).Msg("Embedding chunks")
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, models.NewStageError(stageIndex, models.ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(chunks) {
		return nil, models.NewStageError(stageIndex, models.ErrEmbeddingFailed,
			eris.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors)))
	}

	store, err := chromemdb.NewVectorDBManager(collectionName, chromem.EmbeddingFunc(embedder.EmbedQuery))
	if err != nil {
		return nil, models.NewStageError(stageIndex, models.ErrEmbeddingFailed, err)
	}

	ix := &Index{store: store, embedder: embedder, chunks: make(map[string]models.Chunk, len(chunks))}
	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) == 0 {
			return nil, models.NewStageError(stageIndex, models.ErrEmbeddingFailed,
				eris.Errorf("empty embedding for chunk %d", c.Ordinal))
		}
		id := chunkID(c)
		ix.chunks[id] = c
		docs[i] = chromem.Document{
			ID:        id,
			Content:   c.Text,
			Metadata:  createMetadata(c),
			Embedding: vectors[i],
		}
	}

	if err := store.CreateDocs(ctx, docs); err != nil {
		return nil, models.NewStageError(stageIndex, models.ErrEmbeddingFailed, err)
	}

	log.Info().Int("chunks", store.Count()).Int("dimension", len(vectors[0])).Msg("Index built")
	return ix, nil
}

// Len is the number of indexed chunks
func (ix *Index) Len() int {
	return ix.store.Count()
}

// Discard drops the indexed chunks. The index must not be used afterwards.
func (ix *Index) Discard() error {
	ix.chunks = nil
	return ix.store.DeleteCollection()
}

func chunkID(c models.Chunk) string {
	return fmt.Sprintf("chunk-%d", c.Ordinal)
}

func createMetadata(c models.Chunk) map[string]string {
	return map[string]string{
		"page":    strconv.Itoa(c.Page),
		"ordinal": strconv.Itoa(c.Ordinal),
	}
}
