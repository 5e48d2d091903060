package chromemdb

import (
	"context"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

// VectorDBManager owns one in-memory chromem-go collection. Nothing is
// persisted; a new manager is created for every indexed document.
type VectorDBManager struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewVectorDBManager creates an in-memory database with a single collection.
// embed is only used by chromem for documents or queries without a vector.
func NewVectorDBManager(collectionName string, embed chromem.EmbeddingFunc) (*VectorDBManager, error) {
	db := chromem.NewDB()
	c, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create collection")
	}
	return &VectorDBManager{db: db, collection: c}, nil
}

// CreateDocs adds documents that already carry their embedding
func (m *VectorDBManager) CreateDocs(ctx context.Context, documents []chromem.Document) error {
	if err := m.collection.AddDocuments(ctx, documents, runtime.NumCPU()); err != nil {
		return eris.Wrap(err, "failed to add documents")
	}
	log.Debug().Str("collection", m.collection.Name).Int("count", m.collection.Count()).Msg("Added documents")
	return nil
}

// Search returns up to nResults documents ordered by cosine similarity
func (m *VectorDBManager) Search(ctx context.Context, queryEmbedding []float32, nResults int) ([]chromem.Result, error) {
	if len(queryEmbedding) == 0 {
		return nil, eris.New("query embedding is empty")
	}
	// chromem rejects nResults above the document count
	if count := m.collection.Count(); nResults > count {
		nResults = count
	}
	if nResults <= 0 {
		return nil, nil
	}

	results, err := m.collection.QueryEmbedding(ctx, queryEmbedding, nResults, nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query by similarity")
	}
	return results, nil
}

func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}

// DeleteCollection drops the collection and everything in it
func (m *VectorDBManager) DeleteCollection() error {
	if err := m.db.DeleteCollection(m.collection.Name); err != nil {
		return eris.Wrap(err, "failed to drop collection")
	}
	return nil
}
