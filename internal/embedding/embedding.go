package embedding

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-rag/internal/config"
)

// NewEmbedder creates the embedding function used for both chunks and
// queries. The same value must serve indexing and retrieval of a document.
func NewEmbedder(llmConfig *config.LLMConfig) (embeddings.Embedder, error) {
	log.Debug().Interface("config", map[string]string{
		"provider":        llmConfig.Provider,
		"base_url":        llmConfig.BaseURL,
		"embedding_model": llmConfig.Model,
	}).Msg("Creating embedder")

	var client embeddings.EmbedderClient
	switch llmConfig.Provider {
	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
		if err != nil {
			return nil, eris.Wrap(err, "failed to initialize ollama embedder")
		}
		client = llm
	case config.ProviderOpenAI, "":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithEmbeddingModel(llmConfig.Model),
		}
		if llmConfig.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, eris.Wrap(err, "failed to initialize openai embedder")
		}
		client = llm
	default:
		return nil, eris.Errorf("unknown embedding provider: %s", llmConfig.Provider)
	}

	embedderOpts := []embeddings.Option{}
	if llmConfig.BatchSize > 0 {
		embedderOpts = append(embedderOpts, embeddings.WithBatchSize(llmConfig.BatchSize))
	}
	embedder, err := embeddings.NewEmbedder(client, embedderOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create embedder")
	}
	return embedder, nil
}
