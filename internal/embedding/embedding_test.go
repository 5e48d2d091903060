package embedding

import (
	"testing"

	"pdf-rag/internal/config"
)

func TestNewEmbedderProviders(t *testing.T) {
	cases := []config.LLMConfig{
		{Provider: config.ProviderOpenAI, Model: "text-embedding-ada-002", Key: "Bearer sk-test", BatchSize: 64},
		{Provider: config.ProviderOllama, BaseURL: "http://localhost:11434", Model: "nomic-embed-text"},
	}
	for _, cfg := range cases {
		embedder, err := NewEmbedder(&cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", cfg.Provider, err)
		}
		if embedder == nil {
			t.Fatalf("%s: expected embedder", cfg.Provider)
		}
	}
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	if _, err := NewEmbedder(&config.LLMConfig{Provider: "word2vec"}); err == nil {
		t.Fatal("expected error")
	}
}
