package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"pdf-rag/internal/models"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	APIKeyEnv = "OPENAI_API_KEY"

	dotEnvFile = ".env"

	defaultInferenceModel = "gpt-3.5-turbo"
	defaultEmbeddingModel = "text-embedding-ada-002"
	defaultOllamaURL      = "http://localhost:11434"
	defaultOCRCommand     = "ocrmypdf"
	defaultBatchSize      = 512
)

type LLMConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size,omitempty"`
	// Key is never read from the config file
	Key string `yaml:"-"`
}

type RAGConfig struct {
	ChunkSize      int `yaml:"chunk_size"`
	ChunkOverlap   int `yaml:"chunk_overlap"`
	TopK           int `yaml:"top_k"`
	MapConcurrency int `yaml:"map_concurrency"`
}

type OCRConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	WorkDir string   `yaml:"work_dir"`
}

type Config struct {
	LLM      LLMConfig `yaml:"llm"`
	EmbedLLM LLMConfig `yaml:"embed_llm"`
	RAG      RAGConfig `yaml:"rag"`
	OCR      OCRConfig `yaml:"ocr"`
}

// LoadConfig reads the yaml file at path, falling back to defaults when it
// does not exist, then resolves the service credential from the environment.
// A .env file in the working directory is loaded first if present.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(dotEnvFile); err != nil {
		log.Warn().Err(err).Str("file", dotEnvFile).Msg("Ignoring unreadable .env file")
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, eris.Wrapf(err, "failed to parse config %s", path)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, eris.Wrapf(err, "failed to read config %s", path)
		}
	}

	applyDefaults(&cfg)
	resolveCredential(&cfg, os.Getenv(APIKeyEnv))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderOpenAI
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultInferenceModel
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = ProviderOpenAI
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = defaultEmbeddingModel
	}
	if cfg.EmbedLLM.BatchSize == 0 {
		cfg.EmbedLLM.BatchSize = defaultBatchSize
	}
	for _, c := range []*LLMConfig{&cfg.LLM, &cfg.EmbedLLM} {
		if c.Provider == ProviderOllama && c.BaseURL == "" {
			c.BaseURL = defaultOllamaURL
		}
	}

	// chunk size and overlap are defaulted together
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = models.DefaultChunkSize
		if cfg.RAG.ChunkOverlap == 0 {
			cfg.RAG.ChunkOverlap = models.DefaultChunkOverlap
		}
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = models.DefaultTopK
	}
	if cfg.RAG.MapConcurrency <= 0 {
		cfg.RAG.MapConcurrency = models.DefaultMapConcurrency
	}
	if cfg.OCR.Command == "" {
		cfg.OCR.Command = defaultOCRCommand
	}
}

func resolveCredential(cfg *Config, key string) {
	key = strings.TrimSpace(key)
	cfg.LLM.Key = key
	cfg.EmbedLLM.Key = key
}

// Validate fails with models.ErrConfiguration when a required value is
// missing or inconsistent
func (cfg *Config) Validate() error {
	if cfg.RAG.ChunkOverlap < 0 || cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return models.NewStageError("config", models.ErrConfiguration,
			eris.Errorf("chunk_overlap %d must be in [0, chunk_size %d)", cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize))
	}
	for _, c := range []*LLMConfig{&cfg.LLM, &cfg.EmbedLLM} {
		switch c.Provider {
		case ProviderOpenAI:
			if c.Key == "" {
				return models.NewStageError("config", models.ErrConfiguration,
					eris.Errorf("%s not found in environment variables", APIKeyEnv))
			}
		case ProviderOllama:
		default:
			return models.NewStageError("config", models.ErrConfiguration,
				eris.Errorf("unknown provider: %s", c.Provider))
		}
	}
	return nil
}

// loadDotEnv loads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return eris.Wrapf(err, "failed to load %s", path)
}
