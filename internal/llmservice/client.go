package llmservice

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-rag/internal/config"
)

// Temperature is fixed for reproducible answers
const Temperature = 0.0

// Completer turns a prompt into generated text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LangChainCompleter calls a langchaingo chat model with a single human message
type LangChainCompleter struct {
	llm   llms.Model
	model string
}

// NewCompleter creates the chat model described by llmConfig
func NewCompleter(llmConfig *config.LLMConfig) (*LangChainCompleter, error) {
	log.Debug().Interface("config", map[string]string{
		"provider": llmConfig.Provider,
		"base_url": llmConfig.BaseURL,
		"model":    llmConfig.Model,
	}).Msg("Creating chat model")

	var llm llms.Model
	var err error
	switch llmConfig.Provider {
	case config.ProviderOllama:
		llm, err = ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	case config.ProviderOpenAI, "":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		}
		if llmConfig.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		return nil, eris.Errorf("unknown llm provider: %s", llmConfig.Provider)
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to initialize llm")
	}
	return NewLangChainCompleter(llm, llmConfig.Model), nil
}

func NewLangChainCompleter(llm llms.Model, model string) *LangChainCompleter {
	return &LangChainCompleter{llm: llm, model: model}
}

func (c *LangChainCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	msgContent := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	res, err := c.llm.GenerateContent(ctx, msgContent, llms.WithTemperature(Temperature))
	if err != nil {
		return "", eris.Wrapf(err, "%s completion failed", c.model)
	}
	if len(res.Choices) == 0 {
		return "", eris.Errorf("%s returned no choices", c.model)
	}
	return res.Choices[0].Content, nil
}
