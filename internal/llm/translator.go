// Package llm provides the optional search-query translator. Translation
// only affects which queries get built; extraction never depends on it, so
// a missing or failing provider degrades to English-only queries.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aidlens/aidlens/internal/model"
)

// Translator renders search queries into a donor's language via an
// OpenAI-compatible chat endpoint. Ollama and other compatible servers
// work through the base URL override.
type Translator struct {
	client *openai.Client
	model  string
}

// NewTranslator creates a translator from the LLM configuration
func NewTranslator(cfg model.LLMConfig) (*Translator, error) {
	if cfg.Provider != "openai" {
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm: API key or base URL is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	m := cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}

	return &Translator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  m,
	}, nil
}

// Translate renders text into the target language. English targets and
// empty input are returned unchanged without an API call.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || targetLang == "" || strings.HasPrefix(targetLang, "en") {
		return text, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You translate short news-search queries. Reply with the translation only: " +
					"no quotes, no commentary. Keep proper nouns, numbers and currency codes unchanged.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Translate into %s: %s", targetLang, text),
			},
		},
		MaxTokens:   200,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("translate: empty response")
	}
	return out, nil
}
