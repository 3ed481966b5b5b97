package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// LangChain adapts any langchaingo model to the Completer interface, so the
// agent can run against Ollama, Gemini or any other backend langchaingo
// supports without new wiring.
type LangChain struct {
	model llms.Model
}

// NewLangChain wraps a langchaingo model.
func NewLangChain(model llms.Model) *LangChain {
	return &LangChain{model: model}
}

// Complete concatenates the system and user prompts into a single-turn call.
func (l *LangChain) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := l.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNotConfigured
	}
	return resp.Choices[0].Content, nil
}
