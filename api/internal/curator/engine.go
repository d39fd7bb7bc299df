package curator

import (
	"context"
	"errors"
	"strings"

	"artifact-explorer/api/internal/artifact"
)

// Engine sends one artifact request to a hosted model and returns its text.
type Engine interface {
	Name() string
	GetModel() string
	Describe(ctx context.Context, req artifact.Request) (string, error)
}

type Engines struct {
	Gemini  Engine
	OpenAI  Engine
	Default string
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	var eng Engine
	switch name {
	case "", "gemini":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	default:
		return nil, errors.New("unknown llm_name; use 'gemini' or 'gpt'")
	}
	if eng == nil {
		return nil, errors.New("engine " + name + " is not configured")
	}
	return eng, nil
}
