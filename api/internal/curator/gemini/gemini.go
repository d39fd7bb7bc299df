package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/curator"
	"artifact-explorer/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string

	// extra client options, e.g. a custom endpoint or HTTP client
	opts []option.ClientOption
}

var _ curator.Engine = (*Engine)(nil)

func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		opts:   opts,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Describe makes a single GenerateContent call. The image, when present, is
// sent inline as a blob next to the text prompt.
func (e *Engine) Describe(ctx context.Context, req artifact.Request) (string, error) {
	if e.APIKey == "" {
		return "", artifact.NewServiceError("GEMINI_API_KEY is empty", nil)
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)...)
	if err != nil {
		return "", artifact.NewServiceError("gemini: cannot create client", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", artifact.NewServiceError("gemini: model is nil", nil)
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0.7),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(curator.SystemInstruction())},
	}

	resp, err := m.GenerateContent(ctx, Parts(req)...)
	var blocked *genai.BlockedError
	switch {
	case errors.As(err, &blocked):
		return "", artifact.NewServiceError(blockedMessage(blocked), err)
	case err != nil:
		return "", artifact.NewServiceError("gemini request failed", err)
	}
	txt := util.StripCodeFences(responseText(resp))
	if txt == "" {
		return "", artifact.NewServiceError("gemini returned an empty response", nil)
	}
	return txt, nil
}

// Parts builds the user content: the prompt text followed by the optional image blob.
func Parts(req artifact.Request) []genai.Part {
	parts := []genai.Part{genai.Text(curator.BuildPrompt(req))}
	if req.HasImage() {
		parts = append(parts, genai.Blob{
			MIMEType: util.PickMIME(req.Image.MIMEType, "", req.Image.Data),
			Data:     req.Image.Data,
		})
	}
	return parts
}

// responseText joins the text parts of the first candidate that has content.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			return s
		}
	}
	return ""
}

func blockedMessage(e *genai.BlockedError) string {
	if e.PromptFeedback != nil {
		return fmt.Sprintf("gemini blocked the prompt: %s", e.PromptFeedback.BlockReason)
	}
	if e.Candidate != nil {
		return fmt.Sprintf("gemini blocked the response: %s", e.Candidate.FinishReason)
	}
	return "gemini blocked the request"
}

func ptrFloat32(v float32) *float32 { return &v }
