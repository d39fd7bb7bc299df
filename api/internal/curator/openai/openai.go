package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/curator"
	"artifact-explorer/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string

	baseURL string
	httpc   *http.Client
}

var _ curator.Engine = (*Engine)(nil)

func New(key, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(key),
		Model:  strings.TrimSpace(model),
	}
}

// WithBaseURL points the engine at a compatible endpoint (proxy, test server).
func (e *Engine) WithBaseURL(u string) *Engine {
	e.baseURL = strings.TrimRight(u, "/")
	return e
}

// WithHTTPClient overrides the transport client. No timeout is set by default.
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) client() *goopenai.Client {
	cfg := goopenai.DefaultConfig(e.APIKey)
	if e.baseURL != "" {
		cfg.BaseURL = e.baseURL
	}
	if e.httpc != nil {
		cfg.HTTPClient = e.httpc
	}
	return goopenai.NewClientWithConfig(cfg)
}

func (e *Engine) Describe(ctx context.Context, req artifact.Request) (string, error) {
	if e.APIKey == "" {
		return "", artifact.NewServiceError("OPENAI_API_KEY is empty", nil)
	}

	resp, err := e.client().CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: curator.SystemInstruction()},
			UserMessage(req),
		},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", artifact.NewServiceError(fmt.Sprintf("openai %d: %s", apiErr.HTTPStatusCode, apiErr.Message), err)
		}
		return "", artifact.NewServiceError("openai request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", artifact.NewServiceError("openai returned no choices", nil)
	}
	txt := util.StripCodeFences(resp.Choices[0].Message.Content)
	if txt == "" {
		return "", artifact.NewServiceError("openai returned an empty response", nil)
	}
	return txt, nil
}

// UserMessage builds the user turn; an attached image goes along as a base64 data URL.
func UserMessage(req artifact.Request) goopenai.ChatCompletionMessage {
	prompt := curator.BuildPrompt(req)
	if !req.HasImage() {
		return goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: prompt}
	}
	img := artifact.Image{
		Data:     req.Image.Data,
		MIMEType: util.PickMIME(req.Image.MIMEType, "", req.Image.Data),
	}
	return goopenai.ChatCompletionMessage{
		Role: goopenai.ChatMessageRoleUser,
		MultiContent: []goopenai.ChatMessagePart{
			{Type: goopenai.ChatMessagePartTypeText, Text: prompt},
			{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL:    img.DataURL(),
					Detail: goopenai.ImageURLDetailAuto,
				},
			},
		},
	}
}
