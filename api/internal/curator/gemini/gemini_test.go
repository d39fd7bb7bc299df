package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"artifact-explorer/api/internal/artifact"
)

func TestDescribeWithoutKey(t *testing.T) {
	e := New("  ", "gemini-2.5-flash")
	_, err := e.Describe(context.Background(), artifact.Request{Name: "Rosetta Stone", WordCount: 100})

	var se *artifact.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "GEMINI_API_KEY is empty", se.Message)
}

func TestParts(t *testing.T) {
	req := artifact.Request{Name: "Rosetta Stone", WordCount: 100}
	parts := Parts(req)
	require.Len(t, parts, 1)
	_, ok := parts[0].(genai.Text)
	assert.True(t, ok)

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	req.Image = &artifact.Image{Data: png}
	parts = Parts(req)
	require.Len(t, parts, 2)
	blob, ok := parts[1].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, png, blob.Data)
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("A trilingual "), genai.Text("stele...")}}},
		},
	}
	assert.Equal(t, "A trilingual stele...", responseText(resp))
}

func TestIdentity(t *testing.T) {
	e := New("key", " gemini-2.5-flash ")
	assert.Equal(t, "gemini", e.Name())
	assert.Equal(t, "gemini-2.5-flash", e.GetModel())
}

const streamPath = "/v1beta/models/gemini-2.5-flash:streamGenerateContent"

// newTestEngine points the REST transport at a local server that answers
// every streamGenerateContent call with status and body.
func newTestEngine(t *testing.T, status int, body string, seen *map[string]any) *Engine {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, streamPath, r.URL.Path)
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New("test-key", "gemini-2.5-flash",
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)
}

func TestDescribe(t *testing.T) {
	var seen map[string]any
	e := newTestEngine(t, http.StatusOK,
		`[{"candidates":[{"content":{"role":"model","parts":[{"text":"A trilingual "}]}}]},
		  {"candidates":[{"content":{"role":"model","parts":[{"text":"stele..."}]},"finishReason":1}]}]`,
		&seen)

	out, err := e.Describe(context.Background(), artifact.Request{Name: "Rosetta Stone", WordCount: 100})
	require.NoError(t, err)
	assert.Equal(t, "A trilingual stele...", out)

	raw, err := json.Marshal(seen)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Rosetta Stone")
	assert.Contains(t, seen, "systemInstruction")
}

func TestDescribeSendsImage(t *testing.T) {
	var seen map[string]any
	e := newTestEngine(t, http.StatusOK,
		`[{"candidates":[{"content":{"parts":[{"text":"Granodiorite."}]}}]}]`, &seen)

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	req := artifact.Request{Name: "Rosetta Stone", WordCount: 100, Image: &artifact.Image{Data: png}}
	_, err := e.Describe(context.Background(), req)
	require.NoError(t, err)

	raw, err := json.Marshal(seen)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"mimeType":"image/png"`)
	assert.Contains(t, string(raw), req.Image.Base64())
}

func TestDescribeStripsFences(t *testing.T) {
	e := newTestEngine(t, http.StatusOK,
		`[{"candidates":[{"content":{"parts":[{"text":"`+"```markdown\\nThe Rosetta Stone.\\n```"+`"}]}}]}]`, nil)

	out, err := e.Describe(context.Background(), artifact.Request{Name: "Rosetta Stone", WordCount: 100})
	require.NoError(t, err)
	assert.Equal(t, "The Rosetta Stone.", out)
}

func TestDescribeFailures(t *testing.T) {
	req := artifact.Request{Name: "Rosetta Stone", WordCount: 100}

	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`, "gemini request failed"},
		{"blocked prompt", http.StatusOK, `[{"promptFeedback":{"blockReason":1}}]`, "gemini blocked the prompt"},
		{"no candidates", http.StatusOK, `[{"candidates":[]}]`, "gemini returned an empty response"},
		{"blank text", http.StatusOK, `[{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}]`, "gemini returned an empty response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.status, tt.body, nil)
			_, err := e.Describe(context.Background(), req)

			var se *artifact.ServiceError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.True(t, strings.HasPrefix(se.Message, tt.message), se.Message)
		})
	}
}
