package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artifact-explorer/api/internal/artifact"
)

func newTestServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDescribe(t *testing.T) {
	var seen map[string]any
	srv := newTestServer(t, http.StatusOK,
		`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"A trilingual stele..."}}]}`,
		&seen)

	e := New("test-key", "gpt-4o-mini").WithBaseURL(srv.URL)
	out, err := e.Describe(context.Background(), artifact.Request{Name: "Rosetta Stone", WordCount: 100})
	require.NoError(t, err)
	assert.Equal(t, "A trilingual stele...", out)
	assert.Equal(t, "gpt-4o-mini", seen["model"])
	assert.Len(t, seen["messages"], 2)
}

func TestDescribeErrors(t *testing.T) {
	req := artifact.Request{Name: "Rosetta Stone", WordCount: 100}

	t.Run("missing key", func(t *testing.T) {
		_, err := New("", "gpt-4o-mini").Describe(context.Background(), req)
		var se *artifact.ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "OPENAI_API_KEY is empty", se.Message)
	})

	t.Run("non-2xx", func(t *testing.T) {
		srv := newTestServer(t, http.StatusUnauthorized,
			`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, nil)
		_, err := New("test-key", "gpt-4o-mini").WithBaseURL(srv.URL).Describe(context.Background(), req)
		var se *artifact.ServiceError
		require.True(t, errors.As(err, &se))
		assert.Contains(t, se.Message, "401")
		assert.Contains(t, se.Message, "Incorrect API key")
	})

	t.Run("empty content", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK,
			`{"choices":[{"index":0,"message":{"role":"assistant","content":"   "}}]}`, nil)
		_, err := New("test-key", "gpt-4o-mini").WithBaseURL(srv.URL).Describe(context.Background(), req)
		var se *artifact.ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "openai returned an empty response", se.Message)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `{"choices":[]}`, nil)
		_, err := New("test-key", "gpt-4o-mini").WithBaseURL(srv.URL).Describe(context.Background(), req)
		var se *artifact.ServiceError
		require.True(t, errors.As(err, &se))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `not json`, nil)
		_, err := New("test-key", "gpt-4o-mini").WithBaseURL(srv.URL).Describe(context.Background(), req)
		var se *artifact.ServiceError
		require.True(t, errors.As(err, &se))
	})
}

func TestUserMessageWithImage(t *testing.T) {
	req := artifact.Request{
		Name:      "Rosetta Stone",
		WordCount: 100,
		Image:     &artifact.Image{Data: []byte{0xFF, 0xD8, 0xFF}},
	}
	msg := UserMessage(req)
	assert.Empty(t, msg.Content)
	require.Len(t, msg.MultiContent, 2)
	require.NotNil(t, msg.MultiContent[1].ImageURL)
	assert.Equal(t, "data:image/jpeg;base64,/9j/", msg.MultiContent[1].ImageURL.URL)
}
