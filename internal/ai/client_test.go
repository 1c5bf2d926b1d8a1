package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	apperrors "rezeptapp/internal/errors"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
	errs  int
}

func (o *recordingObserver) ObserveAICall(operation string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, operation)
	if err != nil {
		o.errs++
	}
}

func TestClient_CompleteSendsVisionPayload(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		captured, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  {\"title\":\"Soup\"}  "}}]}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := NewClient(srv.URL+"/v1/", 0, obs)

	content, err := c.Complete(context.Background(), "sk-test", CompletionRequest{
		Operation: "analyze",
		Model:     "gpt-4o",
		Prompt:    "read this",
		Image:     &ImageInput{MIMEType: "image/png", Data: []byte{0x89, 0x50}},
		MaxTokens: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Soup"}`, content)

	req := gjson.ParseBytes(captured)
	assert.Equal(t, "gpt-4o", req.Get("model").String())
	assert.Equal(t, int64(2000), req.Get("max_tokens").Int())
	assert.Equal(t, "text", req.Get("messages.0.content.0.type").String())
	assert.Equal(t, "data:image/png;base64,iVA=", req.Get("messages.0.content.1.image_url.url").String())
	assert.False(t, req.Get("response_format").Exists())
	assert.Equal(t, []string{"analyze"}, obs.calls)
}

func TestClient_CompleteJSONModeAndSystem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"type": "json_object"}, body["response_format"])
		assert.Equal(t, 0.8, body["temperature"])
		msgs := body["messages"].([]interface{})
		assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	_, err := c.Complete(context.Background(), "k", CompletionRequest{
		Operation:   "generate",
		Model:       "gpt-4o-mini",
		System:      "be a chef",
		Prompt:      "soup",
		Temperature: 0.8,
		JSONMode:    true,
	})
	require.NoError(t, err)
}

func TestClient_ProviderErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := NewClient(srv.URL, 0, obs)
	_, err := c.GenerateImage(context.Background(), "bad", ImageRequest{Operation: "profile_image", Model: "dall-e-3", Prompt: "avatar"})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamFailure, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.Contains(t, err.Error(), "(401)")
	assert.Equal(t, 1, obs.errs)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.JSONEq(t, `{"error":{"message":"Incorrect API key provided"}}`, appErr.Details)
}

func TestClient_NonJSONErrorKeepsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0, nil).Complete(context.Background(), "k", CompletionRequest{Operation: "generate", Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamFailure, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "(502)")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "<html>bad gateway</html>", appErr.Details)
}

func TestClient_EmptyChoicesIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0, nil).Complete(context.Background(), "k", CompletionRequest{Operation: "generate", Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamFailure, apperrors.KindOf(err))
}

func TestClient_GenerateImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		body := gjson.ParseBytes(raw)
		assert.Equal(t, "1024x1024", body.Get("size").String())
		assert.Equal(t, int64(1), body.Get("n").Int())
		_, _ = w.Write([]byte(`{"data":[{"url":"https://img.example/1.png"}]}`))
	}))
	defer srv.Close()

	url, err := NewClient(srv.URL, 0, nil).GenerateImage(context.Background(), "k", ImageRequest{Operation: "step", Model: "dall-e-3", Prompt: "chop"})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/1.png", url)
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, 0, nil).Complete(ctx, "k", CompletionRequest{Operation: "generate", Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamFailure, apperrors.KindOf(err))
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFence(tt.in))
	}
}

func TestParseObject(t *testing.T) {
	res, err := ParseObject("```json\n{\"title\":\"Soup\",\"ingredients\":[\"Water\",\"Salt\"],\"instructions\":\"Boil\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Soup", res.Get("title").String())
	assert.Equal(t, "Water\nSalt", TextBlock(res.Get("ingredients")))
	assert.Equal(t, "Boil", TextBlock(res.Get("instructions")))
	assert.Equal(t, []string{}, StringList(res.Get("tips")))

	_, err = ParseObject("Sorry, I cannot read this image.")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Sorry, I cannot read this image.", appErr.Details)
}
