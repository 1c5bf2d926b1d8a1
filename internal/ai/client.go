// Package ai talks to an OpenAI-compatible provider for chat completions,
// image understanding and image generation.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "rezeptapp/internal/errors"
)

const maxErrorBody = 64 << 10

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	Operation   string
	Model       string
	System      string
	Prompt      string
	Image       *ImageInput
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider for a JSON object response.
	JSONMode bool
}

// ImageInput is an inline image sent with a completion.
type ImageInput struct {
	MIMEType string
	Data     []byte
}

// DataURL encodes the image as a base64 data URL.
func (i *ImageInput) DataURL() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ImageRequest asks the provider to render one image.
type ImageRequest struct {
	Operation string
	Model     string
	Prompt    string
	Size      string
	Quality   string
}

// Provider is the external generation service.
type Provider interface {
	// Complete returns the assistant message content.
	Complete(ctx context.Context, apiKey string, req CompletionRequest) (string, error)
	// GenerateImage returns the URL of the generated image.
	GenerateImage(ctx context.Context, apiKey string, req ImageRequest) (string, error)
}

// Observer receives call outcomes, e.g. for metrics.
type Observer interface {
	ObserveAICall(operation string, d time.Duration, err error)
}

// Client is a Provider backed by go-openai. Calls are never retried.
type Client struct {
	baseURL  string
	http     *http.Client
	tracer   trace.Tracer
	observer Observer
}

// NewClient creates a provider client. A zero timeout leaves cancellation to ctx.
func NewClient(baseURL string, timeout time.Duration, observer Observer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: errorBodyTransport{base: http.DefaultTransport},
		},
		tracer:   otel.Tracer("rezeptapp/internal/ai"),
		observer: observer,
	}
}

// Ensure Client implements Provider
var _ Provider = (*Client)(nil)

// sdk returns a go-openai client for one call. The key comes from settings
// and may change between calls.
func (c *Client) sdk(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = c.http
	return openai.NewClientWithConfig(cfg)
}

func (c *Client) Complete(ctx context.Context, apiKey string, req CompletionRequest) (content string, err error) {
	ctx, done := c.begin(ctx, req.Operation, req.Model)
	defer func() { done(err) }()

	body := openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.JSONMode {
		body.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	if req.System != "" {
		body.Messages = append(body.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	if req.Image != nil {
		body.Messages = append(body.Messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: req.Image.DataURL()}},
			},
		})
	} else {
		body.Messages = append(body.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})
	}

	capture := &errorBody{}
	resp, err := c.sdk(apiKey).CreateChatCompletion(withErrorBody(ctx, capture), body)
	if err != nil {
		return "", upstreamError(err, capture)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.Upstream("AI provider returned no message", "", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) GenerateImage(ctx context.Context, apiKey string, req ImageRequest) (url string, err error) {
	ctx, done := c.begin(ctx, req.Operation, req.Model)
	defer func() { done(err) }()

	body := openai.ImageRequest{
		Model:          req.Model,
		Prompt:         req.Prompt,
		N:              1,
		Size:           req.Size,
		Quality:        req.Quality,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	}
	if body.Size == "" {
		body.Size = openai.CreateImageSize1024x1024
	}
	if body.Quality == "" {
		body.Quality = openai.CreateImageQualityStandard
	}

	capture := &errorBody{}
	resp, err := c.sdk(apiKey).CreateImage(withErrorBody(ctx, capture), body)
	if err != nil {
		return "", upstreamError(err, capture)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", apperrors.Upstream("AI provider returned no image", "", nil)
	}
	return resp.Data[0].URL, nil
}

// begin opens the span and server-timing metric for one provider call. The
// returned func closes both and reports the outcome to the observer.
func (c *Client) begin(ctx context.Context, operation, model string) (context.Context, func(error)) {
	ctx, span := c.tracer.Start(ctx, "ai."+operation, trace.WithAttributes(
		attribute.String("ai.operation", operation),
		attribute.String("ai.model", model),
	))

	var metric *servertiming.Metric
	if timing := servertiming.FromContext(ctx); timing != nil {
		metric = timing.NewMetric("ai").WithDesc(operation).Start()
	}

	start := time.Now()
	return ctx, func(err error) {
		if metric != nil {
			metric.Stop()
		}
		if c.observer != nil {
			c.observer.ObserveAICall(operation, time.Since(start), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// upstreamError maps go-openai errors to UpstreamFailure with the raw
// provider response in Details.
func upstreamError(err error, capture *errorBody) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "unknown error"
		}
		return apperrors.Upstream(fmt.Sprintf("AI provider error (%d): %s", apiErr.HTTPStatusCode, msg), capture.String(), nil)
	case errors.As(err, &reqErr):
		return apperrors.Upstream(fmt.Sprintf("AI provider error (%d): unknown error", reqErr.HTTPStatusCode), capture.String(), err)
	default:
		return apperrors.Upstream("AI provider unreachable", "", err)
	}
}

type errorBodyKey struct{}

// errorBody receives the body of a failed provider response.
type errorBody struct {
	raw []byte
}

func (b *errorBody) String() string {
	if b == nil {
		return ""
	}
	return string(b.raw)
}

func withErrorBody(ctx context.Context, b *errorBody) context.Context {
	return context.WithValue(ctx, errorBodyKey{}, b)
}

// errorBodyTransport copies non-2xx response bodies into the request's
// errorBody so callers can report what the provider actually said.
type errorBodyTransport struct {
	base http.RoundTripper
}

func (t errorBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return resp, err
	}
	capture, ok := req.Context().Value(errorBodyKey{}).(*errorBody)
	if !ok {
		return resp, nil
	}
	raw, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if len(raw) > maxErrorBody {
		capture.raw = raw[:maxErrorBody]
	} else {
		capture.raw = raw
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}
