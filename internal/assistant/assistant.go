package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hajjumrahflow/internal/utils"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	Model          = "google/gemma-3-27b-it:free"
	SiteTitle      = "HajjUmrahFlow"
	Timeout        = 30 * time.Second

	SystemPrompt = "You are a helpful assistant for a travel agency specializing in Hajj and Umrah trips. " +
		"Your name is 'HajjUmrahFlow Assistant'. Provide concise, helpful, and respectful answers " +
		"related to pilgrimage, travel tips, and best practices. " +
		"Always answer in the same language as the user's question."
)

// User-facing replies for failures; the request itself still succeeds.
const (
	MsgNotConfigured = "AI service is not configured. API key is missing."
	MsgAuthError     = "Authentication error. Please check your OpenRouter API key."
	MsgConnection    = "Sorry, I am having trouble connecting to the AI service. Please check your network connection."
	MsgUnexpected    = "Sorry, I received an unexpected response from the AI service."
)

type Config struct {
	APIKey  string
	SiteURL string
	BaseURL string
}

// Assistant is a stateless proxy to an OpenAI-compatible chat completion API.
type Assistant struct {
	client *openai.Client
	ready  bool
}

// headerTransport adds the attribution headers OpenRouter expects.
type headerTransport struct {
	base    http.RoundTripper
	referer string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	req.Header.Set("X-Title", SiteTitle)
	return t.base.RoundTrip(req)
}

func New(cfg Config) Assistant {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return Assistant{}
	}
	oc := openai.DefaultConfig(key)
	oc.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{
		Timeout:   Timeout,
		Transport: headerTransport{base: http.DefaultTransport, referer: cfg.SiteURL},
	}
	return Assistant{client: openai.NewClientWithConfig(oc), ready: true}
}

// Configured reports whether an API key was supplied.
func (a Assistant) Configured() bool {
	return a.ready
}

// Ask returns the model's answer, or a user-facing message describing the failure.
func (a Assistant) Ask(ctx context.Context, requestID, question string) string {
	if !a.ready {
		return MsgNotConfigured
	}
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		utils.LogFailure(requestID, "assistant", "ask", err)
		return errorMessage(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		utils.LogEvent(requestID, "assistant", "ask", "empty completion")
		return MsgUnexpected
	}
	return resp.Choices[0].Message.Content
}

func errorMessage(err error) string {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch {
	case status == http.StatusUnauthorized:
		return MsgAuthError
	case status >= 400:
		return fmt.Sprintf("An API error occurred: %d", status)
	case status > 0:
		return MsgUnexpected
	default:
		return MsgConnection
	}
}
