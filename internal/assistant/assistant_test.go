package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskNotConfigured(t *testing.T) {
	a := New(Config{})
	assert.False(t, a.Configured())
	assert.Equal(t, MsgNotConfigured, a.Ask(context.Background(), "", "hi"))
}

func TestAskRelaysAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "http://site", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, SiteTitle, r.Header.Get("X-Title"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, Model, body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "What is ihram?", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"A sacred state."}}]}`))
	}))
	defer srv.Close()

	a := New(Config{APIKey: "key", SiteURL: "http://site", BaseURL: srv.URL})
	assert.Equal(t, "A sacred state.", a.Ask(context.Background(), "r", "What is ihram?"))
}

func TestAskMapsHTTPErrors(t *testing.T) {
	cases := map[int]string{
		http.StatusUnauthorized:        MsgAuthError,
		http.StatusTooManyRequests:     "An API error occurred: 429",
		http.StatusInternalServerError: "An API error occurred: 500",
	}
	for status, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"x"}}`))
		}))
		a := New(Config{APIKey: "key", BaseURL: srv.URL})
		assert.Equal(t, want, a.Ask(context.Background(), "", "q"), "status %d", status)
		srv.Close()
	}
}

func TestAskEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	a := New(Config{APIKey: "key", BaseURL: srv.URL})
	assert.Equal(t, MsgUnexpected, a.Ask(context.Background(), "", "q"))
}

func TestAskConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	a := New(Config{APIKey: "key", BaseURL: url})
	assert.Equal(t, MsgConnection, a.Ask(context.Background(), "", "q"))
}
