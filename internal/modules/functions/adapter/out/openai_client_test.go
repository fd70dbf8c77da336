package out_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	functionsout "dsaboost/internal/modules/functions/adapter/out"
	"dsaboost/internal/modules/functions/domain"
	portout "dsaboost/internal/modules/functions/port/out"
)

func TestOpenAIClientComplete(t *testing.T) {
	t.Parallel()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"use a min-heap"}}]}`))
	}))
	defer srv.Close()

	client := functionsout.NewOpenAIClient("sk-test", srv.URL+"/v1/", srv.Client())
	reply, err := client.Complete(context.Background(), portout.CompletionRequest{
		Model:       domain.DefaultModel,
		Messages:    []domain.ChatMessage{{Role: "user", Content: "k smallest?"}},
		MaxTokens:   domain.DefaultMaxTokens,
		Temperature: domain.DefaultTemperature,
	})
	require.NoError(t, err)
	assert.Equal(t, "use a min-heap", reply)
	assert.Equal(t, domain.DefaultModel, got["model"])
	assert.EqualValues(t, 1000, got["max_tokens"])
}

func TestOpenAIClientStatusError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := functionsout.NewOpenAIClient("sk-bad", srv.URL, srv.Client())
	_, err := client.Complete(context.Background(), portout.CompletionRequest{
		Messages: []domain.ChatMessage{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI API error: 401 invalid api key")
}
