package in_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	functionsin "dsaboost/internal/modules/functions/adapter/in"
	"dsaboost/internal/modules/functions/domain"
	"dsaboost/internal/modules/functions/usecase"
	functionsout "dsaboost/internal/modules/functions/port/out"
	"dsaboost/internal/platform/logger"
	"dsaboost/internal/platform/ratelimit"
)

type echoProvider struct {
	mu   sync.Mutex
	last functionsout.CompletionRequest
}

func (p *echoProvider) Complete(_ context.Context, req functionsout.CompletionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = req
	return "echo: " + req.Messages[len(req.Messages)-1].Content, nil
}

func (p *echoProvider) lastRequest() functionsout.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

type recordingTransport struct {
	mu   sync.Mutex
	sent []functionsout.Mail
}

func (t *recordingTransport) Send(_ context.Context, mail functionsout.Mail) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, mail)
	return nil
}

func (t *recordingTransport) all() []functionsout.Mail {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]functionsout.Mail(nil), t.sent...)
}

func newServer(t *testing.T, opts functionsin.ServerOptions) (*httptest.Server, *echoProvider, *recordingTransport) {
	t.Helper()
	provider := &echoProvider{}
	transport := &recordingTransport{}
	host := usecase.NewHostInteractor(usecase.HostOptions{Provider: provider, Transport: transport, Logger: logger.Discard()})
	opts.Logger = logger.Discard()
	srv := httptest.NewServer(functionsin.NewServer(host, opts).Handler())
	t.Cleanup(srv.Close)
	return srv, provider, transport
}

func post(t *testing.T, url, body, key string) (*http.Response, domain.Envelope) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env domain.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestChatFunction(t *testing.T) {
	t.Parallel()
	srv, provider, _ := newServer(t, functionsin.ServerOptions{})

	resp, env := post(t, srv.URL+"/functions/v1/ai-chat", `{"message":"explain heaps","chatType":"dsa-help","topic":"Heaps","context":[]}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	var out domain.ChatResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "echo: explain heaps", out.Response)
	last := provider.lastRequest()
	assert.Equal(t, domain.DefaultModel, last.Model)
	assert.Equal(t, 1000, last.MaxTokens)
	assert.InDelta(t, 0.7, last.Temperature, 1e-9)
	assert.Contains(t, last.Messages[0].Content, "Current topic: Heaps")
}

func TestSendEmailValidation(t *testing.T) {
	t.Parallel()
	srv, _, transport := newServer(t, functionsin.ServerOptions{})

	resp, env := post(t, srv.URL+"/functions/v1/send-email", `{"to":"not-an-email","subject":"hi","html":"<p>x</p>","type":"welcome"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error, "to must be a valid email address")

	resp, env = post(t, srv.URL+"/functions/v1/send-email", `{"to":"ada@example.com","subject":"hi","html":"<p>x</p>","type":"welcome"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	sent := transport.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].To)
}

func TestAnonKeyAndUnknownFunction(t *testing.T) {
	t.Parallel()
	srv, _, _ := newServer(t, functionsin.ServerOptions{AnonKey: "anon"})

	resp, _ := post(t, srv.URL+"/functions/v1/ai-chat", `{"message":"hi"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env := post(t, srv.URL+"/functions/v1/nope", `{}`, "anon")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, env.Error, "unknown function")
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	srv, _, _ := newServer(t, functionsin.ServerOptions{AnonKey: "anon"})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/functions/v1/ai-chat", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	srv, _, _ := newServer(t, functionsin.ServerOptions{Limiter: ratelimit.New(0.001, 1)})

	resp, _ := post(t, srv.URL+"/functions/v1/ai-chat", `{"message":"one"}`, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, env := post(t, srv.URL+"/functions/v1/ai-chat", `{"message":"two"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, env.Error, "rate limited")
}
