package humanize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcfg "github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/config"
)

func TestSelectProvider(t *testing.T) {
	cfg := appcfg.AIConfig{Providers: []appcfg.AIProvider{
		{ID: "a", Enabled: false},
		{ID: "b", Enabled: true},
		{ID: "c", Enabled: true},
	}}
	p := selectProvider(cfg)
	require.NotNil(t, p)
	assert.Equal(t, "b", p.ID, "first enabled provider wins")

	assert.Nil(t, selectProvider(appcfg.AIConfig{}))
	assert.Nil(t, selectProvider(appcfg.AIConfig{Providers: []appcfg.AIProvider{{Enabled: false}}}))
}

func TestNewGenerator_NoProvider(t *testing.T) {
	_, err := NewGenerator(appcfg.AIConfig{}, time.Minute)
	assert.Error(t, err)
}

func TestProviderTypeNormalization(t *testing.T) {
	assert.True(t, isOpenAICompatibleProviderType("OpenAI-Compatible"))
	assert.True(t, isOpenAICompatibleProviderType("openai_compatible"))
	assert.True(t, isOpenAICompatibleProviderType(" openai compatible "))
	assert.False(t, isOpenAICompatibleProviderType("OpenAI"))

	assert.True(t, isAnthropicProviderType("Anthropic"))
	assert.True(t, isAnthropicProviderType("  anthropic "))
	assert.False(t, isAnthropicProviderType("openai"))
}

func TestNormalizeOpenAIBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://api.openai.com", "https://api.openai.com/v1"},
		{"https://api.openai.com/v1", "https://api.openai.com/v1"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1"},
		{"https://proxy.example.com/openai", "https://proxy.example.com/openai/v1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeOpenAIBaseURL(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeCompatibleEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "https://api.openai.com"},
		{"https://llm.example.com", "https://llm.example.com"},
		{"https://llm.example.com/", "https://llm.example.com"},
		{"https://llm.example.com/v1", "https://llm.example.com"},
		{"https://llm.example.com/v1/", "https://llm.example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeCompatibleEndpoint(tt.in), "input %q", tt.in)
	}
}

func compatGenerator(endpoint string, timeout time.Duration) *providerGenerator {
	return &providerGenerator{
		provider: &appcfg.AIProvider{
			Type:         "OpenAI-Compatible",
			APIKey:       "test-key",
			Endpoint:     endpoint,
			DefaultModel: "test-model",
		},
		timeout:   timeout,
		maxTokens: 256,
	}
}

func TestGenerate_OpenAICompatible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "**rewritten** text"}},
			},
		})
	}))
	defer srv.Close()

	g := compatGenerator(srv.URL, 5*time.Second)
	out, err := g.Generate(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "rewritten text", out, "markdown artifacts are stripped from model output")
}

func TestGenerate_UpstreamStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"billing"}}`))
	}))
	defer srv.Close()

	g := compatGenerator(srv.URL, 5*time.Second)
	_, err := g.Generate(context.Background(), "", "prompt")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusPaymentRequired, upstream.Status)
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "   "}},
			},
		})
	}))
	defer srv.Close()

	g := compatGenerator(srv.URL, 5*time.Second)
	_, err := g.Generate(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestGenerate_ClientCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := compatGenerator(srv.URL, 5*time.Second)
	_, err := g.Generate(ctx, "", "prompt")

	assert.ErrorIs(t, err, context.Canceled, "a disconnecting caller is not a provider timeout")
	assert.NotErrorIs(t, err, ErrGenerationTimeout)
}

func TestGenerate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := compatGenerator(srv.URL, 50*time.Millisecond)
	_, err := g.Generate(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, ErrGenerationTimeout)
}
