package anyllm

import (
	"strings"
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/cypherbooth/versecraft/pkg/provider/llm"
)

func TestCompletionParams_SystemPromptLeads(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params := p.completionParams(llm.CompletionRequest{
		SystemPrompt: "You are the crowd.",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "Rate this verse."}},
	})

	if params.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(params.Messages))
	}
	if params.Messages[0].Role != anyllmlib.RoleSystem {
		t.Errorf("first role = %q, want system", params.Messages[0].Role)
	}
	if got := params.Messages[1].ContentString(); got != "Rate this verse." {
		t.Errorf("user content = %q", got)
	}
}

func TestCompletionParams_Tuning(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}

	set := p.completionParams(llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "hi there", Name: "emcee"}},
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if set.Temperature == nil || *set.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", set.Temperature)
	}
	if set.MaxTokens == nil || *set.MaxTokens != 200 {
		t.Errorf("MaxTokens = %v, want 200", set.MaxTokens)
	}
	if set.Messages[0].Name != "emcee" {
		t.Errorf("Name = %q, want emcee", set.Messages[0].Name)
	}

	// Zero values stay nil so backend defaults apply.
	unset := p.completionParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi there"}},
	})
	if unset.Temperature != nil {
		t.Errorf("Temperature = %v, want nil", *unset.Temperature)
	}
	if unset.MaxTokens != nil {
		t.Errorf("MaxTokens = %v, want nil", *unset.MaxTokens)
	}
}

func TestModelCapabilities_Families(t *testing.T) {
	cases := []struct {
		model       string
		wantWindow  int
		wantOutputs int
	}{
		{"gpt-4o-mini", 128_000, 16_384},
		{"claude-3-5-haiku-latest", 200_000, 8_192},
		{"gemini-1.5-pro", 2_097_152, 8_192},
		{"my-custom-model", 128_000, 4_096},
	}
	for _, tc := range cases {
		caps := modelCapabilities(tc.model)
		if caps.ContextWindow != tc.wantWindow || caps.MaxOutputTokens != tc.wantOutputs {
			t.Errorf("%s: caps = %d/%d, want %d/%d",
				tc.model, caps.ContextWindow, caps.MaxOutputTokens, tc.wantWindow, tc.wantOutputs)
		}
	}

	if modelCapabilities("gpt-4o") != modelCapabilities("GPT-4O") {
		t.Error("model matching should be case-insensitive")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("", "gpt-4o"); err == nil {
		t.Error("expected error for empty providerName")
	}
	if _, err := New("openai", ""); err == nil {
		t.Error("expected error for empty model")
	}

	_, err := New("fakecloud", "some-model", anyllmlib.WithAPIKey("dummy"))
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if !strings.Contains(err.Error(), "fakecloud") {
		t.Errorf("error should name the provider, got: %v", err)
	}
}

func TestNew_KnownBackends(t *testing.T) {
	p, err := New("openai", "gpt-4o", anyllmlib.WithAPIKey("sk-test"))
	if err != nil {
		t.Fatalf("openai: unexpected error: %v", err)
	}
	if p.model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", p.model)
	}

	if _, err := NewAnthropic("claude-3-5-haiku-latest", anyllmlib.WithAPIKey("sk-ant-test")); err != nil {
		t.Errorf("anthropic: unexpected error: %v", err)
	}

	// Ollama is a local server and needs no key.
	if _, err := NewOllama("llama3"); err != nil {
		t.Errorf("ollama: unexpected error: %v", err)
	}
}

func TestNew_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New("openai", "gpt-4o"); err == nil {
		t.Fatal("expected error when no API key is available")
	}
}

func TestCountTokens_RoughEstimate(t *testing.T) {
	p := &Provider{model: "gpt-4o"}

	count, err := p.CountTokens([]llm.Message{{Role: llm.RoleUser, Content: "Hello world"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 11 chars rounds to 3 tokens, plus 4 per-message overhead.
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}

	empty, err := p.CountTokens(nil)
	if err != nil || empty != 0 {
		t.Errorf("empty messages: count = %d, err = %v, want 0, nil", empty, err)
	}
}

func TestCapabilities_UsesConfiguredModel(t *testing.T) {
	p := &Provider{model: "claude-3-5-haiku-latest"}
	if got := p.Capabilities().ContextWindow; got != 200_000 {
		t.Errorf("ContextWindow = %d, want 200000", got)
	}
}
