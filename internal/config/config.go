// Package config provides the configuration schema and loader for the
// versecraft engine.
package config

import (
	"time"

	"github.com/cypherbooth/versecraft/internal/enhance"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for versecraft.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Engine     EngineConfig     `yaml:"engine"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// EngineConfig tunes the phonetic cache and the rhyme injection pipeline.
type EngineConfig struct {
	// CacheCapacity bounds the phonetic analysis cache. Zero selects the
	// built-in default of 1000 entries.
	CacheCapacity int `yaml:"cache_capacity"`

	// TotalBudgetMS is the wall-clock budget for one enhancement call in
	// milliseconds. Zero selects the default of 120.
	TotalBudgetMS int `yaml:"total_budget_ms"`

	// LineBudgetMS caps any single line's allotment in milliseconds.
	// Zero selects the default of 80.
	LineBudgetMS int `yaml:"line_budget_ms"`

	// TargetDensity is the desired injected spans-per-line ratio.
	// Zero selects the default of 0.45.
	TargetDensity float64 `yaml:"target_density"`

	// PreserveEndWords protects end-of-line words from substitution.
	PreserveEndWords bool `yaml:"preserve_end_words"`

	// MaxSyllableDelta caps per-line syllable drift before a revert.
	MaxSyllableDelta int `yaml:"max_syllable_delta"`

	// Mode selects strategy eagerness: balanced, aggressive, or subtle.
	// Empty means balanced.
	Mode enhance.Mode `yaml:"mode"`
}

// TotalBudget returns the configured total budget as a duration, or zero when
// unset so the engine default applies.
func (e EngineConfig) TotalBudget() time.Duration {
	return time.Duration(e.TotalBudgetMS) * time.Millisecond
}

// LineBudget returns the configured line budget as a duration, or zero when
// unset so the engine default applies.
func (e EngineConfig) LineBudget() time.Duration {
	return time.Duration(e.LineBudgetMS) * time.Millisecond
}

// ClassifierConfig configures the crowd-reaction classifier's model tier.
// With no providers, the classifier runs on its deterministic tiers only.
type ClassifierConfig struct {
	// ModelTimeoutMS bounds each model call in milliseconds. Zero selects
	// the default of 10000.
	ModelTimeoutMS int `yaml:"model_timeout_ms"`

	// Providers lists LLM backends in preference order. The first entry is
	// the primary; the rest are failover fallbacks.
	Providers []ProviderEntry `yaml:"providers"`
}

// ModelTimeout returns the configured model timeout as a duration, or zero
// when unset so the classifier default applies.
func (c ClassifierConfig) ModelTimeout() time.Duration {
	return time.Duration(c.ModelTimeoutMS) * time.Millisecond
}

// ProviderEntry is the configuration block shared by all LLM backends.
type ProviderEntry struct {
	// Name selects the backend implementation (e.g., "openai", "anthropic",
	// "ollama").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`
}
