package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known LLM backend names. Used by [Validate] to
// warn about unrecognised provider names.
var ValidProviderNames = []string{
	"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Engine
	if cfg.Engine.CacheCapacity < 0 {
		errs = append(errs, fmt.Errorf("engine.cache_capacity %d must not be negative", cfg.Engine.CacheCapacity))
	}
	if cfg.Engine.TotalBudgetMS < 0 {
		errs = append(errs, fmt.Errorf("engine.total_budget_ms %d must not be negative", cfg.Engine.TotalBudgetMS))
	}
	if cfg.Engine.LineBudgetMS < 0 {
		errs = append(errs, fmt.Errorf("engine.line_budget_ms %d must not be negative", cfg.Engine.LineBudgetMS))
	}
	if cfg.Engine.LineBudgetMS > 0 && cfg.Engine.TotalBudgetMS > 0 &&
		cfg.Engine.LineBudgetMS > cfg.Engine.TotalBudgetMS {
		errs = append(errs, fmt.Errorf("engine.line_budget_ms %d exceeds engine.total_budget_ms %d", cfg.Engine.LineBudgetMS, cfg.Engine.TotalBudgetMS))
	}
	if cfg.Engine.TargetDensity < 0 || cfg.Engine.TargetDensity > 1 {
		errs = append(errs, fmt.Errorf("engine.target_density %.2f is out of range [0, 1]", cfg.Engine.TargetDensity))
	}
	if cfg.Engine.MaxSyllableDelta < 0 {
		errs = append(errs, fmt.Errorf("engine.max_syllable_delta %d must not be negative", cfg.Engine.MaxSyllableDelta))
	}
	if cfg.Engine.Mode != "" && !cfg.Engine.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("engine.mode %q is invalid; valid values: balanced, aggressive, subtle", cfg.Engine.Mode))
	}

	// Classifier
	if cfg.Classifier.ModelTimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("classifier.model_timeout_ms %d must not be negative", cfg.Classifier.ModelTimeoutMS))
	}
	if len(cfg.Classifier.Providers) == 0 {
		slog.Info("no classifier providers configured; crowd reactions use the deterministic tiers only")
	}

	providerNamesSeen := make(map[string]int, len(cfg.Classifier.Providers))
	for i, p := range cfg.Classifier.Providers {
		prefix := fmt.Sprintf("classifier.providers[%d]", i)
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		if prev, ok := providerNamesSeen[p.Name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of classifier.providers[%d]", prefix, p.Name, prev))
		}
		providerNamesSeen[p.Name] = i

		if !slices.Contains(ValidProviderNames, p.Name) {
			slog.Warn("unknown provider name — may be a typo or third-party provider",
				"name", p.Name,
				"known", ValidProviderNames,
			)
		}
		if p.Model == "" {
			errs = append(errs, fmt.Errorf("%s.model is required", prefix))
		}
	}

	return errors.Join(errs...)
}
