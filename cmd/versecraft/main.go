// Command versecraft analyzes and enhances rap lyrics from the command line.
//
// It reads lyrics from a file or stdin, runs one of the engine operations
// (scan, enhance, classify) and prints the result as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/cypherbooth/versecraft/internal/config"
	"github.com/cypherbooth/versecraft/internal/crowd"
	"github.com/cypherbooth/versecraft/internal/engine"
	"github.com/cypherbooth/versecraft/internal/enhance"
	"github.com/cypherbooth/versecraft/internal/observe"
	"github.com/cypherbooth/versecraft/internal/resilience"
	"github.com/cypherbooth/versecraft/pkg/provider/llm"
	"github.com/cypherbooth/versecraft/pkg/provider/llm/anyllm"
	"github.com/cypherbooth/versecraft/pkg/provider/llm/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	mode := flag.String("mode", "enhance", "operation to run: scan, enhance or classify")
	inPath := flag.String("in", "", "lyrics input file (default: stdin)")
	phase := flag.String("phase", "", "battle phase for classify context: opening, middle or closing")
	score := flag.Int("score", 0, "performance score 0-100 for classify context")
	flag.Parse()

	// Credentials for classifier providers may live in a local .env file.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "versecraft: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "versecraft: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("versecraft starting",
		"config", *configPath,
		"mode", *mode,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Classifier model tier ─────────────────────────────────────────────────
	model, err := buildModelProvider(cfg.Classifier.Providers)
	if err != nil {
		slog.Error("failed to build classifier providers", "err", err)
		return 1
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	engineOpts := []engine.Option{
		engine.WithCacheCapacity(cfg.Engine.CacheCapacity),
		engine.WithTotalBudget(cfg.Engine.TotalBudget()),
		engine.WithLineBudget(cfg.Engine.LineBudget()),
	}
	if model != nil {
		engineOpts = append(engineOpts,
			engine.WithModelProvider(model),
			engine.WithModelTimeout(cfg.Classifier.ModelTimeout()),
		)
	}
	eng := engine.New(engineOpts...)

	// ── Input ─────────────────────────────────────────────────────────────────
	lyrics, err := readLyrics(*inPath)
	if err != nil {
		slog.Error("failed to read lyrics", "err", err)
		return 1
	}

	// ── Run the selected operation ────────────────────────────────────────────
	var result any
	switch *mode {
	case "scan":
		result = eng.ScanRhymes(ctx, lyrics)
	case "enhance":
		result = eng.EnhanceInternalRhymes(ctx, lyrics, enhance.Options{
			TargetDensity:    cfg.Engine.TargetDensity,
			PreserveEndWords: cfg.Engine.PreserveEndWords,
			MaxSyllableDelta: cfg.Engine.MaxSyllableDelta,
			Mode:             cfg.Engine.Mode,
		})
	case "classify":
		var bctx *crowd.Context
		if *phase != "" || *score > 0 {
			bctx = &crowd.Context{
				BattlePhase:      *phase,
				PerformanceScore: *score,
			}
		}
		result = eng.AnalyzeForCrowdReaction(ctx, lyrics, bctx)
	default:
		fmt.Fprintf(os.Stderr, "versecraft: unknown mode %q; valid modes: scan, enhance, classify\n", *mode)
		return 2
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		slog.Error("failed to encode result", "err", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildModelProvider constructs the classifier's LLM backend from the
// configured provider list. The first entry is the primary; any further
// entries become circuit-breaker-guarded fallbacks. An empty list yields nil,
// which leaves the classifier on its deterministic tiers.
func buildModelProvider(entries []config.ProviderEntry) (llm.Provider, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	providers := make([]llm.Provider, 0, len(entries))
	for _, entry := range entries {
		p, err := buildOne(entry)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", entry.Name, err)
		}
		providers = append(providers, p)
	}

	if len(providers) == 1 {
		return providers[0], nil
	}

	group := resilience.NewLLMFallback(providers[0], entries[0].Name, resilience.FallbackConfig{})
	for i := 1; i < len(providers); i++ {
		group.AddFallback(entries[i].Name, providers[i])
	}
	return group, nil
}

// buildOne constructs a single LLM backend from its config entry. The
// "openai" name uses the native SDK client; everything else goes through the
// any-llm bridge, which covers anthropic, ollama, gemini and friends.
func buildOne(entry config.ProviderEntry) (llm.Provider, error) {
	if entry.Name == "openai" && entry.BaseURL == "" {
		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return openai.New(apiKey, entry.Model)
	}

	var opts []anyllmlib.Option
	if entry.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
	}
	if entry.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
	}
	return anyllm.New(entry.Name, entry.Model, opts...)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// readLyrics loads the input text from path, or from stdin when path is empty.
func readLyrics(path string) (string, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	text := strings.TrimRight(string(data), "\n")
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no lyrics provided")
	}
	return text, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
