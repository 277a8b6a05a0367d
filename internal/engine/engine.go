// Package engine assembles the lyric analysis pipeline behind one facade.
//
// An Engine owns a shared phonetic analyzer (and its cache), the rhyme
// scanner, the injection pipeline, and the crowd classifier, and threads
// metrics through all of them. Callers construct it once and use it from any
// number of goroutines.
//
// This package lives under internal/ because it encapsulates
// application-private processing logic and is not intended to be imported by
// external code.
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/cypherbooth/versecraft/internal/crowd"
	"github.com/cypherbooth/versecraft/internal/enhance"
	"github.com/cypherbooth/versecraft/internal/observe"
	"github.com/cypherbooth/versecraft/internal/phonetic"
	"github.com/cypherbooth/versecraft/internal/rhyme"
	"github.com/cypherbooth/versecraft/pkg/provider/llm"
)

// Option is a functional option for configuring an [Engine].
type Option func(*settings)

type settings struct {
	cacheCapacity int
	totalBudget   time.Duration
	lineBudget    time.Duration
	randSource    rand.Source
	modelProvider llm.Provider
	modelTimeout  time.Duration
	metrics       *observe.Metrics
}

// WithCacheCapacity bounds the shared phonetic cache.
func WithCacheCapacity(n int) Option {
	return func(s *settings) {
		s.cacheCapacity = n
	}
}

// WithTotalBudget overrides the enhancement pipeline's global time budget.
func WithTotalBudget(d time.Duration) Option {
	return func(s *settings) {
		s.totalBudget = d
	}
}

// WithLineBudget overrides the per-line allotment cap.
func WithLineBudget(d time.Duration) Option {
	return func(s *settings) {
		s.lineBudget = d
	}
}

// WithRandSource injects the random source for rhyme substitutions. Tests
// use a fixed seed for reproducible output.
func WithRandSource(src rand.Source) Option {
	return func(s *settings) {
		s.randSource = src
	}
}

// WithModelProvider attaches an LLM backend to the crowd classifier.
func WithModelProvider(p llm.Provider) Option {
	return func(s *settings) {
		s.modelProvider = p
	}
}

// WithModelTimeout bounds each classifier model call.
func WithModelTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.modelTimeout = d
	}
}

// WithMetrics supplies the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// Engine is the top-level lyric analysis facade. Safe for concurrent use.
type Engine struct {
	phon       *phonetic.Analyzer
	scanner    *rhyme.Scanner
	enhancer   *enhance.Enhancer
	classifier *crowd.Classifier
	metrics    *observe.Metrics
}

// New constructs an [Engine]. All components share one phonetic analyzer so
// repeated words across operations hit the same cache.
func New(opts ...Option) *Engine {
	s := &settings{}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	metrics := s.metrics

	phonOpts := []phonetic.Option{
		phonetic.WithCacheObserver(func(hit bool) {
			metrics.RecordCacheLookup(context.Background(), hit)
		}),
	}
	if s.cacheCapacity > 0 {
		phonOpts = append(phonOpts, phonetic.WithCacheCapacity(s.cacheCapacity))
	}
	phon := phonetic.NewAnalyzer(phonOpts...)

	var enhOpts []enhance.Option
	if s.totalBudget > 0 {
		enhOpts = append(enhOpts, enhance.WithTotalBudget(s.totalBudget))
	}
	if s.lineBudget > 0 {
		enhOpts = append(enhOpts, enhance.WithLineBudget(s.lineBudget))
	}
	if s.randSource != nil {
		enhOpts = append(enhOpts, enhance.WithRandSource(s.randSource))
	}

	var crowdOpts []crowd.Option
	if s.modelProvider != nil {
		crowdOpts = append(crowdOpts, crowd.WithModel(&meteredProvider{
			inner:   s.modelProvider,
			metrics: metrics,
		}))
	}
	if s.modelTimeout > 0 {
		crowdOpts = append(crowdOpts, crowd.WithModelTimeout(s.modelTimeout))
	}

	return &Engine{
		phon:       phon,
		scanner:    rhyme.NewScanner(rhyme.NewEvaluator(phon)),
		enhancer:   enhance.New(phon, enhOpts...),
		classifier: crowd.NewClassifier(phon, crowdOpts...),
		metrics:    metrics,
	}
}

// ScanRhymes reports the existing internal rhyme structure of lyrics without
// modifying them.
func (e *Engine) ScanRhymes(ctx context.Context, lyrics string) *rhyme.Report {
	ctx, span := observe.StartSpan(ctx, "engine.scan")
	defer span.End()

	start := time.Now()
	report := e.scanner.Scan(lyrics)
	e.metrics.ScanDuration.Record(ctx, time.Since(start).Seconds())
	return &report
}

// EnhanceInternalRhymes runs the time-boxed injection pipeline over lyrics.
// It never fails; see [enhance.Enhancer.Enhance] for degradation behaviour.
func (e *Engine) EnhanceInternalRhymes(ctx context.Context, lyrics string, opts enhance.Options) *enhance.Plan {
	ctx, span := observe.StartSpan(ctx, "engine.enhance")
	defer span.End()

	start := time.Now()
	plan := e.enhancer.Enhance(lyrics, opts)
	e.metrics.EnhanceDuration.Record(ctx, time.Since(start).Seconds())
	for _, sp := range plan.Spans {
		e.metrics.RecordStrategy(ctx, string(sp.Technique))
	}

	observe.Logger(ctx).Debug("lyrics enhanced",
		"spans", len(plan.Spans),
		"density", plan.Density,
	)
	return plan
}

// AnalyzeForCrowdReaction classifies a performed verse. It never fails;
// see [crowd.Classifier.Classify] for tier fallback behaviour.
func (e *Engine) AnalyzeForCrowdReaction(ctx context.Context, text string, bctx *crowd.Context) crowd.Analysis {
	ctx, span := observe.StartSpan(ctx, "engine.classify")
	defer span.End()

	start := time.Now()
	analysis := e.classifier.Classify(ctx, text, bctx)
	e.metrics.ClassifyDuration.Record(ctx, time.Since(start).Seconds())
	e.metrics.RecordClassifierTier(ctx, analysis.Source)

	observe.Logger(ctx).Debug("crowd reaction classified",
		"reaction", analysis.Reaction,
		"intensity", analysis.Intensity,
		"source", analysis.Source,
	)
	return analysis
}

// AnalyzeWord exposes the phonetic decomposition of a single word, sharing
// the engine's cache.
func (e *Engine) AnalyzeWord(word string) phonetic.Analysis {
	return e.phon.Analyze(word)
}

// meteredProvider counts classifier model calls and their outcomes.
type meteredProvider struct {
	inner   llm.Provider
	metrics *observe.Metrics
}

func (m *meteredProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := m.inner.Complete(ctx, req)
	if err != nil {
		m.metrics.RecordProviderRequest(ctx, "model", "error")
		m.metrics.RecordProviderError(ctx, "model")
		return nil, err
	}
	m.metrics.RecordProviderRequest(ctx, "model", "ok")
	return resp, nil
}

func (m *meteredProvider) CountTokens(messages []llm.Message) (int, error) {
	return m.inner.CountTokens(messages)
}

func (m *meteredProvider) Capabilities() llm.ModelCapabilities {
	return m.inner.Capabilities()
}
