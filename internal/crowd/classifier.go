// Package crowd classifies a performed verse into a crowd-reaction category
// and intensity.
//
// Classification is a layered decision pipeline, modelled as an ordered list
// of attempts evaluated until one succeeds:
//
//	trivial  — inputs too short to read the room are silence, immediately
//	model    — an optional external language model, parsed defensively,
//	           retried once with a simplified prompt
//	rules    — deterministic trigger-word rules plus a wordplay heuristic;
//	           always succeeds
//
// The rules tier is fully deterministic and side-effect-free so the core
// logic is unit-testable without any external service. The model tier has
// its own timeout and can never surface an error: when it fails, the rules
// tier answers instead.
package crowd

import (
	"context"
	"strings"
	"time"

	"github.com/cypherbooth/versecraft/internal/phonetic"
	"github.com/cypherbooth/versecraft/pkg/provider/llm"
)

// minReadableLen is the shortest input worth classifying; anything below it
// is met with silence.
const minReadableLen = 5

// defaultModelTimeout bounds the external model call, independent of the
// enhancement pipeline's budget.
const defaultModelTimeout = 10 * time.Second

// Reaction is a crowd-reaction category.
type Reaction string

const (
	ReactionSilence      Reaction = "silence"
	ReactionMildApproval Reaction = "mild_approval"
	ReactionHype         Reaction = "hype"
	ReactionWildCheering Reaction = "wild_cheering"
	ReactionBooing       Reaction = "booing"
	ReactionShockedGasps Reaction = "shocked_gasps"
)

// IsValid reports whether r is a recognised reaction category.
func (r Reaction) IsValid() bool {
	switch r {
	case ReactionSilence, ReactionMildApproval, ReactionHype,
		ReactionWildCheering, ReactionBooing, ReactionShockedGasps:
		return true
	}
	return false
}

// Timing recommends when the reaction should land relative to the verse.
type Timing string

const (
	TimingImmediate Timing = "immediate"
	TimingDelayed   Timing = "delayed"
	TimingBuildup   Timing = "buildup"
)

// IsValid reports whether t is a recognised timing.
func (t Timing) IsValid() bool {
	return t == TimingImmediate || t == TimingDelayed || t == TimingBuildup
}

// Analysis is one classification result. Produced fresh per call, never
// merged or averaged across calls.
type Analysis struct {
	// Reaction is the crowd-reaction category.
	Reaction Reaction `json:"reactionType"`

	// Intensity grades the reaction from 0 to 100.
	Intensity int `json:"intensity"`

	// Reasoning is a short diagnostic string. Never used for logic
	// downstream.
	Reasoning string `json:"reasoning"`

	// Timing recommends when the reaction should land.
	Timing Timing `json:"timing"`

	// Source names the tier that produced the result: "trivial", "model"
	// or "rules". Useful for observability and debugging degradations.
	Source string `json:"source,omitempty"`
}

// Context carries optional battle state that adjusts the final intensity.
type Context struct {
	// PreviousText is the opponent's preceding verse, offered to the model
	// tier for contrast.
	PreviousText string

	// BattlePhase is the battle stage ("opening", "middle", "closing").
	BattlePhase string

	// PerformanceScore is the performer's running score, 0–100.
	PerformanceScore int
}

// Option is a functional option for configuring a [Classifier].
type Option func(*Classifier)

// WithModel attaches an external language model as the preferred
// classification tier. Without it, only the deterministic tiers run.
func WithModel(provider llm.Provider) Option {
	return func(c *Classifier) {
		c.provider = provider
	}
}

// WithModelTimeout bounds each external model call. Default: 10s.
func WithModelTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Classifier maps verse text to a crowd reaction. Safe for concurrent use.
type Classifier struct {
	phon     *phonetic.Analyzer
	provider llm.Provider
	timeout  time.Duration
}

// NewClassifier returns a [Classifier] sharing the engine's analyzer.
func NewClassifier(phon *phonetic.Analyzer, opts ...Option) *Classifier {
	c := &Classifier{
		phon:    phon,
		timeout: defaultModelTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify runs the attempt chain over text and applies the context
// adjustment to whichever tier produced the result. It never returns an
// error; every input maps to a well-formed [Analysis].
func (c *Classifier) Classify(ctx context.Context, text string, bctx *Context) Analysis {
	trimmed := strings.TrimSpace(text)

	attempts := []struct {
		source string
		fn     func() (Analysis, bool)
	}{
		{"trivial", func() (Analysis, bool) { return attemptTrivial(trimmed) }},
		{"model", func() (Analysis, bool) { return c.attemptModel(ctx, trimmed, bctx) }},
		{"rules", func() (Analysis, bool) { return c.attemptRules(trimmed), true }},
	}

	var result Analysis
	for _, attempt := range attempts {
		if r, ok := attempt.fn(); ok {
			result = r
			result.Source = attempt.source
			break
		}
	}
	return adjustForContext(result, bctx)
}

// attemptTrivial rejects inputs too short to classify. No further tiers
// run for these.
func attemptTrivial(text string) (Analysis, bool) {
	if len(text) >= minReadableLen {
		return Analysis{}, false
	}
	return Analysis{
		Reaction:  ReactionSilence,
		Intensity: 10,
		Reasoning: "input too short to read the room",
		Timing:    TimingImmediate,
	}, true
}

// adjustForContext boosts intensity for strong performances and closing
// moments, capped at 100.
func adjustForContext(a Analysis, bctx *Context) Analysis {
	if bctx == nil {
		return a
	}
	if bctx.PerformanceScore > 70 {
		boost := (bctx.PerformanceScore - 70) / 2
		if boost > 15 {
			boost = 15
		}
		a.Intensity += boost
	}
	if bctx.BattlePhase == "closing" && a.Reaction == ReactionWildCheering {
		a.Intensity += 10
	}
	if a.Intensity > 100 {
		a.Intensity = 100
	}
	return a
}
