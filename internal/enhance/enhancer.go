// Package enhance injects additional internal rhymes into generated verses
// under a strict wall-clock budget.
//
// The pipeline works line by line. Each line gets a dynamically shrinking
// time allotment carved from the global budget, then the strategies run in
// fixed priority — multisyllabic, assonance, consonance, alliteration —
// layering the most impressive technique time allows over progressively
// subtler ones. A line whose substitutions would distort its syllable count
// beyond the caller's tolerance reverts to the original text, and any
// failure inside a single line falls back to that line unchanged. The call
// as a whole never fails: the worst outcome is the input echoed back with a
// note explaining why.
package enhance

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/cypherbooth/versecraft/internal/lyric"
	"github.com/cypherbooth/versecraft/internal/phonetic"
	"github.com/cypherbooth/versecraft/internal/rhyme"
)

const (
	// DefaultTotalBudget bounds one Enhance call end to end.
	DefaultTotalBudget = 120 * time.Millisecond

	// DefaultLineBudget caps any single line's allotment.
	DefaultLineBudget = 80 * time.Millisecond

	defaultTargetDensity = 0.45

	// minLineWords is the smallest line the pipeline will touch.
	minLineWords = 4
)

// Mode controls which strategies are attempted and how eagerly.
type Mode string

const (
	ModeBalanced   Mode = "balanced"
	ModeAggressive Mode = "aggressive"
	ModeSubtle     Mode = "subtle"
)

// IsValid reports whether m is a recognised mode.
func (m Mode) IsValid() bool {
	return m == ModeBalanced || m == ModeAggressive || m == ModeSubtle
}

// Options is the caller-supplied configuration for one Enhance call.
type Options struct {
	// TargetDensity is the desired spans-per-line ratio. Once the running
	// density reaches it, the heavy multisyllabic strategy is skipped for
	// the remaining lines. Recommended range 0.35–0.55; zero selects the
	// default of 0.45.
	TargetDensity float64

	// PreserveEndWords protects the last word of every line from
	// substitution, keeping end-rhyme schemes intact.
	PreserveEndWords bool

	// MaxSyllableDelta caps how far a line's total syllable count may
	// drift from the original. Lines exceeding it revert wholesale.
	MaxSyllableDelta int

	// Mode selects strategy eagerness. Empty means balanced.
	Mode Mode

	// BPM is reserved for timing-aware injection. Current strategies
	// ignore it.
	BPM int
}

func (o Options) withDefaults() Options {
	if o.TargetDensity <= 0 {
		o.TargetDensity = defaultTargetDensity
	}
	if o.Mode == "" {
		o.Mode = ModeBalanced
	}
	return o
}

// Plan is the result of one enhancement run. Read-only to the caller.
type Plan struct {
	// EnhancedLyrics is the full rebuilt text, newline-separated.
	EnhancedLyrics string `json:"enhancedLyrics"`

	// Spans lists every injected rhyme, ordered by line then position.
	Spans []rhyme.Span `json:"spans"`

	// Density is spans divided by the non-empty line count.
	Density float64 `json:"density"`

	// Notes records decisions and diagnostics in order. Never used for
	// control flow.
	Notes []string `json:"notes"`
}

// Option is a functional option for configuring an [Enhancer].
type Option func(*Enhancer)

// WithRandSource injects the random source used for family selection.
// Tests supply a fixed seed to make substitutions reproducible.
func WithRandSource(src rand.Source) Option {
	return func(e *Enhancer) {
		e.rng = rand.New(src)
	}
}

// WithTotalBudget overrides the global time budget for each Enhance call.
func WithTotalBudget(d time.Duration) Option {
	return func(e *Enhancer) {
		if d > 0 {
			e.totalBudget = d
		}
	}
}

// WithLineBudget overrides the per-line allotment cap.
func WithLineBudget(d time.Duration) Option {
	return func(e *Enhancer) {
		if d > 0 {
			e.lineBudget = d
		}
	}
}

// Enhancer is the rhyme injection pipeline. Safe for concurrent use; the
// random source is guarded internally and everything else is read-only
// after construction.
type Enhancer struct {
	phon    *phonetic.Analyzer
	eval    *rhyme.Evaluator
	scanner *rhyme.Scanner

	totalBudget time.Duration
	lineBudget  time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns an [Enhancer] sharing the given analyzer's cache with the
// rest of the engine.
func New(phon *phonetic.Analyzer, opts ...Option) *Enhancer {
	eval := rhyme.NewEvaluator(phon)
	e := &Enhancer{
		phon:        phon,
		eval:        eval,
		scanner:     rhyme.NewScanner(eval),
		totalBudget: DefaultTotalBudget,
		lineBudget:  DefaultLineBudget,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// intn draws from the injected random source under the enhancer's lock.
func (e *Enhancer) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

// Enhance runs the injection pipeline over lyrics and returns a fully
// formed [Plan]. It never returns an error: malformed input, budget
// exhaustion, and per-line failures all degrade to pass-through with an
// explanatory note.
func (e *Enhancer) Enhance(lyrics string, opts Options) *Plan {
	start := time.Now()
	opts = opts.withDefaults()

	plan := &Plan{}
	deadline := After(e.totalBudget)

	// The baseline scan runs inside the global budget but may spend at most
	// half of it: the baseline note is best-effort diagnostics, injection is
	// the contract. A pathological single line cannot stall the pipeline.
	scanDeadline := After(e.totalBudget / 2)
	baseline, complete := e.scanner.ScanUntil(lyrics, scanDeadline.Expired)
	if complete {
		plan.Notes = append(plan.Notes, fmt.Sprintf(
			"baseline: %d internal rhymes, density %.2f", len(baseline.Spans), baseline.Density))
	} else {
		plan.Notes = append(plan.Notes, fmt.Sprintf(
			"baseline scan cut short at the time budget; %d internal rhymes found so far", len(baseline.Spans)))
	}

	lines := lyric.Lines(lyrics)
	nonEmpty := countNonEmpty(lines)

	outLines := make([]string, 0, len(lines))
	remaining := nonEmpty

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			outLines = append(outLines, line)
			continue
		}

		if deadline.Expired() {
			// Copy everything left through unchanged; the plan must still
			// be fully formed.
			outLines = append(outLines, lines[i:]...)
			plan.Notes = append(plan.Notes, fmt.Sprintf(
				"time budget exhausted after %d of %d lines; remaining lines unchanged",
				nonEmpty-remaining, nonEmpty))
			break
		}

		lineDeadline := deadline.Allot(remaining, e.lineBudget)
		allowMulti := e.modeAllowsMulti(opts) &&
			runningDensity(len(plan.Spans), nonEmpty) < opts.TargetDensity

		enhanced, spans, notes := e.enhanceLine(line, i, lineDeadline, opts, allowMulti)
		outLines = append(outLines, enhanced)
		plan.Spans = append(plan.Spans, spans...)
		plan.Notes = append(plan.Notes, notes...)
		remaining--
	}

	plan.EnhancedLyrics = strings.Join(outLines, "\n")
	plan.Density = runningDensity(len(plan.Spans), nonEmpty)
	plan.Notes = append(plan.Notes, fmt.Sprintf(
		"processed in %s, final density %.2f", time.Since(start).Round(time.Microsecond), plan.Density))
	return plan
}

// enhanceLine applies the strategy stack to a single line. A panic inside
// any strategy is contained here: the line reverts to its original text and
// the failure is noted, never propagated.
func (e *Enhancer) enhanceLine(
	line string,
	idx int,
	deadline Deadline,
	opts Options,
	allowMulti bool,
) (out string, spans []rhyme.Span, notes []string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("line enhancement failed, keeping original",
				"line", idx, "panic", r)
			out = line
			spans = nil
			notes = []string{fmt.Sprintf("line %d: enhancement failed (%v), kept original", idx, r)}
		}
	}()

	tokens := lyric.Tokenize(line)
	if len(tokens) < minLineWords {
		return line, nil, []string{fmt.Sprintf("line %d: too short for internal rhymes", idx)}
	}

	ls := newLineState(idx, tokens, opts.PreserveEndWords)

	assonanceGate, consonanceGate := 2, 1
	if opts.Mode == ModeAggressive {
		assonanceGate, consonanceGate = 3, 2
	}

	if allowMulti && !deadline.Expired() {
		e.applyMultisyllabic(ls)
	}
	if len(ls.spans) < assonanceGate && !deadline.Expired() {
		e.applyAssonance(ls)
	}
	if len(ls.spans) < consonanceGate && !deadline.Expired() {
		e.applyConsonance(ls)
	}
	// Alliteration is the subtlest layer and is attempted regardless of
	// earlier successes.
	if !deadline.Expired() {
		e.applyAlliteration(ls)
	}

	if len(ls.spans) == 0 {
		return line, nil, ls.notes
	}

	// Meter preservation: a line whose syllable count drifted too far
	// reverts wholesale.
	before := e.totalSyllables(ls.originalWords())
	after := e.totalSyllables(ls.currentWords())
	if delta := abs(after - before); delta > opts.MaxSyllableDelta {
		return line, nil, append(ls.notes, fmt.Sprintf(
			"line %d: reverted, syllable delta %d exceeds tolerance %d",
			idx, delta, opts.MaxSyllableDelta))
	}

	return lyric.Join(ls.tokens), ls.spans, ls.notes
}

func (e *Enhancer) modeAllowsMulti(opts Options) bool {
	return opts.Mode == ModeBalanced || opts.Mode == ModeAggressive
}

func (e *Enhancer) totalSyllables(words []string) int {
	total := 0
	for _, w := range words {
		total += e.phon.Syllables(w)
	}
	return total
}

func runningDensity(spans, lines int) float64 {
	if lines < 1 {
		lines = 1
	}
	return float64(spans) / float64(lines)
}

func countNonEmpty(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
