package rhyme

import (
	"github.com/antzucaro/matchr"

	"github.com/cypherbooth/versecraft/internal/lyric"
	"github.com/cypherbooth/versecraft/internal/phonetic"
)

// maxSpansPerLine caps how many spans the scanner records for a single line
// before moving on. Pairwise comparison is O(n²) in the line's word count;
// battle verses are short, but a pathological line of mutually-rhyming words
// would otherwise produce a quadratic flood of spans.
const maxSpansPerLine = 12

// expiryCheckStride is how many word pairs the scanner classifies between
// expiry checks. Checking the clock per pair would dominate the scan on
// rhyme-sparse lines; a stride keeps the overshoot past expiry small.
const expiryCheckStride = 512

// LineStats carries per-line diagnostics. Consumed by tests and logging
// only — nothing downstream branches on it.
type LineStats struct {
	// Line is the 0-based index among the non-empty lines.
	Line int

	// Words is the line's word count.
	Words int

	// Rhymes is the number of internal rhyme spans found in the line.
	Rhymes int

	// Techniques lists the techniques found, in discovery order.
	Techniques []Technique
}

// Report is the result of scanning a lyric body.
type Report struct {
	// Spans lists every internal rhyme found, ordered by line then position.
	Spans []Span

	// Density is total spans divided by the number of non-empty lines.
	Density float64

	// PerLine holds one LineStats per non-empty line.
	PerLine []LineStats
}

// Scanner finds internal rhyme spans in existing lyrics. Safe for
// concurrent use.
type Scanner struct {
	eval *Evaluator
}

// NewScanner returns a [Scanner] using eval for pair classification.
func NewScanner(eval *Evaluator) *Scanner {
	return &Scanner{eval: eval}
}

// Scan splits lyrics into non-empty lines, tokenises each with the shared
// lyric tokenizer, and tests every unordered word pair within a line. A
// rhyming pair yields one single-word span anchored at the first word. Pairs
// that fail the rhyme test but share a Double Metaphone code are tagged as
// mosaic spans. Scanning stops per line once the span cap is reached.
func (s *Scanner) Scan(lyrics string) Report {
	report, _ := s.ScanUntil(lyrics, nil)
	return report
}

// ScanUntil behaves like [Scanner.Scan] but stops classifying once expired
// reports true, checked between lines and every [expiryCheckStride] pairs
// within a line. A nil expired never stops. The returned bool is false when
// the scan was cut short; the partial Report still carries every span found
// up to that point, with Density over all non-empty lines.
func (s *Scanner) ScanUntil(lyrics string, expired func() bool) (Report, bool) {
	lines := lyric.NonEmptyLines(lyrics)

	report := Report{PerLine: make([]LineStats, 0, len(lines))}
	complete := true
	classified := 0

scan:
	for li, line := range lines {
		if expired != nil && expired() {
			complete = false
			break
		}
		words := lyric.Words(line)
		stats := LineStats{Line: li, Words: len(words)}

	pairs:
		for i := 0; i < len(words); i++ {
			for j := i + 1; j < len(words); j++ {
				if stats.Rhymes >= maxSpansPerLine {
					break pairs
				}
				classified++
				if expired != nil && classified%expiryCheckStride == 0 && expired() {
					complete = false
					report.PerLine = append(report.PerLine, stats)
					break scan
				}
				span, ok := s.classifyPair(li, i, words[i], words[j])
				if !ok {
					continue
				}
				report.Spans = append(report.Spans, span)
				stats.Rhymes++
				stats.Techniques = append(stats.Techniques, span.Technique)
			}
		}
		report.PerLine = append(report.PerLine, stats)
	}

	lineCount := len(lines)
	if lineCount < 1 {
		lineCount = 1
	}
	report.Density = float64(len(report.Spans)) / float64(lineCount)
	return report, complete
}

// classifyPair builds the span for one word pair, if any.
func (s *Scanner) classifyPair(line, start int, a, b string) (Span, bool) {
	if s.eval.DoRhyme(a, b) {
		return Span{
			Line:      line,
			Start:     start,
			End:       start + 1,
			Key:       s.eval.Key(a, b),
			Strength:  s.eval.Strength(a, b),
			Technique: s.eval.TechniqueOf(a, b),
		}, true
	}
	if s.eval.Mosaic(a, b) {
		return Span{
			Line:      line,
			Start:     start,
			End:       start + 1,
			Key:       phoneticKey(a),
			Strength:  StrengthSubtle,
			Technique: TechniqueMosaic,
		}, true
	}
	return Span{}, false
}

// phoneticKey returns the primary Double Metaphone code of a, used as the
// rhyme key for mosaic spans.
func phoneticKey(a string) string {
	primary, _ := matchr.DoubleMetaphone(phonetic.Normalize(a))
	return primary
}
