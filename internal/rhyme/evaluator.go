package rhyme

import (
	"strings"

	"github.com/antzucaro/matchr"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cypherbooth/versecraft/internal/phonetic"
)

// metaphoneCacheCapacity bounds the per-token Double Metaphone memo. Sized
// like the phonetic analysis cache: a verse reuses a small vocabulary.
const metaphoneCacheCapacity = 1000

// Evaluator determines whether and how two words rhyme. It is safe for
// concurrent use; all state lives in the shared [phonetic.Analyzer] cache
// and a bounded metaphone memo of its own.
type Evaluator struct {
	phon  *phonetic.Analyzer
	codes *lru.Cache[string, []string]
}

// NewEvaluator returns an [Evaluator] backed by the given analyzer.
func NewEvaluator(phon *phonetic.Analyzer) *Evaluator {
	// lru.New only fails for capacity < 1.
	codes, err := lru.New[string, []string](metaphoneCacheCapacity)
	if err != nil {
		panic("rhyme: metaphone cache init: " + err.Error())
	}
	return &Evaluator{phon: phon, codes: codes}
}

// DoRhyme reports whether a and b rhyme: either their endings align
// (perfect) or their nuclei match (near rhyme). A word never rhymes with
// itself — identical words are repetition, not rhyme.
func (e *Evaluator) DoRhyme(a, b string) bool {
	if phonetic.Normalize(a) == phonetic.Normalize(b) {
		return false
	}
	pa, pb := e.phon.Analyze(a), e.phon.Analyze(b)
	return endingsAlign(pa, pb) || nucleiMatch(pa, pb)
}

// Strength grades the rhyme between a and b:
//
//	3 — perfect rhyme, both words multisyllabic
//	2 — perfect rhyme, at most one syllable on either side
//	1 — near rhyme (nuclei only)
//
// Calling Strength on a non-rhyming pair returns [StrengthSubtle]; callers
// are expected to gate on [Evaluator.DoRhyme] first.
func (e *Evaluator) Strength(a, b string) Strength {
	pa, pb := e.phon.Analyze(a), e.phon.Analyze(b)
	if endingsAlign(pa, pb) {
		if pa.Syllables > 1 && pb.Syllables > 1 {
			return StrengthDevastating
		}
		return StrengthStrong
	}
	return StrengthSubtle
}

// TechniqueOf classifies the rhyme technique connecting a and b, in fixed
// priority order: multi, alliteration, consonance, assonance, overlap.
// It never errors, even for pairs that do not rhyme.
func (e *Evaluator) TechniqueOf(a, b string) Technique {
	pa, pb := e.phon.Analyze(a), e.phon.Analyze(b)

	switch {
	case pa.Syllables > 1 && pb.Syllables > 1:
		return TechniqueMulti
	case pa.Onset != "" && pa.Onset == pb.Onset:
		return TechniqueAlliteration
	case pa.Coda != "" && pa.Coda == pb.Coda:
		return TechniqueConsonance
	case nucleiMatch(pa, pb):
		return TechniqueAssonance
	default:
		return TechniqueOverlap
	}
}

// Key returns the canonical phoneme string identifying the rhyme class of
// the pair: the shorter aligned ending for perfect rhymes, the shared
// nucleus otherwise.
func (e *Evaluator) Key(a, b string) string {
	pa, pb := e.phon.Analyze(a), e.phon.Analyze(b)
	if endingsAlign(pa, pb) {
		ea, eb := pa.Ending(), pb.Ending()
		if len(ea) <= len(eb) {
			return ea
		}
		return eb
	}
	return pa.Nucleus
}

// Mosaic reports whether a and b (either may be a multi-word phrase) share
// a Double Metaphone code. This catches sound overlaps the spelling-based
// decomposition misses, e.g. rhymes assembled across word boundaries.
func (e *Evaluator) Mosaic(a, b string) bool {
	return codesOverlap(e.metaphoneCodes(a), e.metaphoneCodes(b))
}

// endingsAlign reports a perfect rhyme: equal endings, or one ending being
// a suffix of the other. The suffix must be at least the shorter word's
// full ending, so "s" never aligns with "progressions".
func endingsAlign(a, b phonetic.Analysis) bool {
	ea, eb := a.Ending(), b.Ending()
	if ea == "" || eb == "" {
		return false
	}
	return strings.HasSuffix(ea, eb) || strings.HasSuffix(eb, ea)
}

func nucleiMatch(a, b phonetic.Analysis) bool {
	return a.Nucleus != "" && a.Nucleus == b.Nucleus
}

// metaphoneCodes returns the union of Double Metaphone codes across the
// whitespace-separated tokens of s. Codes are memoised per token: the
// scanner calls Mosaic once per word pair, so without the memo every word
// would be re-encoded O(pairs) times.
func (e *Evaluator) metaphoneCodes(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 1 {
		return e.tokenCodes(fields[0])
	}
	var codes []string
	for _, tok := range fields {
		codes = append(codes, e.tokenCodes(tok)...)
	}
	return codes
}

func (e *Evaluator) tokenCodes(tok string) []string {
	if cached, ok := e.codes.Get(tok); ok {
		return cached
	}
	p, sec := matchr.DoubleMetaphone(tok)
	codes := make([]string, 0, 2)
	if p != "" {
		codes = append(codes, p)
	}
	if sec != "" && sec != p {
		codes = append(codes, sec)
	}
	e.codes.Add(tok, codes)
	return codes
}

// codesOverlap reports whether the two code lists share at least one code.
// The lists hold at most two codes per token, so a nested scan beats a map.
func codesOverlap(a, b []string) bool {
	for _, ca := range a {
		for _, cb := range b {
			if ca == cb {
				return true
			}
		}
	}
	return false
}
