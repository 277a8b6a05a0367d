// Package phonetic decomposes words into a simplified onset/nucleus/coda
// structure used by the rhyme evaluator and the enhancement pipeline.
//
// The decomposition is deliberately coarse — it operates on spelling, not on
// a pronunciation dictionary. A word is lower-cased, stripped of non-letter
// characters, and split at its first vowel cluster:
//
//   - onset:   the leading run of non-vowel letters ("b" in "battle")
//   - nucleus: the first run of vowel letters ("a" in "battle")
//   - coda:    everything after the nucleus ("ttle" in "battle")
//
// The letters a e i o u y count as vowels. The syllable count is the number
// of maximal vowel runs, floored at 1 so degenerate input ("", "hmm") still
// scores as a single syllable.
//
// Results are memoised in a bounded LRU cache shared across goroutines; the
// Analyzer is safe for concurrent use.
package phonetic

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheCapacity is the analysis cache size used when no capacity is
// configured.
const DefaultCacheCapacity = 1000

// Analysis is the phonetic decomposition of a single word.
type Analysis struct {
	// Onset is the leading consonant cluster. Empty for vowel-initial words.
	Onset string

	// Nucleus is the first vowel cluster. Empty only for words without
	// vowel letters.
	Nucleus string

	// Coda is everything after the nucleus.
	Coda string

	// Syllables is the number of vowel clusters, always >= 1.
	Syllables int
}

// Ending returns the rhyme ending of the analysis: nucleus plus coda.
// Two words whose endings match (or where one ending is a suffix of the
// other) are perfect-rhyme candidates.
func (a Analysis) Ending() string {
	return a.Nucleus + a.Coda
}

// Option is a functional option for configuring an [Analyzer].
type Option func(*Analyzer)

// WithCacheCapacity sets the bounded cache capacity. Values below 1 fall
// back to [DefaultCacheCapacity].
func WithCacheCapacity(capacity int) Option {
	return func(a *Analyzer) {
		if capacity > 0 {
			a.capacity = capacity
		}
	}
}

// WithCacheObserver registers fn to be called once per [Analyzer.Analyze]
// with whether the lookup was served from cache. Used to feed cache hit/miss
// metrics without coupling this package to the metrics stack.
func WithCacheObserver(fn func(hit bool)) Option {
	return func(a *Analyzer) {
		a.observer = fn
	}
}

// Analyzer computes and caches phonetic decompositions. Construct one per
// engine instance with [NewAnalyzer]; instances share no state, so tests can
// create throwaway analyzers without cross-test cache pollution.
type Analyzer struct {
	capacity int
	cache    *lru.Cache[string, Analysis]
	group    singleflight.Group
	observer func(hit bool)
}

// NewAnalyzer returns an [Analyzer] with a bounded LRU cache.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{capacity: DefaultCacheCapacity}
	for _, o := range opts {
		o(a)
	}
	// lru.New only fails for capacity < 1, which the options guard against.
	cache, err := lru.New[string, Analysis](a.capacity)
	if err != nil {
		panic("phonetic: cache init: " + err.Error())
	}
	a.cache = cache
	return a
}

// Analyze decomposes word. The word is lower-cased and stripped of
// non-letter characters first; the result for a given cleaned word is
// cached, and a hit refreshes the word's recency. Analyze never fails —
// malformed input degrades to an empty decomposition with one syllable.
func (a *Analyzer) Analyze(word string) Analysis {
	key := clean(word)

	if cached, ok := a.cache.Get(key); ok {
		a.observe(true)
		return cached
	}
	a.observe(false)

	// Concurrent first analyses of the same word compute once.
	v, _, _ := a.group.Do(key, func() (any, error) {
		analysis := decompose(key)
		a.cache.Add(key, analysis)
		return analysis, nil
	})
	return v.(Analysis)
}

// Syllables is shorthand for Analyze(word).Syllables.
func (a *Analyzer) Syllables(word string) int {
	return a.Analyze(word).Syllables
}

// CacheLen reports the current number of cached entries. Intended for tests
// and diagnostics.
func (a *Analyzer) CacheLen() int {
	return a.cache.Len()
}

// CacheContains reports whether word's cleaned form is cached, without
// disturbing its recency.
func (a *Analyzer) CacheContains(word string) bool {
	return a.cache.Contains(clean(word))
}

func (a *Analyzer) observe(hit bool) {
	if a.observer != nil {
		a.observer(hit)
	}
}

// Normalize returns the cleaned form of word used as the analysis cache
// key: lower-cased, letters only. Exported so callers comparing word
// identity use the same normalisation the analyzer does.
func Normalize(word string) string {
	return clean(word)
}

// clean lower-cases word and strips everything that is not a letter.
func clean(word string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// decompose splits a cleaned word at its first vowel cluster and counts
// vowel runs.
func decompose(word string) Analysis {
	runs := 0
	inRun := false

	onsetEnd := -1
	nucleusEnd := -1

	for i, r := range word {
		if isVowel(r) {
			if !inRun {
				runs++
				inRun = true
				if onsetEnd < 0 {
					onsetEnd = i
				}
			}
			continue
		}
		if inRun {
			inRun = false
			if nucleusEnd < 0 {
				nucleusEnd = i
			}
		}
	}

	analysis := Analysis{Syllables: max(runs, 1)}

	switch {
	case onsetEnd < 0:
		// No vowels at all: the whole word is onset.
		analysis.Onset = word
	case nucleusEnd < 0:
		// Word ends inside the first vowel run.
		analysis.Onset = word[:onsetEnd]
		analysis.Nucleus = word[onsetEnd:]
	default:
		analysis.Onset = word[:onsetEnd]
		analysis.Nucleus = word[onsetEnd:nucleusEnd]
		analysis.Coda = word[nucleusEnd:]
	}
	return analysis
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
