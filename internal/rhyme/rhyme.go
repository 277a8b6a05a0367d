// Package rhyme detects rhyme relationships between words and scans lyrics
// for internal rhyme spans.
//
// Rhyme detection compares the simplified phonetic decompositions produced
// by [phonetic.Analyzer]. Two words are a perfect rhyme when their rhyme
// endings (nucleus + coda) match or one ending is a suffix of the other —
// the suffix rule is what lets "fire" ("ire") rhyme with "desire" ("esire").
// Matching nuclei alone count as a near rhyme.
//
// A secondary mosaic check uses Double Metaphone codes so that multi-word
// phrases with overlapping phonemes can be tagged even when the simplified
// decomposition misses them.
package rhyme

// Technique names the rhyme technique connecting two words.
type Technique string

const (
	// TechniqueMulti is a multisyllabic rhyme — both words carry more than
	// one syllable. The most skillful technique.
	TechniqueMulti Technique = "multi"

	// TechniqueAssonance is a shared vowel sound.
	TechniqueAssonance Technique = "assonance"

	// TechniqueConsonance is a shared trailing consonant cluster.
	TechniqueConsonance Technique = "consonance"

	// TechniqueAlliteration is a shared leading consonant cluster.
	TechniqueAlliteration Technique = "alliteration"

	// TechniqueMosaic is a phonetic-code overlap across word boundaries.
	TechniqueMosaic Technique = "mosaic"

	// TechniqueOverlap is the catch-all for pairs that rhyme without
	// fitting any named technique.
	TechniqueOverlap Technique = "overlap"
)

// Strength grades how hard a rhyme hits.
type Strength int

const (
	// StrengthSubtle is a near rhyme the crowd barely registers.
	StrengthSubtle Strength = 1

	// StrengthStrong is a clean perfect rhyme.
	StrengthStrong Strength = 2

	// StrengthDevastating is a perfect multisyllabic rhyme.
	StrengthDevastating Strength = 3
)

// Span describes one detected or injected internal rhyme. Spans are
// immutable once produced.
type Span struct {
	// Line is the 0-based index of the line containing the span.
	Line int `json:"lineIndex"`

	// Start and End delimit the word-index range, half-open.
	Start int `json:"start"`
	End   int `json:"end"`

	// Key is the canonical phoneme string identifying the rhyme class.
	Key string `json:"rhymeKey"`

	// Strength grades the span from subtle (1) to devastating (3).
	Strength Strength `json:"strength"`

	// Technique names how the span rhymes.
	Technique Technique `json:"technique"`
}
