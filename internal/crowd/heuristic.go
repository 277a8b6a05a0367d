package crowd

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/cypherbooth/versecraft/internal/phonetic"
)

// idealSyllableRatio is the syllables-per-word ratio the heuristic treats as
// the sweet spot for flow. Verses near it score highest.
const idealSyllableRatio = 1.5

// classifyHeuristic scores wordplay when no trigger category matched. Two
// signals, both deterministic: how close the verse's syllable density sits
// to the ideal flow ratio, and how often words repeat a phonetic code,
// which stands in for deliberate sound patterning.
func (c *Classifier) classifyHeuristic(text string) Analysis {
	words := strings.Fields(text)
	n := len(words)
	if n < 3 {
		return Analysis{
			Reaction:  ReactionSilence,
			Intensity: 15,
			Reasoning: "not enough material to judge",
			Timing:    TimingDelayed,
		}
	}

	syllables := 0
	codes := make(map[string]int, n)
	for _, w := range words {
		syllables += c.phon.Syllables(w)
		if code, _ := matchr.DoubleMetaphone(phonetic.Normalize(w)); code != "" {
			codes[code]++
		}
	}

	ratio := float64(syllables) / float64(n)
	drift := ratio - idealSyllableRatio
	if drift < 0 {
		drift = -drift
	}
	flow := 1 - drift/idealSyllableRatio
	if flow < 0 {
		flow = 0
	}

	repeated := 0
	for _, count := range codes {
		if count > 1 {
			repeated += count
		}
	}
	patterning := float64(repeated) / float64(n)
	if patterning > 1 {
		patterning = 1
	}

	score := 0.6*flow + 0.4*patterning
	reasoning := fmt.Sprintf("wordplay score %.2f (flow %.2f, patterning %.2f)", score, flow, patterning)

	switch {
	case score >= 0.55:
		intensity := 55 + int(20*score)
		if intensity > 75 {
			intensity = 75
		}
		return Analysis{
			Reaction:  ReactionHype,
			Intensity: intensity,
			Reasoning: reasoning,
			Timing:    TimingBuildup,
		}
	case score >= 0.35:
		return Analysis{
			Reaction:  ReactionMildApproval,
			Intensity: 40 + int(15*score),
			Reasoning: reasoning,
			Timing:    TimingDelayed,
		}
	case n < 6:
		return Analysis{
			Reaction:  ReactionSilence,
			Intensity: 15,
			Reasoning: reasoning,
			Timing:    TimingDelayed,
		}
	default:
		return Analysis{
			Reaction:  ReactionBooing,
			Intensity: 20 + int(10*score),
			Reasoning: reasoning,
			Timing:    TimingDelayed,
		}
	}
}
