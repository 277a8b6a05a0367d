package enhance

import (
	"github.com/antzucaro/matchr"

	"github.com/cypherbooth/versecraft/internal/lyric"
	"github.com/cypherbooth/versecraft/internal/phonetic"
	"github.com/cypherbooth/versecraft/internal/rhyme"
)

// lineState tracks one line through the strategy stack: the mutable token
// slice, which positions have been written, and the spans produced so far.
// Strategies must never write the same position twice.
type lineState struct {
	idx      int
	tokens   []lyric.Token
	original []string
	written  map[int]bool
	preserve bool
	spans    []rhyme.Span
	notes    []string
}

func newLineState(idx int, tokens []lyric.Token, preserveEnd bool) *lineState {
	original := make([]string, len(tokens))
	for i, t := range tokens {
		original[i] = t.Word
	}
	return &lineState{
		idx:      idx,
		tokens:   tokens,
		original: original,
		written:  map[int]bool{},
		preserve: preserveEnd,
	}
}

// workingCount is the number of substitutable positions: all words, minus
// the protected end word.
func (ls *lineState) workingCount() int {
	if ls.preserve && len(ls.tokens) > 0 {
		return len(ls.tokens) - 1
	}
	return len(ls.tokens)
}

func (ls *lineState) canWrite(pos int) bool {
	return pos >= 0 && pos < ls.workingCount() && !ls.written[pos]
}

// write substitutes word at pos, keeping the token's punctuation.
func (ls *lineState) write(pos int, word string) {
	ls.tokens[pos].Word = word
	ls.written[pos] = true
}

// revert undoes the given substitutions, for strategies that did not reach
// their minimum fill count.
func (ls *lineState) revert(positions []int) {
	for _, pos := range positions {
		ls.tokens[pos].Word = ls.original[pos]
		delete(ls.written, pos)
	}
}

func (ls *lineState) originalWords() []string {
	return ls.original
}

func (ls *lineState) currentWords() []string {
	words := make([]string, len(ls.tokens))
	for i, t := range ls.tokens {
		words[i] = t.Word
	}
	return words
}

func (ls *lineState) addSpan(pos int, key string, strength rhyme.Strength, tech rhyme.Technique) {
	ls.spans = append(ls.spans, rhyme.Span{
		Line:      ls.idx,
		Start:     pos,
		End:       pos + 1,
		Key:       key,
		Strength:  strength,
		Technique: tech,
	})
}

// applyMultisyllabic overwrites the two positions flanking the line's
// midpoint with words from a randomly chosen suffix family. Requires six
// working words; produces two devastating multi spans on success.
func (e *Enhancer) applyMultisyllabic(ls *lineState) bool {
	working := ls.workingCount()
	if working < 6 {
		return false
	}

	mid := working / 2
	pos1, pos2 := mid-1, mid+1
	if !ls.canWrite(pos1) || !ls.canWrite(pos2) {
		return false
	}

	family := multiFamilies[e.intn(len(multiFamilies))]

	first := pickBankWord(ls.tokens[pos1].Word, family.Words, "")
	second := pickBankWord(ls.tokens[pos2].Word, family.Words, first)
	if first == "" || second == "" {
		return false
	}

	ls.write(pos1, first)
	ls.write(pos2, second)
	ls.addSpan(pos1, family.Suffix, rhyme.StrengthDevastating, rhyme.TechniqueMulti)
	ls.addSpan(pos2, family.Suffix, rhyme.StrengthDevastating, rhyme.TechniqueMulti)
	return true
}

// applyAssonance overwrites up to two strategic positions (2 and 4) with
// words from a randomly chosen vowel family. Requires four working words
// and succeeds only if both positions were filled.
func (e *Enhancer) applyAssonance(ls *lineState) bool {
	if ls.workingCount() < 4 {
		return false
	}

	family := vowelFamilies[e.intn(len(vowelFamilies))]
	return e.fillPositions(ls, []int{2, 4}, family.Words,
		family.Vowel, rhyme.StrengthStrong, rhyme.TechniqueAssonance)
}

// applyConsonance overwrites positions 1 and 3 with words sharing a coda
// cluster. Requires three working words; succeeds only with both filled.
func (e *Enhancer) applyConsonance(ls *lineState) bool {
	if ls.workingCount() < 3 {
		return false
	}

	cluster := codaClusters[e.intn(len(codaClusters))]
	return e.fillPositions(ls, []int{1, 3}, cluster.Words,
		cluster.Coda, rhyme.StrengthStrong, rhyme.TechniqueConsonance)
}

// applyAlliteration overwrites positions 0 and 2 with words sharing an
// onset letter. The subtlest layer: strength-1 spans, both fills required.
func (e *Enhancer) applyAlliteration(ls *lineState) bool {
	if ls.workingCount() < 3 {
		return false
	}

	group := alliterationGroups[e.intn(len(alliterationGroups))]
	return e.fillPositions(ls, []int{0, 2}, group.Words,
		group.Letter, rhyme.StrengthSubtle, rhyme.TechniqueAlliteration)
}

// fillPositions writes bank words into the requested positions, reverting
// everything if fewer than two could be filled.
func (e *Enhancer) fillPositions(
	ls *lineState,
	positions []int,
	bank []string,
	key string,
	strength rhyme.Strength,
	tech rhyme.Technique,
) bool {
	var filled []int
	var lastPick string

	for _, pos := range positions {
		if !ls.canWrite(pos) {
			continue
		}
		pick := pickBankWord(ls.tokens[pos].Word, bank, lastPick)
		if pick == "" {
			continue
		}
		ls.write(pos, pick)
		filled = append(filled, pos)
		lastPick = pick
	}

	if len(filled) < 2 {
		ls.revert(filled)
		return false
	}

	for _, pos := range filled {
		ls.addSpan(pos, key, strength, tech)
	}
	return true
}

// pickBankWord selects the bank candidate most similar (Jaro-Winkler) to
// the word it replaces, so substitutions stay as close to the source text
// as the bank allows. exclude avoids reusing the sibling position's pick.
func pickBankWord(current string, bank []string, exclude string) string {
	currentNorm := phonetic.Normalize(current)

	best := ""
	bestScore := -1.0
	for _, candidate := range bank {
		if candidate == exclude || candidate == currentNorm {
			continue
		}
		score := matchr.JaroWinkler(currentNorm, candidate, false)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}
