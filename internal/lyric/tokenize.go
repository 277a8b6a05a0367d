// Package lyric provides line splitting and tokenisation shared by the
// rhyme scanner and the enhancement pipeline.
//
// Both consumers use the same tokenisation contract: a token is a contiguous
// run of non-whitespace characters, split into the word proper and its
// trailing punctuation. The scanner compares words; the enhancer substitutes
// words and reattaches the punctuation when the line is rebuilt, so
// "flow," stays "blow," after substitution rather than losing the comma.
package lyric

import "strings"

// Token is a single word of a line together with any trailing punctuation
// that was attached to it in the source text.
type Token struct {
	// Word is the token text with trailing punctuation removed.
	Word string

	// Punct is the trailing punctuation run ("", ",", "!?", ...).
	Punct string
}

// Lines splits text on newlines without dropping blank lines, so callers
// that rebuild the text preserve its original shape. Carriage returns are
// stripped.
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// NonEmptyLines returns the trimmed, non-empty lines of text in order.
func NonEmptyLines(text string) []string {
	var out []string
	for _, l := range Lines(text) {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Tokenize splits a line into whitespace-delimited tokens, separating each
// token's trailing punctuation so it can be reattached after substitution.
func Tokenize(line string) []Token {
	fields := strings.Fields(line)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		word, punct := splitTrailingPunct(f)
		tokens = append(tokens, Token{Word: word, Punct: punct})
	}
	return tokens
}

// Words returns just the word parts of the line's tokens.
func Words(line string) []string {
	tokens := Tokenize(line)
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Word
	}
	return words
}

// Join reassembles tokens into a line, reattaching trailing punctuation.
func Join(tokens []Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Word)
		sb.WriteString(t.Punct)
	}
	return sb.String()
}

// splitTrailingPunct splits a raw token into its word and trailing
// punctuation. A token that is entirely punctuation keeps it as the word so
// the line's shape survives a round trip.
func splitTrailingPunct(raw string) (word, punct string) {
	end := len(raw)
	for end > 0 && isPunct(rune(raw[end-1])) {
		end--
	}
	if end == 0 {
		return raw, ""
	}
	return raw[:end], raw[end:]
}

func isPunct(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ';', ':', '"', '\'', ')', ']':
		return true
	}
	return false
}
