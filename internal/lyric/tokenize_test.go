package lyric_test

import (
	"testing"

	"github.com/cypherbooth/versecraft/internal/lyric"
)

func TestTokenize_TrailingPunct(t *testing.T) {
	t.Parallel()

	tokens := lyric.Tokenize("spit fire, burn bright!")
	if len(tokens) != 4 {
		t.Fatalf("Tokenize: got %d tokens, want 4", len(tokens))
	}
	if tokens[1].Word != "fire" || tokens[1].Punct != "," {
		t.Errorf("tokens[1] = %+v, want Word=fire Punct=,", tokens[1])
	}
	if tokens[3].Word != "bright" || tokens[3].Punct != "!" {
		t.Errorf("tokens[3] = %+v, want Word=bright Punct=!", tokens[3])
	}
}

func TestTokenize_PunctOnlyToken(t *testing.T) {
	t.Parallel()

	tokens := lyric.Tokenize("wait — ...")
	for _, tok := range tokens {
		if tok.Word == "" {
			t.Errorf("token %+v has empty word; punctuation-only tokens must keep their text", tok)
		}
	}
}

func TestJoin_RoundTrip(t *testing.T) {
	t.Parallel()

	line := "step to me, amateur!"
	if got := lyric.Join(lyric.Tokenize(line)); got != line {
		t.Errorf("Join(Tokenize(%q)) = %q, want unchanged", line, got)
	}
}

func TestJoin_SubstitutionKeepsPunct(t *testing.T) {
	t.Parallel()

	tokens := lyric.Tokenize("my flow is cold,")
	tokens[3].Word = "gold"
	if got := lyric.Join(tokens); got != "my flow is gold," {
		t.Errorf("Join after substitution = %q, want %q", got, "my flow is gold,")
	}
}

func TestLines_PreservesBlankLines(t *testing.T) {
	t.Parallel()

	lines := lyric.Lines("one\r\n\ntwo")
	if len(lines) != 3 {
		t.Fatalf("Lines: got %d, want 3", len(lines))
	}
	if lines[0] != "one" || lines[1] != "" || lines[2] != "two" {
		t.Errorf("Lines = %q", lines)
	}
}

func TestNonEmptyLines(t *testing.T) {
	t.Parallel()

	lines := lyric.NonEmptyLines("  \nfirst verse\n\n second verse \n")
	if len(lines) != 2 {
		t.Fatalf("NonEmptyLines: got %d, want 2", len(lines))
	}
	if lines[0] != "first verse" || lines[1] != "second verse" {
		t.Errorf("NonEmptyLines = %q", lines)
	}
}
