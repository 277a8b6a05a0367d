package phonetic_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cypherbooth/versecraft/internal/phonetic"
)

func TestAnalyze_Battle(t *testing.T) {
	t.Parallel()

	a := phonetic.NewAnalyzer()
	got := a.Analyze("battle")

	want := phonetic.Analysis{Onset: "b", Nucleus: "a", Coda: "ttle", Syllables: 2}
	if got != want {
		t.Errorf("Analyze(battle) = %+v, want %+v", got, want)
	}
}

func TestAnalyze_Decompositions(t *testing.T) {
	t.Parallel()

	a := phonetic.NewAnalyzer()

	cases := []struct {
		word string
		want phonetic.Analysis
	}{
		{"fire", phonetic.Analysis{Onset: "f", Nucleus: "i", Coda: "re", Syllables: 2}},
		{"desire", phonetic.Analysis{Onset: "d", Nucleus: "e", Coda: "sire", Syllables: 3}},
		{"flow", phonetic.Analysis{Onset: "fl", Nucleus: "o", Coda: "w", Syllables: 1}},
		{"eat", phonetic.Analysis{Onset: "", Nucleus: "ea", Coda: "t", Syllables: 1}},
		{"sky", phonetic.Analysis{Onset: "sk", Nucleus: "y", Coda: "", Syllables: 1}},
	}
	for _, tc := range cases {
		if got := a.Analyze(tc.word); got != tc.want {
			t.Errorf("Analyze(%q) = %+v, want %+v", tc.word, got, tc.want)
		}
	}
}

func TestAnalyze_DegenerateInput(t *testing.T) {
	t.Parallel()

	a := phonetic.NewAnalyzer()

	for _, word := range []string{"", "?!", "hmm", "123"} {
		got := a.Analyze(word)
		if got.Syllables != 1 {
			t.Errorf("Analyze(%q).Syllables = %d, want 1", word, got.Syllables)
		}
		if got.Nucleus != "" {
			t.Errorf("Analyze(%q).Nucleus = %q, want empty for vowel-less input", word, got.Nucleus)
		}
	}
}

func TestAnalyze_CaseAndPunctInsensitive(t *testing.T) {
	t.Parallel()

	a := phonetic.NewAnalyzer()
	if a.Analyze("Fire!") != a.Analyze("fire") {
		t.Error("Analyze must normalise case and punctuation before decomposition")
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	t.Parallel()

	a := phonetic.NewAnalyzer()
	first := a.Analyze("devastation")
	second := a.Analyze("devastation")
	if first != second {
		t.Errorf("repeat Analyze differs: %+v vs %+v", first, second)
	}
}

func TestAnalyze_CacheBound(t *testing.T) {
	t.Parallel()

	a := phonetic.NewAnalyzer(phonetic.WithCacheCapacity(8))

	for i := 0; i < 50; i++ {
		a.Analyze(fmt.Sprintf("word%d", i))
	}
	if got := a.CacheLen(); got > 8 {
		t.Errorf("CacheLen = %d, want <= 8", got)
	}
}

func TestAnalyze_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	a := phonetic.NewAnalyzer(phonetic.WithCacheCapacity(2))

	a.Analyze("alpha")
	a.Analyze("bravo")
	// Refresh alpha so bravo becomes the LRU entry.
	a.Analyze("alpha")
	a.Analyze("charlie")

	if !a.CacheContains("alpha") {
		t.Error("alpha was refreshed and must survive eviction")
	}
	if a.CacheContains("bravo") {
		t.Error("bravo was least recently used and must be evicted")
	}
	if !a.CacheContains("charlie") {
		t.Error("charlie was just inserted and must be cached")
	}
}

func TestAnalyze_CacheObserver(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	hits, misses := 0, 0
	a := phonetic.NewAnalyzer(phonetic.WithCacheObserver(func(hit bool) {
		mu.Lock()
		defer mu.Unlock()
		if hit {
			hits++
		} else {
			misses++
		}
	}))

	a.Analyze("cypher")
	a.Analyze("cypher")

	mu.Lock()
	defer mu.Unlock()
	if misses != 1 || hits != 1 {
		t.Errorf("observer saw hits=%d misses=%d, want 1/1", hits, misses)
	}
}

func TestAnalyze_ConcurrentSameWord(t *testing.T) {
	t.Parallel()

	a := phonetic.NewAnalyzer(phonetic.WithCacheCapacity(4))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := a.Analyze("annihilation")
			if got.Syllables != 5 {
				t.Errorf("Analyze(annihilation).Syllables = %d, want 5", got.Syllables)
			}
		}()
	}
	wg.Wait()

	if got := a.CacheLen(); got > 4 {
		t.Errorf("CacheLen = %d after concurrent analyses, want <= 4", got)
	}
}
