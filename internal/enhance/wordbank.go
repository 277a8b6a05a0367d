package enhance

// Curated rhyme word banks. All tables are immutable after init; strategy
// code must never append to or reorder them. Family selection goes through
// the enhancer's injected random source, so a seeded enhancer substitutes
// deterministically.

// multiFamily is a suffix family of multisyllabic rhyme words.
type multiFamily struct {
	// Suffix is the shared ending, used as the span's rhyme key.
	Suffix string

	// Words all carry more than one syllable and rhyme on Suffix.
	Words []string
}

var multiFamilies = []multiFamily{
	{Suffix: "ation", Words: []string{
		"devastation", "annihilation", "retaliation", "domination",
		"elevation", "revelation", "declaration",
	}},
	{Suffix: "ession", Words: []string{
		"aggression", "obsession", "possession", "progression", "confession",
	}},
	{Suffix: "iction", Words: []string{
		"friction", "affliction", "conviction", "prediction", "restriction",
	}},
	{Suffix: "inity", Words: []string{
		"infinity", "divinity", "vicinity", "masculinity",
	}},
}

// vowelFamily groups words whose first vowel cluster is Vowel.
type vowelFamily struct {
	Vowel string
	Words []string
}

var vowelFamilies = []vowelFamily{
	{Vowel: "a", Words: []string{"flash", "savage", "attack", "rapid", "blast", "hazard"}},
	{Vowel: "e", Words: []string{"flex", "wreck", "relentless", "venom", "tempo"}},
	{Vowel: "i", Words: []string{"spit", "vicious", "killer", "swift", "winner"}},
	{Vowel: "o", Words: []string{"flow", "cold", "gold", "bold", "smoke"}},
}

// codaCluster groups single-nucleus words sharing a trailing consonant
// cluster.
type codaCluster struct {
	Coda  string
	Words []string
}

var codaClusters = []codaCluster{
	{Coda: "ck", Words: []string{"track", "smack", "crack", "black", "stack"}},
	{Coda: "st", Words: []string{"bust", "dust", "thrust", "blast"}},
	{Coda: "ll", Words: []string{"kill", "skill", "drill", "chill", "still"}},
	{Coda: "ght", Words: []string{"fight", "night", "might", "light", "tight"}},
}

// alliterationGroup groups words sharing a leading letter.
type alliterationGroup struct {
	Letter string
	Words  []string
}

var alliterationGroups = []alliterationGroup{
	{Letter: "b", Words: []string{"blazing", "brutal", "bold", "blistering"}},
	{Letter: "s", Words: []string{"savage", "scorching", "slick", "seismic"}},
	{Letter: "f", Words: []string{"fierce", "fatal", "flawless", "furious"}},
	{Letter: "m", Words: []string{"merciless", "mighty", "massive", "monumental"}},
}
