package crowd

import (
	"fmt"
	"regexp"
)

// triggerCategory is one deterministic rule: a pattern, the reaction it
// maps to, and the intensity band that reaction may occupy. Extra matches
// beyond the first raise intensity inside the band, never past it.
type triggerCategory struct {
	name     string
	pattern  *regexp.Regexp
	reaction Reaction
	timing   Timing
	min, max int
}

// extraMatchBonus is the intensity added per trigger match beyond the first.
const extraMatchBonus = 5

// triggerCategories are evaluated in order; the first category with a match
// wins. Ordering is by crowd impact, so a verse hitting both "destruction"
// and "heat" reads as destruction.
var triggerCategories = []triggerCategory{
	{
		name: "destruction",
		pattern: regexp.MustCompile(
			`(?i)\b(kill(?:ing|ed|a)?|destroy(?:ed|ing|er)?|annihilat\w*|demolish\w*|obliterat\w*|murder\w*|slaughter\w*|bodied|buried)\b`),
		reaction: ReactionWildCheering,
		timing:   TimingImmediate,
		min:      85,
		max:      95,
	},
	{
		name: "victory",
		pattern: regexp.MustCompile(
			`(?i)\b(mic drop|game over|champion|victory|undefeated|crowned?|unstoppable)\b`),
		reaction: ReactionWildCheering,
		timing:   TimingBuildup,
		min:      75,
		max:      90,
	},
	{
		name: "intensity",
		pattern: regexp.MustCompile(
			`(?i)\b(savage|brutal|ruthless|beast|legend(?:ary)?|king|monster)\b`),
		reaction: ReactionHype,
		timing:   TimingImmediate,
		min:      55,
		max:      80,
	},
	{
		name: "heat",
		pattern: regexp.MustCompile(
			`(?i)\b(fire|flames?|blazing|scorching|burn(?:ing|ed)?|heat|inferno)\b`),
		reaction: ReactionHype,
		timing:   TimingImmediate,
		min:      60,
		max:      75,
	},
	{
		name: "battle tactics",
		pattern: regexp.MustCompile(
			`(?i)\b(step (?:to|up)|school(?:ing|ed)|lesson|amateur|rookie|practice|homework)\b`),
		reaction: ReactionMildApproval,
		timing:   TimingDelayed,
		min:      45,
		max:      60,
	},
	{
		name: "personal attack",
		pattern: regexp.MustCompile(
			`(?i)\b(trash|garbage|wack|weak|pathetic|washed|fraud|your mama)\b`),
		reaction: ReactionShockedGasps,
		timing:   TimingImmediate,
		min:      50,
		max:      75,
	},
}

// attemptRules is the deterministic tier: trigger categories first, then the
// wordplay heuristic. It always produces a result, which makes it the chain's
// terminal fallback.
func (c *Classifier) attemptRules(text string) Analysis {
	for _, cat := range triggerCategories {
		matches := cat.pattern.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		intensity := cat.min + extraMatchBonus*(len(matches)-1)
		if intensity > cat.max {
			intensity = cat.max
		}
		return Analysis{
			Reaction:  cat.reaction,
			Intensity: intensity,
			Reasoning: fmt.Sprintf("matched %d %s trigger(s)", len(matches), cat.name),
			Timing:    cat.timing,
		}
	}
	return c.classifyHeuristic(text)
}
