package crowd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cypherbooth/versecraft/pkg/provider/llm"
)

const classifySystemPrompt = `You are the crowd at an underground rap battle.
Judge the verse you are given and respond with a single JSON object and
nothing else. Schema:
{"reactionType":"silence|mild_approval|hype|wild_cheering|booing|shocked_gasps","intensity":0-100,"reasoning":"one short sentence","timing":"immediate|delayed|buildup"}`

// simplifiedRetryPrompt is the second attempt after a malformed reply. It
// restates the schema inline because some models lose the system prompt's
// formatting instructions mid-conversation.
const simplifiedRetryPrompt = `Reply with ONLY this JSON, no prose: {"reactionType":"...","intensity":50,"reasoning":"...","timing":"immediate"}. Rate this verse: %s`

// attemptModel asks the external model to classify the verse. It fails soft:
// any transport error or malformed reply, after one simplified retry, just
// reports not-ok so the rules tier answers instead.
func (c *Classifier) attemptModel(ctx context.Context, text string, bctx *Context) (Analysis, bool) {
	if c.provider == nil {
		return Analysis{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompts := []string{
		buildClassifyPrompt(text, bctx),
		fmt.Sprintf(simplifiedRetryPrompt, text),
	}

	for attempt, prompt := range prompts {
		resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: classifySystemPrompt,
			Messages: []llm.Message{
				{Role: llm.RoleUser, Content: prompt},
			},
			Temperature: 0.3,
			MaxTokens:   200,
		})
		if err != nil {
			slog.Debug("crowd model call failed", "attempt", attempt, "error", err)
			continue
		}
		if a, ok := parseModelAnalysis(resp.Content); ok {
			return a, true
		}
		slog.Debug("crowd model reply unparseable", "attempt", attempt)
	}
	return Analysis{}, false
}

func buildClassifyPrompt(text string, bctx *Context) string {
	var sb strings.Builder
	sb.WriteString("Verse:\n")
	sb.WriteString(text)
	if bctx != nil {
		if bctx.PreviousText != "" {
			sb.WriteString("\n\nOpponent's previous verse:\n")
			sb.WriteString(bctx.PreviousText)
		}
		if bctx.BattlePhase != "" {
			fmt.Fprintf(&sb, "\n\nBattle phase: %s", bctx.BattlePhase)
		}
	}
	return sb.String()
}

// parseModelAnalysis digs a JSON object out of whatever the model returned.
// Models wrap JSON in prose, code fences, or multiple objects; the parser
// scans for a balanced object that mentions the reactionType field and
// validates every field after unmarshalling.
func parseModelAnalysis(reply string) (Analysis, bool) {
	obj, ok := extractJSONObject(reply)
	if !ok {
		return Analysis{}, false
	}

	var raw struct {
		Reaction  string  `json:"reactionType"`
		Intensity float64 `json:"intensity"`
		Reasoning string  `json:"reasoning"`
		Timing    string  `json:"timing"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Analysis{}, false
	}

	a := Analysis{
		Reaction:  Reaction(strings.ToLower(strings.TrimSpace(raw.Reaction))),
		Intensity: clampIntensity(int(raw.Intensity)),
		Reasoning: strings.TrimSpace(raw.Reasoning),
		Timing:    Timing(strings.ToLower(strings.TrimSpace(raw.Timing))),
	}
	if !a.Reaction.IsValid() {
		return Analysis{}, false
	}
	if !a.Timing.IsValid() {
		a.Timing = TimingImmediate
	}
	if a.Reasoning == "" {
		a.Reasoning = "model classification"
	}
	return a, true
}

// extractJSONObject returns the first balanced {...} in s that contains the
// reactionType key. Braces inside JSON strings are skipped.
func extractJSONObject(s string) (string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			ch := s[i]
			switch {
			case escaped:
				escaped = false
			case ch == '\\' && inString:
				escaped = true
			case ch == '"':
				inString = !inString
			case inString:
			case ch == '{':
				depth++
			case ch == '}':
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if strings.Contains(candidate, `"reactionType"`) {
						return candidate, true
					}
					// Not our object; resume scanning past it.
					start = i
					i = len(s)
				}
			}
		}
		// No matching object closed from this start — a stray brace may
		// never balance — so retry from the next "{".
	}
	return "", false
}

func clampIntensity(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
