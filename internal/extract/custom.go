package extract

import (
	"regexp"
	"strings"

	"github.com/skellner/converse/pkg/types"
)

// minTaskTextLen filters out noise matches from the task patterns.
const minTaskTextLen = 4

// taskPatterns match task-creation phrasings. Group 1 captures the action
// verb (or modal phrase), group 2 the task description.
var taskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(create|add|make)\s+(?:a\s+)?(?:task|todo|reminder)(?:\s+to)?\s+(.+?)(?:\.|$|with|by)`),
	regexp.MustCompile(`(?i)(schedule|plan|book)\s+(.+?)(?:\s+(?:for|at|on|by)|\.|$)`),
	regexp.MustCompile(`(?i)(need to|have to|must|should)\s+(.+?)(?:\.|$|by|before)`),
}

// priorityPatterns map priority phrasings to a level. Order matters:
// first match per pattern, all patterns applied.
var priorityPatterns = []struct {
	rx    *regexp.Regexp
	level string
}{
	{regexp.MustCompile(`(?i)(urgent|asap|immediately|critical)`), "high"},
	{regexp.MustCompile(`(?i)(high\s+priority|important|critical)`), "high"},
	{regexp.MustCompile(`(?i)(low\s+priority|when\s+you\s+can|eventually)`), "low"},
}

// CustomEntities runs the domain patterns over the turn text, independent
// of the tagging backend. It yields TASK entities carrying the detected
// action verb and PRIORITY entities carrying the priority level.
func CustomEntities(turn *types.Turn) []*types.ContextualEntity {
	var entities []*types.ContextualEntity
	text := turn.UserInput

	for _, pattern := range taskPatterns {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			action := strings.ToLower(text[m[2]:m[3]])
			desc := strings.TrimSpace(text[m[4]:m[5]])
			if len(desc) < minTaskTextLen {
				continue
			}
			entities = append(entities, &types.ContextualEntity{
				Text:       desc,
				Label:      types.LabelTask,
				Kind:       types.KindTask,
				Start:      m[4],
				End:        m[5],
				Confidence: 0.8,
				TurnID:     turn.TurnID,
				Timestamp:  turn.Timestamp,
				Scope:      types.ScopeTask,
				Properties: map[string]interface{}{"action": action},
			})
		}
	}

	for _, p := range priorityPatterns {
		for _, m := range p.rx.FindAllStringSubmatchIndex(text, -1) {
			entities = append(entities, &types.ContextualEntity{
				Text:       text[m[2]:m[3]],
				Label:      types.LabelPriority,
				Kind:       types.KindPriority,
				Start:      m[2],
				End:        m[3],
				Confidence: 0.9,
				TurnID:     turn.TurnID,
				Timestamp:  turn.Timestamp,
				Scope:      types.ScopeEntity,
				Properties: map[string]interface{}{"priority_level": p.level},
			})
		}
	}

	return entities
}

// lowerTrimDot normalizes a token for honorific lookups ("Dr." -> "dr").
func lowerTrimDot(tok string) string {
	return strings.TrimSuffix(strings.ToLower(tok), ".")
}
