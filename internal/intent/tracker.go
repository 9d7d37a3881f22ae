// Package intent classifies a turn's dominant intent from the fixed
// taxonomy and keeps a bounded rolling history of classifications.
package intent

import (
	"regexp"
	"strings"
	"time"

	"github.com/skellner/converse/internal/nlp"
	"github.com/skellner/converse/pkg/types"
)

// History bounds: once the history exceeds maxHistory entries it is
// truncated to the most recent keepHistory.
const (
	maxHistory  = 20
	keepHistory = 15
)

// recentWindow is the number of trailing classifications summarized in the
// recent-pattern view.
const recentWindow = 5

// confidentThreshold is the minimum confidence for a classification to
// count toward the recent pattern.
const confidentThreshold = 0.5

// intentPatterns pairs each taxonomy label with its ordered pattern list.
// Order is significant: the highest-scoring match across all patterns of
// all intents wins, so scanning must be deterministic.
var intentPatterns = []struct {
	intent   string
	patterns []*regexp.Regexp
}{
	{types.IntentSchedule, compileAll(
		`(?i)(schedule|book|plan|set up)\s+(?:a\s+)?(?:meeting|appointment|call)`,
		`(?i)(?:when|what time).*(?:free|available)`,
		`(?i)(?:add|create).*(?:calendar|schedule)`,
	)},
	{types.IntentTaskCreate, compileAll(
		`(?i)(?:add|create|make)\s+(?:a\s+)?(?:task|todo|reminder)`,
		`(?i)(?:need to|have to|must|should)\s+(?:remember to)?`,
		`(?i)(?:remind me to|don't forget to)`,
	)},
	{types.IntentTaskQuery, compileAll(
		`(?i)(?:what|which|show me).*(?:tasks|todos|things to do)`,
		`(?i)(?:my|current|pending)\s+(?:tasks|todos|work)`,
		`(?i)(?:what do i have|what am i supposed to do)`,
	)},
	{types.IntentCalendarQuery, compileAll(
		`(?i)(?:what's|what is).*(?:on my calendar|scheduled)`,
		`(?i)(?:show me|check)\s+(?:my\s+)?(?:calendar|schedule|agenda)`,
		`(?i)(?:do i have|am i).*(?:meeting|appointment|busy)`,
	)},
	{types.IntentEmailProcess, compileAll(
		`(?i)(?:check|read|process|go through)\s+(?:my\s+)?(?:email|inbox|mail)`,
		`(?i)(?:any|new|unread)\s+(?:emails|messages)`,
		`(?i)(?:extract|find).*(?:action items|tasks).*(?:email|mail)`,
	)},
	{types.IntentPlanning, compileAll(
		`(?i)(?:plan|organize|optimize|balance)\s+(?:my\s+)?(?:day|week|schedule|time)`,
		`(?i)(?:help me|can you).*(?:organize|plan|schedule)`,
		`(?i)(?:best time|when should i|optimal)`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// record is one history entry.
type record struct {
	intent     string
	confidence float64
	timestamp  time.Time
}

// Context is the summary view of the tracker's rolling history.
type Context struct {
	CurrentIntent     string         `json:"current_intent,omitempty"`
	CurrentConfidence float64        `json:"current_confidence"`
	RecentPattern     map[string]int `json:"recent_pattern"`
	HistoryLength     int            `json:"intent_history_length"`
}

// Tracker classifies turns and keeps the capped intent history. It is
// written only from the turn-processing path; the owning engine
// serializes access.
type Tracker struct {
	history []record
}

// NewTracker creates an empty intent tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Detect classifies the text's dominant intent. Scoring: for every pattern
// that matches, base score is matched-length over text-length times 0.7,
// plus 0.2 when the match starts in the first 30% of the text; the highest
// score wins. With an annotation available, imperative and wh-word cues add
// a bonus, clamped to 1.0. No match returns ("", 0.0).
func (t *Tracker) Detect(text string, ann *nlp.Annotation) (string, float64) {
	lower := strings.ToLower(text)
	bestIntent := ""
	bestScore := 0.0

	for _, group := range intentPatterns {
		for _, pattern := range group.patterns {
			loc := pattern.FindStringIndex(lower)
			if loc == nil {
				continue
			}
			score := float64(loc[1]-loc[0]) / float64(len(text)) * 0.7
			if float64(loc[0]) < float64(len(text))*0.3 {
				score += 0.2
			}
			if score > bestScore {
				bestScore = score
				bestIntent = group.intent
			}
		}
	}

	if ann != nil && bestIntent != "" {
		bestScore += linguisticBonus(ann, bestIntent)
		if bestScore > 1.0 {
			bestScore = 1.0
		}
	}

	return bestIntent, bestScore
}

// linguisticBonus adds POS-based evidence: an imperative lead verb for
// command intents, wh-words for query intents.
func linguisticBonus(ann *nlp.Annotation, intent string) float64 {
	bonus := 0.0

	if (intent == types.IntentTaskCreate || intent == types.IntentSchedule) && len(ann.Tokens) > 0 {
		switch ann.Tokens[0].Tag {
		case "VB", "VBP":
			bonus += 0.15
		}
	}

	if strings.HasSuffix(intent, "_query") {
		for _, tok := range ann.Tokens {
			if tok.Tag == "WP" || tok.Tag == "WRB" || tok.Tag == "WDT" {
				bonus += 0.1
				break
			}
		}
	}

	return bonus
}

// Update appends a classification to the rolling history. Empty intents
// (no match) are not recorded. Once the history exceeds the cap it is
// truncated to the most recent entries.
func (t *Tracker) Update(intent string, confidence float64, ts time.Time) {
	if intent == "" {
		return
	}
	t.history = append(t.history, record{intent: intent, confidence: confidence, timestamp: ts})
	if len(t.history) > maxHistory {
		t.history = append([]record(nil), t.history[len(t.history)-keepHistory:]...)
	}
}

// Context summarizes the rolling history: the current classification, the
// frequency of confident intents among the last five, and the total length.
func (t *Tracker) Context() Context {
	if len(t.history) == 0 {
		return Context{RecentPattern: map[string]int{}}
	}

	start := len(t.history) - recentWindow
	if start < 0 {
		start = 0
	}
	pattern := make(map[string]int)
	for _, r := range t.history[start:] {
		if r.confidence > confidentThreshold {
			pattern[r.intent]++
		}
	}

	last := t.history[len(t.history)-1]
	return Context{
		CurrentIntent:     last.intent,
		CurrentConfidence: last.confidence,
		RecentPattern:     pattern,
		HistoryLength:     len(t.history),
	}
}

// HistoryLength returns the number of retained history entries.
func (t *Tracker) HistoryLength() int {
	return len(t.history)
}
