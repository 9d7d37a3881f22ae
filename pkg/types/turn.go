package types

import "time"

// Turn represents a single request-response exchange in a conversation
// session. A turn is created when the user utterance is submitted and is
// immutable once appended to the conversation history.
type Turn struct {
	TurnID             int                 `json:"turn_id"`                   // Monotonic, session-scoped sequence number
	Timestamp          time.Time           `json:"timestamp"`                 // Wall-clock time the turn was processed
	UserInput          string              `json:"user_input"`                // Raw user text
	SystemResponse     string              `json:"system_response,omitempty"` // Optional system response text
	Entities           []*ContextualEntity `json:"entities,omitempty"`        // Entities detected in this turn
	Intent             string              `json:"intent,omitempty"`          // Detected intent label, empty when none matched
	IntentConfidence   float64             `json:"intent_confidence"`         // Intent confidence (0.0-1.0)
	ResolvedReferences map[string]string   `json:"resolved_references,omitempty"` // Pronoun -> resolved referent text
	ContextUpdates     []string            `json:"context_updates,omitempty"` // Free-form processing notes
}

// Clone returns a deep copy of the turn, including its entity mentions.
func (t *Turn) Clone() *Turn {
	clone := *t
	if t.Entities != nil {
		clone.Entities = make([]*ContextualEntity, len(t.Entities))
		for i, entity := range t.Entities {
			clone.Entities[i] = entity.Clone()
		}
	}
	if t.ResolvedReferences != nil {
		clone.ResolvedReferences = make(map[string]string, len(t.ResolvedReferences))
		for pronoun, referent := range t.ResolvedReferences {
			clone.ResolvedReferences[pronoun] = referent
		}
	}
	clone.ContextUpdates = append([]string(nil), t.ContextUpdates...)
	return &clone
}

// EntitySummary is the compact entity view exported in recent-context
// windows and consumed by the reference resolver.
type EntitySummary struct {
	Text        string `json:"text"`
	Label       string `json:"label"`
	CanonicalID string `json:"canonical_id,omitempty"`
	TurnID      int    `json:"turn_id"`
}

// IntentSummary is the per-turn intent view exported in recent-context windows.
type IntentSummary struct {
	Intent     string  `json:"intent,omitempty"`
	Confidence float64 `json:"confidence"`
	TurnID     int     `json:"turn_id"`
}

// TemporalReference is an entity summary annotated with its resolved datetime.
type TemporalReference struct {
	EntitySummary
	ResolvedDatetime time.Time `json:"resolved_datetime"`
}

// RecentContext is the aggregated view of the last N turns: intents,
// plain entities, active tasks, and temporal references. This is the
// working memory pronoun resolution scans.
type RecentContext struct {
	Turns              int                 `json:"turns"`
	Intents            []IntentSummary     `json:"intents"`
	Entities           []EntitySummary     `json:"entities"`            // Non-task, non-temporal mentions
	ActiveTasks        []EntitySummary     `json:"active_tasks"`        // TASK mentions
	TemporalReferences []TemporalReference `json:"temporal_references"` // Mentions with a resolved datetime
}
