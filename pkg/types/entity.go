package types

import (
	"strings"
	"time"
)

// DependencyRelation is a single dependency-parse edge attached to an entity
// mention: the relation name plus the dependent token.
type DependencyRelation struct {
	Relation string `json:"relation"` // Dependency relation (det, amod, compound, ...)
	Text     string `json:"text"`     // Dependent token text
	POS      string `json:"pos"`      // Dependent token part-of-speech tag
}

// ContextualEntity is a single entity mention enriched with contextual
// metadata. Mentions are created during per-turn extraction, receive a
// canonical id during coreference tracking, and accumulate for the lifetime
// of the session. After creation only the coreference step mutates a mention
// (alias merging on the representative); everything else reads.
type ContextualEntity struct {
	// Surface form
	Text       string     `json:"text"`       // Surface text of the mention
	Label      string     `json:"label"`      // Entity label (PERSON, DATE, TASK, ...)
	Kind       EntityKind `json:"kind"`       // Closed kind the pipeline branches on
	Start      int        `json:"start"`      // Start character offset into the turn text
	End        int        `json:"end"`        // End character offset into the turn text
	Confidence float64    `json:"confidence"` // Extraction confidence (0.0-1.0)

	// Context information
	TurnID    int          `json:"turn_id"`   // Owning turn id
	Timestamp time.Time    `json:"timestamp"` // Owning turn timestamp
	Scope     ContextScope `json:"scope"`     // Scope level of this mention

	// Entity resolution
	CanonicalID string                 `json:"canonical_id,omitempty"` // Stable id shared by all mentions of one referent
	Aliases     []string               `json:"aliases,omitempty"`      // Surface strings known to refer to the same referent
	Properties  map[string]interface{} `json:"properties,omitempty"`   // Type-specific property bag

	// Temporal information (populated only for temporal kinds)
	ResolvedDatetime *time.Time `json:"resolved_datetime,omitempty"` // Absolute datetime, nil when unresolved
	TemporalRelation string     `json:"temporal_relation,omitempty"` // "before", "after", "during"

	// Relationships
	RelatedEntities []string             `json:"related_entities,omitempty"` // Canonical ids co-occurring with this mention
	Dependencies    []DependencyRelation `json:"dependencies,omitempty"`     // Dependency edges of the mention's head token
}

// AddAlias records an alternative surface string for this entity's referent.
// Duplicate strings are ignored.
func (e *ContextualEntity) AddAlias(alias string) {
	for _, existing := range e.Aliases {
		if existing == alias {
			return
		}
	}
	e.Aliases = append(e.Aliases, alias)
}

// HasAlias reports whether the given text matches one of the entity's
// aliases, case-insensitively.
func (e *ContextualEntity) HasAlias(text string) bool {
	for _, alias := range e.Aliases {
		if strings.EqualFold(alias, text) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the mention. Snapshots handed to callers use
// clones so later coreference merges on the live mention cannot reach them.
func (e *ContextualEntity) Clone() *ContextualEntity {
	clone := *e
	clone.Aliases = append([]string(nil), e.Aliases...)
	clone.RelatedEntities = append([]string(nil), e.RelatedEntities...)
	clone.Dependencies = append([]DependencyRelation(nil), e.Dependencies...)
	if e.Properties != nil {
		clone.Properties = make(map[string]interface{}, len(e.Properties))
		for key, value := range e.Properties {
			clone.Properties[key] = value
		}
	}
	if e.ResolvedDatetime != nil {
		resolved := *e.ResolvedDatetime
		clone.ResolvedDatetime = &resolved
	}
	return &clone
}

// AddRelated records a canonical id as co-occurring with this entity.
// Self references and duplicates are ignored.
func (e *ContextualEntity) AddRelated(canonicalID string) {
	if canonicalID == "" || canonicalID == e.CanonicalID {
		return
	}
	for _, existing := range e.RelatedEntities {
		if existing == canonicalID {
			return
		}
	}
	e.RelatedEntities = append(e.RelatedEntities, canonicalID)
}
