package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/skellner/converse/internal/temporal"
	"github.com/skellner/converse/pkg/types"
)

// MentionContext is one occurrence of an entity with its surrounding text.
type MentionContext struct {
	TurnID     int     `json:"turn_id"`
	Text       string  `json:"text"`
	Context    string  `json:"context,omitempty"` // Surrounding token window, when available
	Confidence float64 `json:"confidence"`
}

// EntityContext aggregates everything known about one entity across the
// session: identity, mention history, and relationships.
type EntityContext struct {
	Text            string                 `json:"text"`
	CanonicalID     string                 `json:"canonical_id"`
	Mentions        int                    `json:"mentions"`
	FirstMentioned  time.Time              `json:"first_mentioned"`
	LastMentioned   time.Time              `json:"last_mentioned"`
	Aliases         []string               `json:"aliases,omitempty"`
	Properties      map[string]interface{} `json:"properties,omitempty"`
	Relationships   []string               `json:"relationships,omitempty"` // Canonical ids of co-occurring entities
	MentionContexts []MentionContext       `json:"mention_contexts,omitempty"`
}

// SessionInfo is the header block of a session export.
type SessionInfo struct {
	TotalTurns     int       `json:"total_turns"`
	TotalEntities  int       `json:"total_entities"`  // Distinct canonical entities, not raw mentions
	EntityClusters int       `json:"entity_clusters"` // Coreference clusters, one per canonical id
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}

// SessionExport is the full serializable snapshot of a session's context.
type SessionExport struct {
	SessionInfo     SessionInfo         `json:"session_info"`
	Turns           []*types.Turn       `json:"turns"`
	EntityGraph     map[string][]string `json:"entity_graph"`
	TemporalContext temporal.State      `json:"temporal_context"`
	ActiveContext   ActiveContext       `json:"active_context"`
}

// ContextForEntity gathers the cross-turn context for the entity whose text
// or alias matches the query, case-insensitively. Mentions are scanned in
// turn order; the canonical id comes from the first match and later property
// values override earlier ones.
func (e *ContextEngine) ContextForEntity(text string) (*EntityContext, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ec := &EntityContext{Text: text, Properties: make(map[string]interface{})}
	for _, turn := range e.turns {
		for _, entity := range turn.Entities {
			if !strings.EqualFold(entity.Text, text) && !entity.HasAlias(text) {
				continue
			}
			if ec.Mentions == 0 {
				ec.CanonicalID = entity.CanonicalID
				ec.FirstMentioned = entity.Timestamp
			}
			ec.Mentions++
			ec.LastMentioned = entity.Timestamp
			for _, alias := range entity.Aliases {
				ec.Aliases = appendUnique(ec.Aliases, alias)
			}
			for key, value := range entity.Properties {
				ec.Properties[key] = value
			}
			mention := MentionContext{
				TurnID:     entity.TurnID,
				Text:       entity.Text,
				Confidence: entity.Confidence,
			}
			if window, ok := entity.Properties["context_window"].(string); ok {
				mention.Context = window
			}
			ec.MentionContexts = append(ec.MentionContexts, mention)
		}
	}
	if ec.Mentions == 0 {
		return nil, fmt.Errorf("%q: %w", text, ErrEntityNotFound)
	}

	if rep, ok := e.coref.Representative(ec.CanonicalID); ok {
		for _, alias := range rep.Aliases {
			ec.Aliases = appendUnique(ec.Aliases, alias)
		}
	}
	ec.Relationships = e.coref.Neighbors(ec.CanonicalID)
	return ec, nil
}

// Export snapshots the full session context for persistence or transfer.
// The snapshot is detached: turns and mentions are deep copies, so later
// turn processing never mutates an export a caller still holds.
func (e *ContextEngine) Export() *SessionExport {
	e.mu.RLock()
	defer e.mu.RUnlock()

	info := SessionInfo{
		TotalTurns:     len(e.turns),
		TotalEntities:  e.coref.Count(),
		EntityClusters: e.coref.Count(),
	}
	if len(e.turns) > 0 {
		info.StartTime = e.turns[0].Timestamp
		info.EndTime = e.turns[len(e.turns)-1].Timestamp
	}

	turns := make([]*types.Turn, len(e.turns))
	for i, turn := range e.turns {
		turns[i] = turn.Clone()
	}

	return &SessionExport{
		SessionInfo:     info,
		Turns:           turns,
		EntityGraph:     e.coref.Graph(),
		TemporalContext: e.temporal.Export(),
		ActiveContext:   e.activeContext,
	}
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
