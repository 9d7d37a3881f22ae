// Package coref clusters entity mentions into canonical entities and
// maintains the undirected co-occurrence graph between them.
//
// Matching is a linear first-match-wins scan over the session's entities,
// which is fine at conversation scale (tens to low hundreds of entities)
// but is not meant for corpus-level coreference.
package coref

import (
	"fmt"
	"strings"

	"github.com/skellner/converse/pkg/types"
)

// similarityThreshold is the Jaccard word-overlap score above which two
// same-label mentions are merged.
const similarityThreshold = 0.8

// Tracker owns the session entity store (canonical id -> representative
// mention) and the relationship graph. Mentions are inserted in extraction
// order; the representative of a cluster is its first mention and only its
// alias set grows afterwards. Written only from the turn-processing path;
// the owning engine serializes access.
type Tracker struct {
	entities map[string]*types.ContextualEntity
	order    []string // Canonical ids in insertion order, for the deterministic scan
	graph    map[string]map[string]bool
}

// NewTracker creates an empty coreference tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entities: make(map[string]*types.ContextualEntity),
		graph:    make(map[string]map[string]bool),
	}
}

// Track assigns or merges the entity's canonical id, then records
// co-occurrence edges against the other entities of the same turn
// (turnEntities: the mentions already tracked for this turn).
func (t *Tracker) Track(entity *types.ContextualEntity, turnEntities []*types.ContextualEntity) {
	if entity.CanonicalID == "" {
		entity.CanonicalID = fmt.Sprintf("%s_%d", entity.Label, len(t.entities))
	}

	if existingID, ok := t.findCoreferent(entity); ok {
		entity.CanonicalID = existingID
		t.entities[existingID].AddAlias(entity.Text)
	} else {
		t.entities[entity.CanonicalID] = entity
		t.order = append(t.order, entity.CanonicalID)
	}

	for _, other := range turnEntities {
		if other.CanonicalID == "" || other.CanonicalID == entity.CanonicalID {
			continue
		}
		t.addEdge(entity.CanonicalID, other.CanonicalID)
		entity.AddRelated(other.CanonicalID)
		other.AddRelated(entity.CanonicalID)
	}
}

// findCoreferent scans the session entities in insertion order and returns
// the first match: exact case-insensitive text with the same label, or the
// same label with high word overlap.
func (t *Tracker) findCoreferent(entity *types.ContextualEntity) (string, bool) {
	for _, id := range t.order {
		existing := t.entities[id]
		if entity.Label != existing.Label {
			continue
		}
		if strings.EqualFold(entity.Text, existing.Text) {
			return id, true
		}
		if jaccard(entity.Text, existing.Text) > similarityThreshold {
			return id, true
		}
	}
	return "", false
}

// jaccard computes word-overlap similarity between two strings: the size of
// the intersection of their lower-cased word sets over the size of the union.
func jaccard(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}

// addEdge records an undirected edge. Both directions are added together so
// the graph stays symmetric by construction.
func (t *Tracker) addEdge(a, b string) {
	if t.graph[a] == nil {
		t.graph[a] = make(map[string]bool)
	}
	if t.graph[b] == nil {
		t.graph[b] = make(map[string]bool)
	}
	t.graph[a][b] = true
	t.graph[b][a] = true
}

// Representative returns the representative mention for a canonical id.
func (t *Tracker) Representative(id string) (*types.ContextualEntity, bool) {
	entity, ok := t.entities[id]
	return entity, ok
}

// Count returns the number of distinct canonical entities in the session.
func (t *Tracker) Count() int {
	return len(t.entities)
}

// Neighbors returns the canonical ids adjacent to the given id, in
// insertion order of the session entity store.
func (t *Tracker) Neighbors(id string) []string {
	edges := t.graph[id]
	if len(edges) == 0 {
		return nil
	}
	neighbors := make([]string, 0, len(edges))
	for _, candidate := range t.order {
		if edges[candidate] {
			neighbors = append(neighbors, candidate)
		}
	}
	return neighbors
}

// Graph exports the full adjacency as canonical id -> neighbor ids, with
// neighbor lists in insertion order.
func (t *Tracker) Graph() map[string][]string {
	exported := make(map[string][]string, len(t.graph))
	for id := range t.graph {
		exported[id] = t.Neighbors(id)
	}
	return exported
}
