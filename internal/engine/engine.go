// Package engine orchestrates the per-session context pipeline: entity
// extraction, coreference tracking, reference resolution, intent tracking,
// and temporal state, over an ordered turn history.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skellner/converse/internal/coref"
	"github.com/skellner/converse/internal/extract"
	"github.com/skellner/converse/internal/intent"
	"github.com/skellner/converse/internal/nlp"
	"github.com/skellner/converse/internal/refres"
	"github.com/skellner/converse/internal/temporal"
	"github.com/skellner/converse/pkg/types"
)

// ErrEntityNotFound is returned by ContextForEntity when no mention in the
// session matches the query text or any known alias.
var ErrEntityNotFound = errors.New("entity not found in conversation history")

const defaultWindowSize = 5

// ActiveContext is the engine's view of the most recent turn: the last
// intent and the entities currently in focus.
type ActiveContext struct {
	LastIntent     string    `json:"last_intent,omitempty"`
	ActiveEntities []string  `json:"active_entities,omitempty"` // Canonical ids from the current turn
	CurrentTurn    int       `json:"current_turn"`
	Timestamp      time.Time `json:"timestamp"`
}

// ContextEngine maintains all conversational state for one session. All
// exported methods are safe for concurrent use.
type ContextEngine struct {
	mu sync.RWMutex

	turns      []*types.Turn
	nextTurnID int

	extractor *extract.Extractor
	coref     *coref.Tracker
	intents   *intent.Tracker
	temporal  *temporal.Context

	activeContext ActiveContext
	windowSize    int

	clock func() time.Time
}

// Option configures a ContextEngine.
type Option func(*ContextEngine)

// WithWindowSize sets the number of turns considered recent context.
func WithWindowSize(n int) Option {
	return func(e *ContextEngine) {
		if n > 0 {
			e.windowSize = n
		}
	}
}

// WithClock overrides the engine's time source. Used by tests and by
// replay tooling that processes historical transcripts.
func WithClock(clock func() time.Time) Option {
	return func(e *ContextEngine) {
		e.clock = clock
	}
}

// New creates a context engine backed by the given tagger.
func New(tagger nlp.Tagger, opts ...Option) *ContextEngine {
	e := &ContextEngine{
		extractor:  extract.New(tagger),
		coref:      coref.NewTracker(),
		intents:    intent.NewTracker(),
		windowSize: defaultWindowSize,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.temporal = temporal.NewContext(e.clock())
	return e
}

// ProcessTurn runs the full pipeline on one exchange and appends the
// resulting turn to the session history. When the annotation backend is
// unavailable the turn is still recorded with degraded extraction, and the
// backend error is returned alongside it.
func (e *ContextEngine) ProcessTurn(ctx context.Context, userInput, systemResponse string) (*types.Turn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	turn := &types.Turn{
		TurnID:         e.nextTurnID,
		Timestamp:      e.clock(),
		UserInput:      userInput,
		SystemResponse: systemResponse,
	}
	e.temporal.Advance(turn.Timestamp)

	ann, entities, extractErr := e.extractor.Extract(ctx, turn)
	if extractErr != nil {
		turn.ContextUpdates = append(turn.ContextUpdates, "annotation backend unavailable, pattern extraction only")
	}

	for i, entity := range entities {
		e.coref.Track(entity, entities[:i])
	}
	turn.Entities = entities

	turn.ResolvedReferences = refres.Resolve(userInput, e.recentContextLocked(e.windowSize, turn))

	turn.Intent, turn.IntentConfidence = e.intents.Detect(userInput, ann)
	e.intents.Update(turn.Intent, turn.IntentConfidence, turn.Timestamp)

	e.temporal.RecordFromTurn(turn)

	active := ActiveContext{
		LastIntent:  turn.Intent,
		CurrentTurn: turn.TurnID,
		Timestamp:   turn.Timestamp,
	}
	for _, entity := range entities {
		active.ActiveEntities = append(active.ActiveEntities, entity.CanonicalID)
	}
	e.activeContext = active

	e.turns = append(e.turns, turn)
	e.nextTurnID++

	// Callers hold the returned turn beyond the lock, so hand out a copy:
	// a later turn's coreference merge mutates the live mentions.
	if extractErr != nil {
		return turn.Clone(), fmt.Errorf("process turn %d: %w", turn.TurnID, extractErr)
	}
	return turn.Clone(), nil
}

// RecentContext summarizes the last window turns: intents, entities split
// into tasks, temporal references, and everything else.
func (e *ContextEngine) RecentContext(window int) *types.RecentContext {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.recentContextLocked(window, nil)
}

// recentContextLocked builds the recent-context view over the last window
// completed turns, plus the in-flight turn when one is supplied. The
// in-flight turn counts against the window so the view never covers more
// than window turns. Callers must hold at least the read lock.
func (e *ContextEngine) recentContextLocked(window int, inflight *types.Turn) *types.RecentContext {
	if window <= 0 {
		window = e.windowSize
	}

	completed := window
	if inflight != nil {
		completed--
	}
	start := len(e.turns) - completed
	if start < 0 {
		start = 0
	}
	turns := make([]*types.Turn, 0, window)
	turns = append(turns, e.turns[start:]...)
	if inflight != nil {
		turns = append(turns, inflight)
	}

	recent := &types.RecentContext{Turns: len(turns)}
	for _, turn := range turns {
		recent.Intents = append(recent.Intents, types.IntentSummary{
			Intent:     turn.Intent,
			Confidence: turn.IntentConfidence,
			TurnID:     turn.TurnID,
		})
		for _, entity := range turn.Entities {
			summary := types.EntitySummary{
				Text:        entity.Text,
				Label:       entity.Label,
				CanonicalID: entity.CanonicalID,
				TurnID:      turn.TurnID,
			}
			switch {
			case entity.Label == types.LabelTask:
				recent.ActiveTasks = append(recent.ActiveTasks, summary)
			case entity.ResolvedDatetime != nil:
				recent.TemporalReferences = append(recent.TemporalReferences, types.TemporalReference{
					EntitySummary:    summary,
					ResolvedDatetime: *entity.ResolvedDatetime,
				})
			default:
				recent.Entities = append(recent.Entities, summary)
			}
		}
	}
	return recent
}

// ActiveState returns the engine's view of the most recent turn.
func (e *ContextEngine) ActiveState() ActiveContext {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeContext
}

// IntentContext returns the intent tracker's rolling-history summary.
func (e *ContextEngine) IntentContext() intent.Context {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.intents.Context()
}

// TurnCount returns the number of processed turns.
func (e *ContextEngine) TurnCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.turns)
}
