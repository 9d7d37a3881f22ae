package temporal

import (
	"time"

	"github.com/skellner/converse/pkg/types"
)

// Context is the per-session temporal state: the reference time expressions
// resolve against, and the anchor table mapping expression text to its
// resolved datetime. It is written only from the turn-processing path; the
// owning engine serializes access.
type Context struct {
	referenceTime time.Time
	anchors       map[string]time.Time
}

// State is the exportable snapshot of a temporal context.
type State struct {
	ReferenceTime   time.Time            `json:"reference_time"`
	TemporalAnchors map[string]time.Time `json:"temporal_anchors"`
}

// NewContext creates a temporal context anchored at the given time.
func NewContext(now time.Time) *Context {
	return &Context{
		referenceTime: now,
		anchors:       make(map[string]time.Time),
	}
}

// ReferenceTime returns the timestamp expressions currently resolve against.
func (c *Context) ReferenceTime() time.Time {
	return c.referenceTime
}

// Advance moves the reference time forward to the given turn timestamp.
// Temporal expressions are always relative to when the turn occurred, not
// to wall-clock time at query time.
func (c *Context) Advance(ts time.Time) {
	c.referenceTime = ts
}

// RecordFromTurn stores an anchor for every entity in the turn that carries
// a resolved datetime.
func (c *Context) RecordFromTurn(turn *types.Turn) {
	for _, entity := range turn.Entities {
		if entity.ResolvedDatetime != nil {
			c.anchors[entity.Text] = *entity.ResolvedDatetime
		}
	}
}

// Anchor looks up a previously resolved expression.
func (c *Context) Anchor(expression string) (time.Time, bool) {
	resolved, ok := c.anchors[expression]
	return resolved, ok
}

// Export returns a copy of the temporal state for serialization.
func (c *Context) Export() State {
	anchors := make(map[string]time.Time, len(c.anchors))
	for expr, resolved := range c.anchors {
		anchors[expr] = resolved
	}
	return State{ReferenceTime: c.referenceTime, TemporalAnchors: anchors}
}
