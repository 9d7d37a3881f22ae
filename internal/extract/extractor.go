// Package extract turns one turn's text into contextual entity mentions:
// it wraps the tagging backend's entity spans with contextual metadata and
// runs the domain-specific task/priority patterns.
package extract

import (
	"context"
	"fmt"

	"github.com/skellner/converse/internal/nlp"
	"github.com/skellner/converse/internal/temporal"
	"github.com/skellner/converse/pkg/types"
)

// honorifics are the title tokens checked near PERSON mentions.
var honorifics = map[string]bool{"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true}

// contextWindowPad is the token padding captured around each mention.
const contextWindowPad = 3

// Extractor produces contextual entities for single turns. Extraction is a
// pure function of the turn text and the turn timestamp; cross-turn linking
// is the coreference tracker's job.
type Extractor struct {
	tagger nlp.Tagger
}

// New creates an extractor backed by the given tagging backend.
func New(tagger nlp.Tagger) *Extractor {
	return &Extractor{tagger: tagger}
}

// Extract annotates the turn text and returns the annotation together with
// all extracted entities (backend spans first, then domain matches, both in
// textual order). When the backend is unavailable, extraction degrades to
// domain patterns alone and the backend error is returned alongside the
// degraded result.
func (e *Extractor) Extract(ctx context.Context, turn *types.Turn) (*nlp.Annotation, []*types.ContextualEntity, error) {
	ann, err := e.tagger.Annotate(ctx, turn.UserInput)
	if err != nil {
		ann = &nlp.Annotation{Text: turn.UserInput}
		err = fmt.Errorf("extract: annotation failed: %w", err)
	}

	var entities []*types.ContextualEntity
	for _, span := range ann.Entities {
		entities = append(entities, e.wrapSpan(ann, span, turn))
	}
	entities = append(entities, CustomEntities(turn)...)

	return ann, entities, err
}

// wrapSpan converts a backend entity span into a contextual entity owned by
// the turn, resolving temporal kinds and populating the property bag.
func (e *Extractor) wrapSpan(ann *nlp.Annotation, span nlp.EntitySpan, turn *types.Turn) *types.ContextualEntity {
	confidence := span.Confidence
	if confidence == 0 {
		confidence = 0.8
	}

	entity := &types.ContextualEntity{
		Text:         span.Text,
		Label:        span.Label,
		Kind:         types.KindForLabel(span.Label),
		Start:        span.Start,
		End:          span.End,
		Confidence:   confidence,
		TurnID:       turn.TurnID,
		Timestamp:    turn.Timestamp,
		Scope:        types.ScopeTurn,
		Dependencies: span.Dependencies,
	}

	if entity.Kind == types.KindTemporal {
		if resolved, ok := temporal.Resolve(span.Text, turn.Timestamp); ok {
			entity.ResolvedDatetime = &resolved
		}
	}

	entity.Properties = e.spanProperties(ann, span)
	return entity
}

// spanProperties builds the property bag for a backend span: dependency
// edges, the surrounding token window, and label-specific fields.
func (e *Extractor) spanProperties(ann *nlp.Annotation, span nlp.EntitySpan) map[string]interface{} {
	props := map[string]interface{}{
		"dependencies":   span.Dependencies,
		"context_window": ann.Window(span, contextWindowPad),
	}

	switch span.Label {
	case types.LabelPerson:
		props["type"] = "person"
		if title, ok := nearbyHonorific(ann, span); ok {
			props["title"] = title
		}
	case types.LabelDate, types.LabelTime:
		props["type"] = "temporal"
		props["original_text"] = span.Text
	case types.LabelOrg:
		props["type"] = "organization"
	}

	return props
}

// nearbyHonorific looks for a title token within two tokens of the span start.
func nearbyHonorific(ann *nlp.Annotation, span nlp.EntitySpan) (string, bool) {
	for i, tok := range ann.Tokens {
		if abs(i-span.FirstToken) > 2 {
			continue
		}
		if honorifics[lowerTrimDot(tok.Text)] {
			return tok.Text, true
		}
	}
	return "", false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
