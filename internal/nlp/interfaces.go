// Package nlp defines the boundary to the tokenization/NER/POS backend the
// context engine depends on, plus the built-in heuristic backend, a remote
// HTTP backend, and the circuit-breaker and cache wrappers around them.
package nlp

import (
	"context"
	"errors"

	"github.com/skellner/converse/pkg/types"
)

// ErrBackendUnavailable is returned when the tagging backend cannot annotate
// text at all. This is the only hard failure the context engine propagates;
// the pipeline still runs domain regex extraction on a degraded annotation.
var ErrBackendUnavailable = errors.New("nlp backend unavailable")

// Token is a single token with its character offset and Penn-style POS tag.
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Tag   string `json:"tag"` // Penn Treebank tag (VB, NN, WP, ...)
}

// EntitySpan is an entity mention supplied by the backend.
type EntitySpan struct {
	Text       string  `json:"text"`
	Start      int     `json:"start"` // Start character offset
	End        int     `json:"end"`   // End character offset
	Label      string  `json:"label"` // NER label (PERSON, DATE, ORG, ...)
	Confidence float64 `json:"confidence"`

	// Token indices of the span within Annotation.Tokens, used for
	// context-window and honorific lookups.
	FirstToken int `json:"first_token"`
	LastToken  int `json:"last_token"`

	// Shallow dependency edges of the span's head token.
	Dependencies []types.DependencyRelation `json:"dependencies,omitempty"`
}

// Annotation is the backend's analysis of one turn's text.
type Annotation struct {
	Text     string       `json:"text"`
	Tokens   []Token      `json:"tokens"`
	Entities []EntitySpan `json:"entities"`
}

// Window returns the text covered by the tokens within +-pad tokens of the
// span, used to populate an entity's surrounding-context property.
func (a *Annotation) Window(span EntitySpan, pad int) string {
	if len(a.Tokens) == 0 {
		return ""
	}
	first := span.FirstToken - pad
	if first < 0 {
		first = 0
	}
	last := span.LastToken + pad
	if last > len(a.Tokens)-1 {
		last = len(a.Tokens) - 1
	}
	start := a.Tokens[first].Start
	end := a.Tokens[last].End
	if start < 0 || end > len(a.Text) || start >= end {
		return ""
	}
	return a.Text[start:end]
}

// Tagger is the interface to a tokenization/NER/POS backend.
// Implementations must be safe for concurrent use.
type Tagger interface {
	// Annotate analyzes the text and returns tokens and entity spans.
	// A failure to annotate at all is reported as ErrBackendUnavailable.
	Annotate(ctx context.Context, text string) (*Annotation, error)

	// Model returns the identifier of the underlying tagging model.
	Model() string
}
