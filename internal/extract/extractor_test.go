package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skellner/converse/internal/nlp"
	"github.com/skellner/converse/pkg/types"
)

var turnTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newTurn(text string) *types.Turn {
	return &types.Turn{TurnID: 0, Timestamp: turnTime, UserInput: text}
}

func extractAll(t *testing.T, text string) []*types.ContextualEntity {
	t.Helper()
	e := New(nlp.NewBuiltinTagger())
	_, entities, err := e.Extract(context.Background(), newTurn(text))
	if err != nil {
		t.Fatalf("Extract(%q): %v", text, err)
	}
	return entities
}

func findEntity(entities []*types.ContextualEntity, label string) *types.ContextualEntity {
	for _, e := range entities {
		if e.Label == label {
			return e
		}
	}
	return nil
}

func TestExtractResolvesTemporalEntities(t *testing.T) {
	entities := extractAll(t, "Schedule a meeting with John tomorrow at 2pm")

	date := findEntity(entities, types.LabelDate)
	if date == nil {
		t.Fatal("no DATE entity")
	}
	if date.Kind != types.KindTemporal {
		t.Errorf("DATE kind = %q, want temporal", date.Kind)
	}
	if date.ResolvedDatetime == nil || !date.ResolvedDatetime.Equal(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("tomorrow resolved to %v, want 2024-01-16 00:00", date.ResolvedDatetime)
	}

	clock := findEntity(entities, types.LabelTime)
	if clock == nil {
		t.Fatal("no TIME entity")
	}
	if clock.ResolvedDatetime == nil || !clock.ResolvedDatetime.Equal(time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("2pm resolved to %v, want 2024-01-15 14:00", clock.ResolvedDatetime)
	}
}

func TestExtractPersonProperties(t *testing.T) {
	entities := extractAll(t, "Schedule a call with Dr. Smith")

	person := findEntity(entities, types.LabelPerson)
	if person == nil {
		t.Fatal("no PERSON entity")
	}
	if person.Properties["type"] != "person" {
		t.Errorf("person type property = %v", person.Properties["type"])
	}
	if person.Properties["title"] != "Dr" {
		t.Errorf("person title = %v, want Dr", person.Properties["title"])
	}
}

func TestExtractDegradesWhenBackendFails(t *testing.T) {
	failing := &failingTagger{}
	e := New(failing)

	_, entities, err := e.Extract(context.Background(), newTurn("Create a task to review the budget"))
	if !errors.Is(err, nlp.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}

	// Domain patterns still fire without the backend.
	task := findEntity(entities, types.LabelTask)
	if task == nil {
		t.Fatal("degraded extraction lost the TASK entity")
	}
}

type failingTagger struct{}

func (f *failingTagger) Model() string { return "failing" }

func (f *failingTagger) Annotate(context.Context, string) (*nlp.Annotation, error) {
	return nil, nlp.ErrBackendUnavailable
}
