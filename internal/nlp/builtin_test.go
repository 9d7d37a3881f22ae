package nlp

import (
	"context"
	"testing"

	"github.com/skellner/converse/pkg/types"
)

func annotate(t *testing.T, text string) *Annotation {
	t.Helper()
	ann, err := NewBuiltinTagger().Annotate(context.Background(), text)
	if err != nil {
		t.Fatalf("Annotate(%q): %v", text, err)
	}
	return ann
}

func entityByLabel(ann *Annotation, label string) (EntitySpan, bool) {
	for _, e := range ann.Entities {
		if e.Label == label {
			return e, true
		}
	}
	return EntitySpan{}, false
}

func TestAnnotateSchedulingUtterance(t *testing.T) {
	ann := annotate(t, "Schedule a meeting with John tomorrow at 2pm")

	if got := ann.Tokens[0].Tag; got != "VB" {
		t.Errorf("leading verb tagged %q, want VB", got)
	}

	want := map[string]string{
		types.LabelEvent:  "meeting",
		types.LabelPerson: "John",
		types.LabelDate:   "tomorrow",
		types.LabelTime:   "2pm",
	}
	for label, text := range want {
		span, ok := entityByLabel(ann, label)
		if !ok {
			t.Fatalf("no %s entity in %v", label, ann.Entities)
		}
		if span.Text != text {
			t.Errorf("%s entity = %q, want %q", label, span.Text, text)
		}
	}

	// Offsets must address the original text.
	for _, span := range ann.Entities {
		if ann.Text[span.Start:span.End] != span.Text {
			t.Errorf("span %q offsets [%d:%d] address %q", span.Text, span.Start, span.End, ann.Text[span.Start:span.End])
		}
	}
}

func TestAnnotateSplitClockTime(t *testing.T) {
	ann := annotate(t, "Book a call for 2 pm")
	span, ok := entityByLabel(ann, types.LabelTime)
	if !ok {
		t.Fatalf("no TIME entity in %v", ann.Entities)
	}
	if span.Text != "2 pm" {
		t.Errorf("TIME entity = %q, want %q", span.Text, "2 pm")
	}
}

func TestAnnotateHonorificStaysOutsideSpan(t *testing.T) {
	ann := annotate(t, "Schedule a call with Dr. Smith")
	span, ok := entityByLabel(ann, types.LabelPerson)
	if !ok {
		t.Fatalf("no PERSON entity in %v", ann.Entities)
	}
	if span.Text != "Smith" {
		t.Errorf("PERSON entity = %q, want %q (honorific excluded)", span.Text, "Smith")
	}
}

func TestAnnotateOrganizations(t *testing.T) {
	ann := annotate(t, "Send the report to Acme Corp and IBM")

	var orgs []string
	for _, e := range ann.Entities {
		if e.Label == types.LabelOrg {
			orgs = append(orgs, e.Text)
		}
	}
	if len(orgs) != 2 || orgs[0] != "Acme Corp" || orgs[1] != "IBM" {
		t.Errorf("ORG entities = %v, want [Acme Corp IBM]", orgs)
	}
}

func TestAnnotateSkipsSentenceInitialCapital(t *testing.T) {
	// "Remember" is sentence-case, not a name; it must not become a PERSON.
	ann := annotate(t, "Remember the milk")
	if _, ok := entityByLabel(ann, types.LabelPerson); ok {
		t.Errorf("sentence-initial capitalized word extracted as PERSON: %v", ann.Entities)
	}
}

func TestAnnotateWeekdayAndMonthDates(t *testing.T) {
	ann := annotate(t, "Move the demo to next Friday or March 12")

	var dates []string
	for _, e := range ann.Entities {
		if e.Label == types.LabelDate {
			dates = append(dates, e.Text)
		}
	}
	if len(dates) != 2 || dates[0] != "next Friday" || dates[1] != "March 12" {
		t.Errorf("DATE entities = %v, want [next Friday, March 12]", dates)
	}
}

func TestAnnotateDependencies(t *testing.T) {
	ann := annotate(t, "Schedule a meeting with John")
	span, ok := entityByLabel(ann, types.LabelEvent)
	if !ok {
		t.Fatalf("no EVENT entity in %v", ann.Entities)
	}
	if len(span.Dependencies) != 1 || span.Dependencies[0].Relation != "det" || span.Dependencies[0].Text != "a" {
		t.Errorf("dependencies = %v, want a single det(a)", span.Dependencies)
	}
}

func TestReloadLexicons(t *testing.T) {
	tagger := NewBuiltinTagger()

	ann, _ := tagger.Annotate(context.Background(), "Join the retro")
	if _, ok := entityByLabel(ann, types.LabelEvent); ok {
		t.Fatal("retro should not be an event under default lexicons")
	}

	lex := DefaultLexicons()
	lex.Events = append(lex.Events, "retro")
	tagger.ReloadLexicons(lex)

	ann, _ = tagger.Annotate(context.Background(), "Join the retro")
	span, ok := entityByLabel(ann, types.LabelEvent)
	if !ok || span.Text != "retro" {
		t.Errorf("after reload, EVENT = %v (ok=%v), want retro", span, ok)
	}
}
