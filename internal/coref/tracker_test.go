package coref

import (
	"testing"
	"time"

	"github.com/skellner/converse/pkg/types"
)

func mention(text, label string) *types.ContextualEntity {
	return &types.ContextualEntity{
		Text:      text,
		Label:     label,
		Kind:      types.KindForLabel(label),
		Timestamp: time.Now(),
	}
}

func TestTrackAssignsSequentialIDs(t *testing.T) {
	tracker := NewTracker()

	john := mention("John", types.LabelPerson)
	tracker.Track(john, nil)
	if john.CanonicalID != "PERSON_0" {
		t.Errorf("first id = %q, want PERSON_0", john.CanonicalID)
	}

	acme := mention("Acme Corp", types.LabelOrg)
	tracker.Track(acme, nil)
	if acme.CanonicalID != "ORG_1" {
		t.Errorf("second id = %q, want ORG_1", acme.CanonicalID)
	}

	if tracker.Count() != 2 {
		t.Errorf("count = %d, want 2", tracker.Count())
	}
}

func TestTrackMergesExactTextCaseInsensitive(t *testing.T) {
	tracker := NewTracker()

	first := mention("John", types.LabelPerson)
	tracker.Track(first, nil)

	second := mention("john", types.LabelPerson)
	tracker.Track(second, nil)

	if second.CanonicalID != first.CanonicalID {
		t.Errorf("ids differ: %q vs %q", second.CanonicalID, first.CanonicalID)
	}
	if tracker.Count() != 1 {
		t.Errorf("count = %d, want 1 after merge", tracker.Count())
	}

	rep, ok := tracker.Representative(first.CanonicalID)
	if !ok {
		t.Fatal("representative missing")
	}
	if rep.Text != "John" {
		t.Errorf("representative = %q, want the first mention", rep.Text)
	}
	if !rep.HasAlias("john") {
		t.Errorf("aliases = %v, want to include the later surface form", rep.Aliases)
	}
}

func TestTrackMergesHighWordOverlap(t *testing.T) {
	tracker := NewTracker()

	long := mention("quarterly budget review for the board", types.LabelTask)
	tracker.Track(long, nil)

	// Five of six words shared: overlap 5/6 > 0.8.
	shorter := mention("quarterly budget review for the", types.LabelTask)
	tracker.Track(shorter, nil)

	if shorter.CanonicalID != long.CanonicalID {
		t.Errorf("high-overlap mentions not merged: %q vs %q", shorter.CanonicalID, long.CanonicalID)
	}
}

func TestTrackDoesNotMergeAcrossLabels(t *testing.T) {
	tracker := NewTracker()

	person := mention("Jordan", types.LabelPerson)
	tracker.Track(person, nil)

	org := mention("Jordan", types.LabelOrg)
	tracker.Track(org, nil)

	if org.CanonicalID == person.CanonicalID {
		t.Error("mentions with different labels must not merge")
	}
	if tracker.Count() != 2 {
		t.Errorf("count = %d, want 2", tracker.Count())
	}
}

func TestTrackIdempotent(t *testing.T) {
	tracker := NewTracker()

	for i := 0; i < 5; i++ {
		m := mention("standup", types.LabelEvent)
		tracker.Track(m, nil)
		if m.CanonicalID != "EVENT_0" {
			t.Fatalf("iteration %d: id = %q, want EVENT_0", i, m.CanonicalID)
		}
	}
	if tracker.Count() != 1 {
		t.Errorf("count = %d, want 1", tracker.Count())
	}
}

func TestTrackBuildsSymmetricGraph(t *testing.T) {
	tracker := NewTracker()

	john := mention("John", types.LabelPerson)
	tracker.Track(john, nil)

	meeting := mention("standup", types.LabelEvent)
	tracker.Track(meeting, []*types.ContextualEntity{john})

	graph := tracker.Graph()
	if len(graph[john.CanonicalID]) != 1 || graph[john.CanonicalID][0] != meeting.CanonicalID {
		t.Errorf("neighbors of %s = %v", john.CanonicalID, graph[john.CanonicalID])
	}
	if len(graph[meeting.CanonicalID]) != 1 || graph[meeting.CanonicalID][0] != john.CanonicalID {
		t.Errorf("neighbors of %s = %v", meeting.CanonicalID, graph[meeting.CanonicalID])
	}

	// Symmetry holds for every edge in the export.
	for id, neighbors := range graph {
		for _, n := range neighbors {
			found := false
			for _, back := range graph[n] {
				if back == id {
					found = true
				}
			}
			if !found {
				t.Errorf("edge %s -> %s has no reverse edge", id, n)
			}
		}
	}

	if !contains(john.RelatedEntities, meeting.CanonicalID) || !contains(meeting.RelatedEntities, john.CanonicalID) {
		t.Error("related entities not recorded on both mentions")
	}
}

func TestTrackNoSelfEdges(t *testing.T) {
	tracker := NewTracker()

	first := mention("John", types.LabelPerson)
	tracker.Track(first, nil)

	second := mention("John", types.LabelPerson)
	tracker.Track(second, []*types.ContextualEntity{first})

	if n := tracker.Neighbors(first.CanonicalID); len(n) != 0 {
		t.Errorf("self edge recorded: %v", n)
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
