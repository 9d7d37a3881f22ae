package intent

import (
	"context"
	"testing"
	"time"

	"github.com/skellner/converse/internal/nlp"
	"github.com/skellner/converse/pkg/types"
)

func detect(t *testing.T, text string) (string, float64) {
	t.Helper()
	ann, err := nlp.NewBuiltinTagger().Annotate(context.Background(), text)
	if err != nil {
		t.Fatalf("Annotate(%q): %v", text, err)
	}
	return NewTracker().Detect(text, ann)
}

func TestDetectTaxonomy(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Schedule a meeting with John", types.IntentSchedule},
		{"When are you free tomorrow", types.IntentSchedule},
		{"Create a task to review the budget", types.IntentTaskCreate},
		{"Remind me to call the dentist", types.IntentTaskCreate},
		{"What tasks do I have today", types.IntentTaskQuery},
		{"Show me my pending tasks", types.IntentTaskQuery},
		{"What's on my calendar for Friday", types.IntentCalendarQuery},
		{"Check my calendar", types.IntentCalendarQuery},
		{"Check my email for action items", types.IntentEmailProcess},
		{"Any new emails", types.IntentEmailProcess},
		{"Help me plan my week", types.IntentPlanning},
		{"Optimize my schedule", types.IntentPlanning},
	}

	for _, c := range cases {
		intent, confidence := detect(t, c.text)
		if intent != c.want {
			t.Errorf("Detect(%q) = %q (%.2f), want %q", c.text, intent, confidence, c.want)
		}
		if confidence <= 0 || confidence > 1 {
			t.Errorf("Detect(%q) confidence = %.2f, want (0, 1]", c.text, confidence)
		}
	}
}

func TestDetectNoMatch(t *testing.T) {
	intent, confidence := detect(t, "asdkjfh qweoiu")
	if intent != "" || confidence != 0.0 {
		t.Errorf("Detect(gibberish) = (%q, %.2f), want empty and 0.0", intent, confidence)
	}
}

func TestDetectDeterministic(t *testing.T) {
	text := "Schedule a meeting with the team"
	first, firstConf := detect(t, text)
	for i := 0; i < 10; i++ {
		intent, confidence := detect(t, text)
		if intent != first || confidence != firstConf {
			t.Fatalf("Detect is not deterministic: (%q, %.2f) vs (%q, %.2f)", intent, confidence, first, firstConf)
		}
	}
}

func TestDetectImperativeBonus(t *testing.T) {
	ann, err := nlp.NewBuiltinTagger().Annotate(context.Background(), "Schedule a meeting with John")
	if err != nil {
		t.Fatal(err)
	}
	tracker := NewTracker()

	_, withAnn := tracker.Detect("Schedule a meeting with John", ann)
	_, withoutAnn := tracker.Detect("Schedule a meeting with John", nil)
	if withAnn <= withoutAnn {
		t.Errorf("imperative bonus missing: with=%0.2f without=%0.2f", withAnn, withoutAnn)
	}
}

func TestUpdateSkipsEmptyIntent(t *testing.T) {
	tracker := NewTracker()
	tracker.Update("", 0.0, time.Now())
	if tracker.HistoryLength() != 0 {
		t.Errorf("history length = %d after empty update, want 0", tracker.HistoryLength())
	}
}

func TestUpdateCapsHistory(t *testing.T) {
	tracker := NewTracker()
	ts := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 21; i++ {
		tracker.Update(types.IntentSchedule, 0.8, ts.Add(time.Duration(i)*time.Minute))
	}
	if got := tracker.HistoryLength(); got != keepHistory {
		t.Errorf("history length = %d after cap, want %d", got, keepHistory)
	}

	for i := 0; i < 30; i++ {
		tracker.Update(types.IntentPlanning, 0.8, ts)
	}
	if got := tracker.HistoryLength(); got > maxHistory {
		t.Errorf("history length = %d, must never exceed %d", got, maxHistory)
	}
}

func TestContextSummarizesRecentPattern(t *testing.T) {
	tracker := NewTracker()
	ts := time.Now()
	tracker.Update(types.IntentSchedule, 0.9, ts)
	tracker.Update(types.IntentSchedule, 0.7, ts)
	tracker.Update(types.IntentTaskQuery, 0.3, ts) // Below the confidence cut
	tracker.Update(types.IntentPlanning, 0.6, ts)

	summary := tracker.Context()
	if summary.CurrentIntent != types.IntentPlanning {
		t.Errorf("current intent = %q, want planning", summary.CurrentIntent)
	}
	if summary.RecentPattern[types.IntentSchedule] != 2 {
		t.Errorf("schedule pattern count = %d, want 2", summary.RecentPattern[types.IntentSchedule])
	}
	if _, ok := summary.RecentPattern[types.IntentTaskQuery]; ok {
		t.Error("low-confidence classification must not count toward the pattern")
	}
	if summary.HistoryLength != 4 {
		t.Errorf("history length = %d, want 4", summary.HistoryLength)
	}
}

func TestContextEmptyHistory(t *testing.T) {
	summary := NewTracker().Context()
	if summary.CurrentIntent != "" || summary.HistoryLength != 0 {
		t.Errorf("empty tracker context = %+v", summary)
	}
	if summary.RecentPattern == nil {
		t.Error("recent pattern map should be non-nil")
	}
}
