package temporal

import (
	"testing"
	"time"
)

// ref is Monday 2024-01-15 10:00 UTC.
var ref = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func TestResolveRelativeDays(t *testing.T) {
	cases := []struct {
		text string
		want time.Time
	}{
		{"today", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"now", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"Tomorrow", time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, ok := Resolve(c.text, ref)
		if !ok {
			t.Fatalf("Resolve(%q) not resolved", c.text)
		}
		if !got.Equal(c.want) {
			t.Errorf("Resolve(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestResolveWeekBoundaries(t *testing.T) {
	// ref is a Monday, so "next week" is exactly seven days ahead.
	got, ok := Resolve("next week", ref)
	if !ok || !got.Equal(time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("next week from Monday = %v (ok=%v), want 2024-01-22", got, ok)
	}

	got, ok = Resolve("last week", ref)
	if !ok || !got.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last week from Monday = %v (ok=%v), want 2024-01-08", got, ok)
	}

	// From a Wednesday, "next week" lands on the following Monday.
	wednesday := time.Date(2024, 1, 17, 9, 30, 0, 0, time.UTC)
	got, ok = Resolve("next week", wednesday)
	if !ok || !got.Equal(time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("next week from Wednesday = %v (ok=%v), want 2024-01-22", got, ok)
	}
}

func TestResolveClockTimes(t *testing.T) {
	cases := []struct {
		text         string
		hour, minute int
	}{
		{"3:30pm", 15, 30},
		{"11am", 11, 0},
		{"14:05", 14, 5},
		{"12am", 0, 0},
		{"12pm", 12, 0},
		{"at 2pm", 14, 0},
	}
	for _, c := range cases {
		got, ok := Resolve(c.text, ref)
		if !ok {
			t.Fatalf("Resolve(%q) not resolved", c.text)
		}
		want := time.Date(2024, 1, 15, c.hour, c.minute, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Resolve(%q) = %v, want %v", c.text, got, want)
		}
	}
}

func TestResolveRejectsOutOfRangeClock(t *testing.T) {
	if _, ok := Resolve("25:99", ref); ok {
		t.Error("out-of-range clock time should not resolve")
	}
}

func TestResolveUnknownExpression(t *testing.T) {
	if _, ok := Resolve("someday", ref); ok {
		t.Error("unknown expression should not resolve")
	}
	if _, ok := Resolve("", ref); ok {
		t.Error("empty expression should not resolve")
	}
}

func TestContextAnchors(t *testing.T) {
	c := NewContext(ref)
	if !c.ReferenceTime().Equal(ref) {
		t.Fatalf("reference time = %v, want %v", c.ReferenceTime(), ref)
	}

	later := ref.Add(2 * time.Hour)
	c.Advance(later)
	if !c.ReferenceTime().Equal(later) {
		t.Errorf("after Advance, reference time = %v, want %v", c.ReferenceTime(), later)
	}

	if _, ok := c.Anchor("tomorrow"); ok {
		t.Error("anchor table should start empty")
	}

	state := c.Export()
	if !state.ReferenceTime.Equal(later) {
		t.Errorf("exported reference time = %v, want %v", state.ReferenceTime, later)
	}
	if len(state.TemporalAnchors) != 0 {
		t.Errorf("exported anchors = %v, want empty", state.TemporalAnchors)
	}
}
