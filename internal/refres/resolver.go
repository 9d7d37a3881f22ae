// Package refres resolves pronouns against the recent-context window.
//
// Resolution is deliberately heuristic: ambiguous antecedents default to
// the most recent entity of the right type. That imprecision is the
// documented contract, not a defect; callers that need real coreference
// should not use this package.
package refres

import (
	"strings"

	"github.com/skellner/converse/pkg/types"
)

// pronouns lists the handled pronouns in resolution order.
var pronouns = []string{"it", "that", "this", "them", "they"}

// Resolve maps each pronoun occurring in the text (case-insensitive
// substring match) to a referent drawn from the recent context. Pronouns
// with no candidate are omitted from the result.
func Resolve(text string, recent *types.RecentContext) map[string]string {
	resolved := make(map[string]string)
	if recent == nil {
		return resolved
	}

	lower := strings.ToLower(text)
	for _, pronoun := range pronouns {
		if !strings.Contains(lower, pronoun) {
			continue
		}
		var referent string
		switch pronoun {
		case "it":
			referent = resolveIt(recent)
		case "that":
			referent = resolveThat(recent)
		case "this":
			referent = resolveThis(recent)
		case "them", "they":
			referent = resolveThem(recent)
		}
		if referent != "" {
			resolved[pronoun] = referent
		}
	}
	return resolved
}

// resolveIt returns the most recently mentioned TASK, EVENT, or ORG entity.
func resolveIt(recent *types.RecentContext) string {
	for i := len(recent.Entities) - 1; i >= 0; i-- {
		switch recent.Entities[i].Label {
		case types.LabelTask, types.LabelEvent, types.LabelOrg:
			return recent.Entities[i].Text
		}
	}
	return ""
}

// resolveThat prefers the most recent active task, then falls back to the
// most recent EVENT or TASK entity.
func resolveThat(recent *types.RecentContext) string {
	if n := len(recent.ActiveTasks); n > 0 {
		return recent.ActiveTasks[n-1].Text
	}
	for i := len(recent.Entities) - 1; i >= 0; i-- {
		switch recent.Entities[i].Label {
		case types.LabelEvent, types.LabelTask:
			return recent.Entities[i].Text
		}
	}
	return ""
}

// resolveThis returns the most recent of the last three entities mentioned.
func resolveThis(recent *types.RecentContext) string {
	start := len(recent.Entities) - 3
	if start < 0 {
		start = 0
	}
	last3 := recent.Entities[start:]
	if len(last3) == 0 {
		return ""
	}
	return last3[len(last3)-1].Text
}

// resolveThem joins the last two PERSON entities when at least two appear
// in recent context. Only ever a two-element join; larger groups are not
// tracked.
func resolveThem(recent *types.RecentContext) string {
	var persons []string
	for _, e := range recent.Entities {
		if e.Label == types.LabelPerson {
			persons = append(persons, e.Text)
		}
	}
	if len(persons) < 2 {
		return ""
	}
	return strings.Join(persons[len(persons)-2:], ", ")
}
