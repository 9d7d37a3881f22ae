// Package types defines the core data structures for the Converse context
// engine: conversation turns, contextual entities, and the recent-context
// views consumed by reference resolution.
package types

// ContextScope represents the scope level a piece of context belongs to.
type ContextScope string

// Context scope constants
const (
	// ScopeSession covers the entire conversation session
	ScopeSession ContextScope = "session"

	// ScopeTurn covers a single request-response turn
	ScopeTurn ContextScope = "turn"

	// ScopeTask covers a specific task or goal
	ScopeTask ContextScope = "task"

	// ScopeEntity covers a specific entity mention
	ScopeEntity ContextScope = "entity"
)

// EntityKind is the closed classification an entity mention branches on.
// The NER label itself stays an open string (the Label field); Kind is what
// the pipeline switches over, so exhaustiveness is checkable.
type EntityKind string

// Entity kind constants
const (
	// KindStandard is a span supplied by the NER backend (PERSON, ORG, GPE, ...)
	KindStandard EntityKind = "standard"

	// KindTask is a task description matched by the domain patterns
	KindTask EntityKind = "task"

	// KindPriority is a priority indicator matched by the domain patterns
	KindPriority EntityKind = "priority"

	// KindTemporal is a date/time/event span eligible for temporal resolution
	KindTemporal EntityKind = "temporal"
)

// Entity label constants for the labels the pipeline treats specially.
// Backends may emit any label string; unknown labels pass through unchanged.
const (
	LabelPerson   = "PERSON"
	LabelOrg      = "ORG"
	LabelDate     = "DATE"
	LabelTime     = "TIME"
	LabelEvent    = "EVENT"
	LabelTask     = "TASK"
	LabelPriority = "PRIORITY"
)

// KindForLabel maps an entity label to its closed kind.
func KindForLabel(label string) EntityKind {
	switch label {
	case LabelTask:
		return KindTask
	case LabelPriority:
		return KindPriority
	case LabelDate, LabelTime, LabelEvent:
		return KindTemporal
	default:
		return KindStandard
	}
}

// Intent label constants - the fixed taxonomy of turn intents
const (
	IntentSchedule      = "schedule"
	IntentTaskCreate    = "task_create"
	IntentTaskQuery     = "task_query"
	IntentCalendarQuery = "calendar_query"
	IntentEmailProcess  = "email_process"
	IntentPlanning      = "planning"
)

// ValidIntents is a slice of all valid intent labels for validation
var ValidIntents = []string{
	IntentSchedule,
	IntentTaskCreate,
	IntentTaskQuery,
	IntentCalendarQuery,
	IntentEmailProcess,
	IntentPlanning,
}

// IsValidIntent checks if the given intent label is part of the taxonomy
func IsValidIntent(intent string) bool {
	for _, valid := range ValidIntents {
		if valid == intent {
			return true
		}
	}
	return false
}
