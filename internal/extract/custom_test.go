package extract

import (
	"testing"

	"github.com/skellner/converse/pkg/types"
)

func TestCustomEntitiesTaskPatterns(t *testing.T) {
	cases := []struct {
		text   string
		desc   string
		action string
	}{
		{"Create a task to review the budget", "review the budget", "create"},
		{"Add a reminder to call the dentist", "call the dentist", "add"},
		{"I need to finish the report", "finish the report", "need to"},
		{"Plan the offsite for next month", "the offsite", "plan"},
	}

	for _, c := range cases {
		entities := CustomEntities(newTurn(c.text))
		task := findEntity(entities, types.LabelTask)
		if task == nil {
			t.Errorf("%q: no TASK entity", c.text)
			continue
		}
		if task.Text != c.desc {
			t.Errorf("%q: task text = %q, want %q", c.text, task.Text, c.desc)
		}
		if task.Properties["action"] != c.action {
			t.Errorf("%q: action = %v, want %q", c.text, task.Properties["action"], c.action)
		}
		if task.Scope != types.ScopeTask {
			t.Errorf("%q: scope = %q, want task", c.text, task.Scope)
		}
	}
}

func TestCustomEntitiesIgnoresShortTasks(t *testing.T) {
	entities := CustomEntities(newTurn("Create a task to go"))
	if task := findEntity(entities, types.LabelTask); task != nil {
		t.Errorf("short task text extracted: %q", task.Text)
	}
}

func TestCustomEntitiesPriorityPatterns(t *testing.T) {
	cases := []struct {
		text  string
		match string
		level string
	}{
		{"This is urgent, do it asap", "urgent", "high"},
		{"It's a high priority item", "high priority", "high"},
		{"Look at it when you can", "when you can", "low"},
	}

	for _, c := range cases {
		entities := CustomEntities(newTurn(c.text))
		priority := findEntity(entities, types.LabelPriority)
		if priority == nil {
			t.Errorf("%q: no PRIORITY entity", c.text)
			continue
		}
		if priority.Text != c.match {
			t.Errorf("%q: priority text = %q, want %q", c.text, priority.Text, c.match)
		}
		if priority.Properties["priority_level"] != c.level {
			t.Errorf("%q: level = %v, want %q", c.text, priority.Properties["priority_level"], c.level)
		}
	}
}

func TestCustomEntitiesNoMatches(t *testing.T) {
	if entities := CustomEntities(newTurn("Hello there")); len(entities) != 0 {
		t.Errorf("unexpected entities: %v", entities)
	}
}
