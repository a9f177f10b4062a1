package models

import "fmt"

// Action identifies what a task does when it runs. The vocabulary is closed:
// unknown values are rejected at the boundary, never defaulted.
type Action string

const (
	ActionLog       Action = "log"
	ActionTransform Action = "transform"
	ActionValidate  Action = "validate"
	ActionNotify    Action = "notify"
	ActionAggregate Action = "aggregate"
)

// Actions lists every valid action in display order.
func Actions() []Action {
	return []Action{ActionLog, ActionTransform, ActionValidate, ActionNotify, ActionAggregate}
}

// ParseAction converts a raw string into an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionLog, ActionTransform, ActionValidate, ActionNotify, ActionAggregate:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// IsValid reports whether a is a member of the closed action vocabulary.
func (a Action) IsValid() bool {
	_, err := ParseAction(string(a))

	return err == nil
}

// Priority ranks a task for the executing backend.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority converts a raw string into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(s), nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// Parameter is one key/value pair of a task's configuration. Parameters are
// kept as an ordered slice rather than a map so edits never reshuffle them.
type Parameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TaskEntry is one step of a workflow draft. Tasks are identified by their
// user-chosen name; DependsOn references sibling task names.
type TaskEntry struct {
	Name       string      `json:"name"`
	Action     Action      `json:"action"`
	Parameters []Parameter `json:"parameters"`
	DependsOn  []string    `json:"depends_on"`
	PreHook    string      `json:"pre_hook,omitempty"`
	PostHook   string      `json:"post_hook,omitempty"`
	Priority   Priority    `json:"priority"`
}

// SetParameter sets the value for key, appending a new parameter when the
// key is absent. Existing keys keep their position.
func (t *TaskEntry) SetParameter(key, value string) {
	for i := range t.Parameters {
		if t.Parameters[i].Key == key {
			t.Parameters[i].Value = value

			return
		}
	}

	t.Parameters = append(t.Parameters, Parameter{Key: key, Value: value})
}

// RemoveParameter deletes the parameter with the given key, if present.
func (t *TaskEntry) RemoveParameter(key string) {
	for i := range t.Parameters {
		if t.Parameters[i].Key == key {
			t.Parameters = append(t.Parameters[:i], t.Parameters[i+1:]...)

			return
		}
	}
}

// RenameParameter changes a parameter's key in place, preserving its value
// and relative position. It is a no-op when oldKey is absent.
func (t *TaskEntry) RenameParameter(oldKey, newKey string) {
	for i := range t.Parameters {
		if t.Parameters[i].Key == oldKey {
			t.Parameters[i].Key = newKey

			return
		}
	}
}

// Parameter returns the value for key and whether it was found.
func (t *TaskEntry) Parameter(key string) (string, bool) {
	for _, p := range t.Parameters {
		if p.Key == key {
			return p.Value, true
		}
	}

	return "", false
}

// DependsOnTask reports whether name is in the task's dependency set.
func (t *TaskEntry) DependsOnTask(name string) bool {
	for _, dep := range t.DependsOn {
		if dep == name {
			return true
		}
	}

	return false
}
