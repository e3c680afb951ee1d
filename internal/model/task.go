package model

import (
	"strings"
	"time"
)

// Task is the domain model for a todo entry.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Patch carries the fields of a partial update. Nil fields are left alone.
type Patch struct {
	Text      *string
	Completed *bool
}

// TextPatch is shorthand for a patch that only replaces the text.
func TextPatch(text string) Patch { return Patch{Text: &text} }

// CompletedPatch is shorthand for a patch that only sets the completed flag.
func CompletedPatch(done bool) Patch { return Patch{Completed: &done} }

// Apply merges p into t and reports whether anything changed.
// Text that trims to empty is ignored so a task never ends up blank.
func (p Patch) Apply(t *Task) bool {
	changed := false
	if p.Text != nil {
		if text := strings.TrimSpace(*p.Text); text != "" && text != t.Text {
			t.Text = text
			changed = true
		}
	}
	if p.Completed != nil && *p.Completed != t.Completed {
		t.Completed = *p.Completed
		changed = true
	}
	return changed
}

// Counts summarizes a task list for headers and footers.
type Counts struct {
	Total     int
	Active    int
	Completed int
}

// Count tallies active and completed tasks.
func Count(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}
