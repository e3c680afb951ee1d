package view

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	wipe  = tea.KeyMsg{Type: tea.KeyCtrlU}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, texts ...string) (Model, *store.Store) {
	t.Helper()
	n := 0
	s, err := store.New(store.NewMemorySlot(),
		store.WithClock(func() time.Time { return time.Date(2025, 3, 1, 10, 0, n, 0, time.UTC) }),
		store.WithIDs(func() string {
			n++
			return fmt.Sprintf("t%d", n)
		}),
	)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	for _, text := range texts {
		if _, err := s.Add(text); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}
	return New(s, Options{}), s
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func TestAddThroughInput(t *testing.T) {
	m, s := newTestModel(t)

	m = press(t, m, runes("a"))
	if !m.Adding() {
		t.Fatal("a did not open the add input")
	}
	m = press(t, m, runes("Buy milk"), enter)

	if m.Adding() {
		t.Error("add input still open after enter")
	}
	tasks := s.Tasks(model.FilterAll)
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" {
		t.Errorf("tasks: got %+v", tasks)
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Error("new task not rendered")
	}
}

func TestAddBlankIsRejected(t *testing.T) {
	m, s := newTestModel(t)

	m = press(t, m, runes("a"), runes("   "), enter)
	if !m.Adding() {
		t.Error("blank add closed the input")
	}
	if m.InputError() == "" {
		t.Error("no error shown for blank add")
	}
	if n := s.Counts().Total; n != 0 {
		t.Errorf("blank add created %d tasks", n)
	}

	m = press(t, m, esc)
	if m.Adding() {
		t.Error("esc did not close the add input")
	}
}

func TestToggleChangesCounts(t *testing.T) {
	m, s := newTestModel(t, "Buy milk")

	if !strings.Contains(m.View(), "Active (1)") {
		t.Errorf("header before toggle:\n%s", m.View())
	}
	m = press(t, m, space)

	c := s.Counts()
	if c.Active != 0 || c.Completed != 1 {
		t.Errorf("counts after toggle: %+v", c)
	}
	view := m.View()
	if !strings.Contains(view, "Active (0)") || !strings.Contains(view, "Completed (1)") {
		t.Errorf("header after toggle:\n%s", view)
	}
	if !strings.Contains(view, "All tasks completed") {
		t.Errorf("footer after toggle:\n%s", view)
	}
}

func TestEditSave(t *testing.T) {
	m, s := newTestModel(t, "Buy milk")

	m = press(t, m, runes("e"))
	id, editing := m.Editing()
	if !editing || id != "t1" {
		t.Fatalf("Editing: got %q %v", id, editing)
	}
	m = press(t, m, wipe, runes("  Buy oat milk "), enter)

	if _, editing := m.Editing(); editing {
		t.Error("still editing after save")
	}
	got, _ := s.Get("t1")
	if got.Text != "Buy oat milk" {
		t.Errorf("text after save: got %q", got.Text)
	}
}

func TestEditCancelReverts(t *testing.T) {
	m, s := newTestModel(t, "Buy milk")

	m = press(t, m, enter, wipe, runes("Something else"), esc)

	if _, editing := m.Editing(); editing {
		t.Error("still editing after esc")
	}
	got, _ := s.Get("t1")
	if got.Text != "Buy milk" {
		t.Errorf("text after cancel: got %q", got.Text)
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Error("original text not rendered after cancel")
	}
}

func TestEditBlankStaysInEditMode(t *testing.T) {
	m, s := newTestModel(t, "Buy milk")

	m = press(t, m, runes("e"), wipe, enter)

	if _, editing := m.Editing(); !editing {
		t.Error("blank save left edit mode")
	}
	if m.InputError() == "" {
		t.Error("no error shown for blank save")
	}
	got, _ := s.Get("t1")
	if got.Text != "Buy milk" {
		t.Errorf("text after blank save: got %q", got.Text)
	}
}

func TestDeleteSelected(t *testing.T) {
	// newest first: t3 "three", t2 "two", t1 "one"
	m, s := newTestModel(t, "one", "two", "three")

	m = press(t, m, down, runes("d"))

	var ids []string
	for _, task := range s.Tasks(model.FilterAll) {
		ids = append(ids, task.ID)
	}
	if strings.Join(ids, ",") != "t3,t1" {
		t.Errorf("after delete: got %v, want [t3 t1]", ids)
	}
}

func TestFilterKeysDoNotMutate(t *testing.T) {
	m, s := newTestModel(t, "Buy milk", "Walk dog", "Pay rent")
	m = press(t, m, space) // completes "Pay rent"
	before := fmt.Sprint(s.Tasks(model.FilterAll))

	m = press(t, m, runes("2"))
	if m.Filter() != model.FilterActive {
		t.Errorf("2: got filter %v", m.Filter())
	}
	if strings.Contains(m.View(), "Pay rent") {
		t.Error("completed task shown under active filter")
	}

	m = press(t, m, runes("3"))
	if m.Filter() != model.FilterCompleted {
		t.Errorf("3: got filter %v", m.Filter())
	}
	if strings.Contains(m.View(), "Buy milk") {
		t.Error("active task shown under completed filter")
	}

	m = press(t, m, tab)
	if m.Filter() != model.FilterAll {
		t.Errorf("tab from completed: got filter %v", m.Filter())
	}

	if after := fmt.Sprint(s.Tasks(model.FilterAll)); after != before {
		t.Errorf("filter keys changed the list:\nbefore %s\n after %s", before, after)
	}
}

func TestClearCompleted(t *testing.T) {
	m, s := newTestModel(t, "one", "two")
	m = press(t, m, space, runes("c"))

	if c := s.Counts(); c.Total != 1 || c.Completed != 0 {
		t.Errorf("after clear: %+v", c)
	}
	m = press(t, m, runes("c"))
	if c := s.Counts(); c.Total != 1 {
		t.Errorf("second clear changed the list: %+v", c)
	}
}

func TestEmptyStates(t *testing.T) {
	m, _ := newTestModel(t)
	if !strings.Contains(m.View(), "No todos yet") {
		t.Errorf("all filter empty state missing:\n%s", m.View())
	}
	m = press(t, m, runes("3"))
	if !strings.Contains(m.View(), "No completed todos") {
		t.Errorf("completed filter empty state missing:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestCtrlCQuitsWhileTyping(t *testing.T) {
	m, s := newTestModel(t, "Buy milk")

	for _, open := range []tea.KeyMsg{runes("a"), runes("e")} {
		typing := press(t, m, open, runes("q"))
		_, cmd := typing.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Fatalf("%s then ctrl+c returned no command", open)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s then ctrl+c did not quit", open)
		}
	}
	if got, _ := s.Get("t1"); got.Text != "Buy milk" || s.Counts().Total != 1 {
		t.Errorf("quitting from the input changed the list: %+v", s.Tasks(model.FilterAll))
	}
}

func TestFooter(t *testing.T) {
	tests := []struct {
		c    model.Counts
		want string
	}{
		{model.Counts{}, ""},
		{model.Counts{Total: 2, Completed: 2}, "All tasks completed! Great job!"},
		{model.Counts{Total: 2, Active: 1, Completed: 1}, "1 task remaining"},
		{model.Counts{Total: 3, Active: 3}, "3 tasks remaining"},
	}
	for _, tt := range tests {
		if got := footer(tt.c); got != tt.want {
			t.Errorf("footer(%+v): got %q, want %q", tt.c, got, tt.want)
		}
	}
}
