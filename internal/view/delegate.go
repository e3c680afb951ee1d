package view

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// taskItem adapts a Task to list.Item.
type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Text }

// itemDelegate renders one task per line. When editID names the row's task,
// the text is replaced by the edit input.
type itemDelegate struct {
	editID   string
	editView string
}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	th := ui.Current()

	box := ui.PendingStyle.Render(th.BoxUnchecked)
	text := it.task.Text
	if it.task.Completed {
		box = ui.SuccessStyle.Render(th.BoxChecked)
		text = ui.DoneStyle.Render(text)
	}
	if d.editID != "" && it.task.ID == d.editID {
		text = d.editView
	}

	prefix := "  "
	if index == m.Index() {
		prefix = ui.SelectedStyle.Render(">") + " "
	}
	fmt.Fprint(w, prefix+box+" "+text)
}
