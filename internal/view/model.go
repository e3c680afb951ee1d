// Package view is the interactive terminal UI over a task store.
package view

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// rows taken by the frame, header, footer and status line
	chromeHeight = 8
	// extra rows while the add bar is open
	addBarHeight = 4
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
)

// Options tune the view.
type Options struct {
	Filter model.Filter
	Logger *log.Logger
}

// Model is the Bubble Tea model. At most one task is in edit mode at a time.
type Model struct {
	store  *store.Store
	logger *log.Logger
	keys   keyMap

	list  list.Model
	input textinput.Model

	filter   model.Filter
	mode     mode
	editID   string
	inputErr string
	status   string

	width, height int
}

// New builds the view over s, showing the tasks selected by opts.Filter.
func New(s *store.Store, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keys := defaultKeyMap()

	l := list.New(nil, itemDelegate{}, defaultWidth-4, defaultHeight-chromeHeight)
	l.SetShowTitle(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.Styles.HelpStyle = ui.HelpStyle
	l.Styles.PaginationStyle = ui.HelpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	// "d" deletes here, so page keys lose their vim-ish letters
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l/pgdn", "next page"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h/pgup", "prev page"))
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		store:  s,
		logger: logger,
		keys:   keys,
		list:   l,
		input:  ti,
		filter: opts.Filter,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.sync()
	return m
}

// Run starts the program on the alternate screen and blocks until it quits.
func Run(s *store.Store, opts Options) error {
	p := tea.NewProgram(New(s, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Filter is the filter currently applied.
func (m Model) Filter() model.Filter { return m.filter }

// Editing reports the id of the task being edited, if any.
func (m Model) Editing() (string, bool) { return m.editID, m.mode == modeEdit }

// Adding reports whether the add bar is open.
func (m Model) Adding() bool { return m.mode == modeAdd }

// InputError is the validation message shown under the input, if any.
func (m Model) InputError() string { return m.inputErr }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		}
		if m.list.FilterState() != list.Filtering {
			if next, cmd, handled := m.updateBrowse(msg); handled {
				return next, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.inputErr = ""
		m.input.SetValue("")
		m.input.Placeholder = "Add a new todo..."
		m.resize()
		cmd := m.input.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		m.mode = modeEdit
		m.editID = t.ID
		m.inputErr = ""
		m.input.SetValue(t.Text)
		m.input.CursorEnd()
		m.input.Placeholder = "Edit todo..."
		cmd := m.input.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			_, err := m.store.Toggle(t.ID)
			m.report(err)
			cmd := m.sync()
			return m, cmd, true
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			_, err := m.store.Delete(t.ID)
			m.report(err)
			cmd := m.sync()
			return m, cmd, true
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Clear):
		if m.store.Counts().Completed == 0 {
			return m, nil, true
		}
		_, err := m.store.ClearCompleted()
		m.report(err)
		cmd := m.sync()
		return m, cmd, true

	case key.Matches(msg, m.keys.All):
		cmd := m.setFilter(model.FilterAll)
		return m, cmd, true
	case key.Matches(msg, m.keys.Active):
		cmd := m.setFilter(model.FilterActive)
		return m, cmd, true
	case key.Matches(msg, m.keys.Completed):
		cmd := m.setFilter(model.FilterCompleted)
		return m, cmd, true
	case key.Matches(msg, m.keys.Cycle):
		cmd := m.setFilter(m.filter.Next())
		return m, cmd, true
	}
	return m, nil, false
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Save):
		_, err := m.store.Add(m.input.Value())
		if errors.Is(err, store.ErrEmptyText) {
			m.inputErr = "Text cannot be empty"
			return m, nil
		}
		m.report(err)
		m.closeInput()
		cmd := m.sync()
		m.list.Select(0)
		return m, cmd
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Save):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.inputErr = "Text cannot be empty"
			return m, nil
		}
		_, err := m.store.Update(m.editID, model.TextPatch(text))
		m.report(err)
		m.closeInput()
		cmd := m.sync()
		return m, cmd
	case key.Matches(msg, m.keys.Cancel):
		// discard; the stored text was never touched
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.editID = ""
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
	m.resize()
}

func (m *Model) setFilter(f model.Filter) tea.Cmd {
	m.filter = f
	m.list.ResetFilter()
	m.list.Select(0)
	return m.sync()
}

// sync reloads the visible rows from the store.
func (m *Model) sync() tea.Cmd {
	tasks := m.store.Tasks(m.filter)
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	return cmd
}

func (m *Model) resize() {
	h := m.height - chromeHeight
	if m.mode == modeAdd {
		h -= addBarHeight
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

// report keeps the last persistence error on screen.
func (m *Model) report(err error) {
	if err == nil {
		m.status = ""
		return
	}
	m.logger.Error("store", "err", err)
	m.status = err.Error()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	if len(m.list.Items()) == 0 {
		b.WriteString(emptyState(m.filter))
	} else {
		l := m.list
		if m.mode == modeEdit {
			l.SetDelegate(itemDelegate{editID: m.editID, editView: m.input.View()})
		}
		b.WriteString(l.View())
	}

	if m.mode == modeAdd {
		title := "Add new todo"
		if m.inputErr != "" {
			title += " " + ui.ErrorStyle.Render(m.inputErr)
		}
		b.WriteString("\n" + ui.FrameStyle.Render(title+"\n"+m.input.View()))
	}
	if m.mode == modeEdit && m.inputErr != "" {
		b.WriteString("\n" + ui.ErrorStyle.Render(m.inputErr))
	}

	if footer := footer(m.store.Counts()); footer != "" {
		b.WriteString("\n" + ui.MutedStyle.Render(footer))
	}
	if m.status != "" {
		b.WriteString("\n" + ui.ErrorStyle.Render("✖ "+m.status))
	}
	return ui.FrameStyle.Render(b.String())
}

func (m Model) header() string {
	c := m.store.Counts()
	tabs := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		label := fmt.Sprintf("%s (%d)", f.Label(), c.Count(f))
		if f == m.filter {
			tabs = append(tabs, ui.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, ui.TabStyle.Render(label))
		}
	}
	return ui.TitleStyle.Render("Todos") + "   " + strings.Join(tabs, "  ")
}

func emptyState(f model.Filter) string {
	var title, hint string
	switch f {
	case model.FilterActive:
		title, hint = "No active todos", "All caught up! Time to add more todos."
	case model.FilterCompleted:
		title, hint = "No completed todos", "Complete some todos to see them here."
	default:
		title, hint = "No todos yet", "Press a to add your first todo."
	}
	return ui.TitleStyle.Render(title) + "\n" + ui.MutedStyle.Render(hint)
}

func footer(c model.Counts) string {
	switch {
	case c.Total == 0:
		return ""
	case c.Active == 0:
		return "All tasks completed! Great job!"
	case c.Active == 1:
		return "1 task remaining"
	}
	return fmt.Sprintf("%d tasks remaining", c.Active)
}
