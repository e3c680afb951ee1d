package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/Makepad-fr/tada/internal/view"
)

// Options carry the opened store and output settings from main.
type Options struct {
	Store  *store.Store
	Group  bool         // list grouped by pending/done
	Filter model.Filter // default for ls and the interactive view
	Logger *log.Logger

	Stdout io.Writer
	Stderr io.Writer

	// ViewLogger is handed to the interactive view, which cannot write to the terminal.
	ViewLogger *log.Logger
	// RunView starts the interactive view. Defaults to view.Run.
	RunView func(*store.Store, view.Options) error
}

func (o *Options) defaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.RunView == nil {
		o.RunView = view.Run
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// No arguments opens the interactive view.
func Run(args []string, opt Options) int {
	opt.defaults()
	r := runner{opt: opt}
	if len(args) == 0 {
		return r.doView()
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0

	case "tui":
		return r.doView()

	case "ls":
		f := opt.Filter
		if len(a) > 1 {
			return r.usage("usage: tada ls [all|active|completed]")
		}
		if len(a) == 1 {
			parsed, err := model.ParseFilter(a[0])
			if err != nil {
				return r.usage("ls: " + err.Error())
			}
			f = parsed
		}
		return r.doList(f)

	case "add":
		if len(a) == 0 {
			return r.usage("usage: tada add <text...>")
		}
		return r.doAdd(strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			return r.usage("usage: tada done <index|id>")
		}
		return r.doToggle(a[0])

	case "edit":
		if len(a) < 2 {
			return r.usage("usage: tada edit <index|id> <text...>")
		}
		return r.doEdit(a[0], strings.Join(a[1:], " "))

	case "rm":
		if len(a) != 1 {
			return r.usage("usage: tada rm <index|id>")
		}
		return r.doRemove(a[0])

	case "clear":
		if len(a) != 0 {
			return r.usage("usage: tada clear")
		}
		return r.doClear()
	}

	ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `tada - a tiny todo list

Usage:
  tada [flags] [subcommand] [args]

Subcommands:
  (none), tui              Open the interactive list
  add <text...>            Add a new task (text can be multiple words)
  ls [all|active|completed]
                           Print tasks, optionally filtered
  done <index|id>          Toggle completed for a task
  edit <index|id> <text>   Replace a task's text
  rm <index|id>            Remove a task
  clear                    Remove all completed tasks

A task is named by its 1-based position in "tada ls", its id, or a unique id prefix.

Flags:
  -backend file|sqlite|memory   -data-dir DIR   -key NAME   -config FILE
  -theme classic|neon|mono      -filter NAME    -group
  -log-level LEVEL              -log-file FILE

Examples:
  tada add "Buy milk"
  tada ls active
  tada done 2
  tada edit 1 "Buy oat milk"
  tada rm 3
`)
}

type runner struct {
	opt Options
}

func (r runner) usage(msg string) int {
	ui.Fail(r.opt.Stderr, msg)
	return 2
}

func (r runner) fail(msg string, err error) int {
	r.opt.Logger.Error(msg, "err", err)
	ui.Fail(r.opt.Stderr, msg+": "+err.Error())
	return 1
}

// resolve maps a user reference to a task, printing a hint on failure.
func (r runner) resolve(ref string) (model.Task, int) {
	t, err := r.opt.Store.Resolve(ref)
	if err == nil {
		return t, 0
	}
	ui.Fail(r.opt.Stderr, err.Error())
	if errors.Is(err, store.ErrNoMatch) {
		ui.Hint(r.opt.Stderr, fmt.Sprintf("Hint: have %d tasks; run `tada ls` to see valid indexes", r.opt.Store.Counts().Total))
	}
	return model.Task{}, 2
}

// -------------- subcommand impls ----------------

func (r runner) doView() int {
	err := r.opt.RunView(r.opt.Store, view.Options{
		Filter: r.opt.Filter,
		Logger: r.opt.ViewLogger,
	})
	if err != nil {
		return r.fail("tui", err)
	}
	return 0
}

func (r runner) doList(f model.Filter) int {
	w := r.opt.Stdout
	c := ui.For(w)
	th := ui.Current()
	counts := r.opt.Store.Counts()

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		c.C(th.Title, "Todos"),
		c.C(th.Success, th.SymDone), counts.Completed,
		c.C(th.Pending, th.SymUnchecked), counts.Active,
		c.C(th.Accent, "Total"), counts.Total,
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, c.C(th.Muted, ui.ProgressBar(counts.Completed, counts.Total, 28)))
	lines = append(lines, "")

	tasks := r.opt.Store.Tasks(model.FilterAll)
	if r.opt.Group && f == model.FilterAll {
		lines = append(lines, groupLines(c, tasks)...)
	} else {
		lines = append(lines, flatLines(c, tasks, f)...)
	}
	lines = append(lines, "")
	lines = append(lines, c.C(th.Muted, "Tip: add with `tada add \"Buy milk\"`"))
	ui.Panel(w, lines)
	return 0
}

func (r runner) doAdd(text string) int {
	t, err := r.opt.Store.Add(text)
	if errors.Is(err, store.ErrEmptyText) {
		return r.usage("add: empty text")
	}
	if err != nil {
		return r.fail("add", err)
	}
	ui.OK(r.opt.Stdout, "added "+shortID(t.ID))
	return 0
}

func (r runner) doToggle(ref string) int {
	t, code := r.resolve(ref)
	if code != 0 {
		return code
	}
	if _, err := r.opt.Store.Toggle(t.ID); err != nil {
		return r.fail("done", err)
	}
	if t.Completed {
		ui.OK(r.opt.Stdout, "reopened")
	} else {
		ui.OK(r.opt.Stdout, "completed")
	}
	return 0
}

func (r runner) doEdit(ref, text string) int {
	if strings.TrimSpace(text) == "" {
		return r.usage("edit: empty text")
	}
	t, code := r.resolve(ref)
	if code != 0 {
		return code
	}
	if _, err := r.opt.Store.Update(t.ID, model.TextPatch(text)); err != nil {
		return r.fail("edit", err)
	}
	ui.OK(r.opt.Stdout, "updated")
	return 0
}

func (r runner) doRemove(ref string) int {
	t, code := r.resolve(ref)
	if code != 0 {
		return code
	}
	if _, err := r.opt.Store.Delete(t.ID); err != nil {
		return r.fail("rm", err)
	}
	ui.OK(r.opt.Stdout, "removed")
	return 0
}

func (r runner) doClear() int {
	n, err := r.opt.Store.ClearCompleted()
	if err != nil {
		return r.fail("clear", err)
	}
	switch n {
	case 0:
		ui.OK(r.opt.Stdout, "nothing to clear")
	case 1:
		ui.OK(r.opt.Stdout, "cleared 1 completed task")
	default:
		ui.OK(r.opt.Stdout, fmt.Sprintf("cleared %d completed tasks", n))
	}
	return 0
}

// -------------- rendering helpers --------------

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// flatLines renders the tasks matching f. Indexes stay those of the full list
// so they can be passed back to done/edit/rm.
func flatLines(c ui.Colorizer, tasks []model.Task, f model.Filter) []string {
	th := ui.Current()
	var out []string
	for i, t := range tasks {
		if !f.Match(t) {
			continue
		}
		idx := fmt.Sprintf("%2d.", i+1)
		box, color := th.BoxUnchecked, th.Muted
		if t.Completed {
			box, color = th.BoxChecked, th.Success
		}
		text := t.Text
		if r := []rune(text); len(r) > 80 {
			text = string(r[:77]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s %s",
			c.C(ui.Dim, idx), c.C(color, box), text, c.C(th.Muted, shortID(t.ID))))
	}
	if len(out) == 0 {
		return []string{c.C(th.Muted, emptyMessage(f))}
	}
	return out
}

func groupLines(c ui.Colorizer, tasks []model.Task) []string {
	th := ui.Current()
	var lines []string
	lines = append(lines, c.C(th.Accent, "Pending"))
	lines = append(lines, flatLines(c, tasks, model.FilterActive)...)
	lines = append(lines, "")
	lines = append(lines, c.C(th.Accent, "Done"))
	lines = append(lines, flatLines(c, tasks, model.FilterCompleted)...)
	return lines
}

func emptyMessage(f model.Filter) string {
	switch f {
	case model.FilterActive:
		return "No active todos"
	case model.FilterCompleted:
		return "No completed todos"
	}
	return "No todos yet"
}
