package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "░░░░░░░░░░   0%"},
		{1, 2, 10, "█████░░░░░  50%"},
		{3, 3, 5, "█████ 100%"},
		{1, 4, 2, "█░░░░  25%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d, %d, %d): got %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestPanelAlignsWideRunes(t *testing.T) {
	SetTheme("classic")
	var buf bytes.Buffer
	Panel(&buf, []string{"☐ Buy milk", "short"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Panel: got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	want := lipgloss.Width(lines[0])
	for i, ln := range lines {
		if w := lipgloss.Width(ln); w != want {
			t.Errorf("line %d width %d, want %d: %q", i, w, want, ln)
		}
	}
}

func TestOutputIsPlainWhenNotATerminal(t *testing.T) {
	SetTheme("classic")
	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "load: boom")

	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("escape codes written to a buffer: %q", buf.String())
	}
	if buf.String() != "✔ added\n✖ load: boom\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestMonoTheme(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")
	if Current().BoxChecked != "[x]" {
		t.Errorf("mono BoxChecked: got %q", Current().BoxChecked)
	}
	SetColorForcing(true, false)
	defer SetColorForcing(false, false)
	SetTheme("mono")
	if got := For(nil).C(fgRed, "x"); got != "x" {
		t.Errorf("mono theme still colors output: %q", got)
	}
}
