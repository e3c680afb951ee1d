package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

// Dim is exposed for index columns.
var Dim = dim

var (
	forceColor   bool
	disableColor bool
)

func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Colorizer wraps strings in ANSI colors when w is a terminal.
type Colorizer struct {
	w io.Writer
}

func For(w io.Writer) Colorizer { return Colorizer{w: w} }

func (c Colorizer) C(color, s string) string {
	if disableColor || color == "" {
		return s
	}
	if forceColor || isTTY(c.w) {
		return color + s + reset
	}
	return s
}

func OK(w io.Writer, msg string)   { fmt.Fprintln(w, For(w).C(fgGreen, symCheck+" "+msg)) }
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, For(w).C(fgRed, symCross+" "+msg)) }
func Hint(w io.Writer, msg string) { fmt.Fprintln(w, For(w).C(fgGray, msg)) }
