// Package log prints leveled messages to standard error, colored when it is
// a terminal. Each message is written with a single call, so messages from
// concurrent requests never interleave within a line.
package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Verbosity selects which messages are printed.
type Verbosity int

const (
	// LevelNone prints nothing.
	LevelNone Verbosity = iota
	// LevelWarn prints errors and warnings only.
	LevelWarn
	// LevelInfo adds progress messages.
	LevelInfo
	// LevelDebug adds a line per message and chunk read.
	LevelDebug
)

// Level is the current verbosity. It is set once at start-up, before
// anything logs.
var Level = LevelInfo

// Output is where messages go. It defaults to a color-aware standard error.
var Output io.Writer = color.Error

var (
	errorColor = color.New(color.FgRed)
	warnColor  = color.New(color.FgYellow)
	debugColor = color.New(color.FgCyan)
)

// Enabled reports whether messages of verbosity v are printed. Callers use
// it to skip formatting work for messages nobody will see.
func Enabled(v Verbosity) bool {
	return v != LevelNone && v <= Level
}

func emit(v Verbosity, c *color.Color, prefix, f string, args []interface{}) {
	if !Enabled(v) {
		return
	}
	line := prefix + fmt.Sprintf(f, args...) + "\n"
	if c == nil {
		_, _ = io.WriteString(Output, line)
		return
	}
	_, _ = c.Fprint(Output, line)
}

// Errorf prints an error. Errors share the warning level.
func Errorf(f string, args ...interface{}) {
	emit(LevelWarn, errorColor, "[ERROR] ", f, args)
}

// Warnf prints a warning.
func Warnf(f string, args ...interface{}) {
	emit(LevelWarn, warnColor, "[WARNING] ", f, args)
}

// Infof prints a progress message.
func Infof(f string, args ...interface{}) {
	emit(LevelInfo, nil, "", f, args)
}

// Debugf prints a detail.
func Debugf(f string, args ...interface{}) {
	emit(LevelDebug, debugColor, "", f, args)
}

// Nestedf prints a detail indented by depth steps, for messages that belong
// to the one logged before them.
func Nestedf(depth int, f string, args ...interface{}) {
	if depth < 0 {
		depth = 0
	}
	emit(LevelDebug, debugColor, strings.Repeat("  ", depth), f, args)
}
