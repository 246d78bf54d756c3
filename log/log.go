package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

type logLevel int

const (
	SilentLevel logLevel = iota
	MajorLevel
	MinorLevel
	DebugLevel
)

var (
	majorPrefix = ""        // Prepended to each output line
	minorPrefix = "  "      // Minor is indented beneath the Major event it relates to
	debugPrefix = "   Dbg:" // Developer output is easy to grep out

	mu    sync.Mutex // Reload workers log concurrently so writes are serialized
	out   io.Writer = os.Stdout
	level logLevel
)

func (t logLevel) String() string {
	switch t {
	case MajorLevel:
		return "Major"
	case MinorLevel:
		return "Minor"
	case DebugLevel:
		return "Debug"
	}

	return "Silent"
}

// SetOut changes the output of logging to the supplied io.Writer. The default is
// os.Stdout. The supplied io.Writer must never be nil.
func SetOut(w io.Writer) {
	if w == nil {
		panic("log.SetOut() called with a nil io.Writer")
	}
	mu.Lock()
	out = w
	mu.Unlock()
}

// Out returns the current io.Writer for specialist output such as start-up banners and
// the stats report which are not controlled by log levels. Callers writing to Out()
// concurrently with other loggers should prefer Printf.
func Out() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	return out
}

// SetLevel sets the current logging level.
func SetLevel(l logLevel) {
	mu.Lock()
	level = l
	mu.Unlock()
}

func Level() logLevel {
	mu.Lock()
	defer mu.Unlock()

	return level
}

// IfMajor returns true if Major logging is written to the output stream. Applications
// have access to these If* functions in cases where evaluation of the log arguments is
// expensive and the caller wishes to minimize that cost.
func IfMajor() bool {
	return Level() >= MajorLevel
}

func IfMinor() bool {
	return Level() >= MinorLevel
}

func IfDebug() bool {
	return Level() >= DebugLevel
}

// Majorf provides an approximate fmt.Printf equivalent interface to logging. Output is
// only generated if the level is >= Major. A newline is always added to the end of the
// output so the caller should not have one in their format. All output is prefixed with
// the current major prefix which may be an empty string.
func Majorf(format string, a ...interface{}) (n int, err error) {
	return emit(MajorLevel, majorPrefix, fmt.Sprintf(format, a...))
}

// Major provides a fmt.Print like interface to logging. Major uses fmt.Sprint to
// generate the output line thus it inherits the feature whereby spaces are added between
// operands when neither is a string.
func Major(a ...interface{}) (n int, err error) {
	return emit(MajorLevel, majorPrefix, fmt.Sprint(a...))
}

// Minorf is the Minor level equivalent of Majorf.
func Minorf(format string, a ...interface{}) (n int, err error) {
	return emit(MinorLevel, minorPrefix, fmt.Sprintf(format, a...))
}

func Minor(a ...interface{}) (n int, err error) {
	return emit(MinorLevel, minorPrefix, fmt.Sprint(a...))
}

// Debugf is the Debug level equivalent of Majorf.
func Debugf(format string, a ...interface{}) (n int, err error) {
	return emit(DebugLevel, debugPrefix, fmt.Sprintf(format, a...))
}

func Debug(a ...interface{}) (n int, err error) {
	return emit(DebugLevel, debugPrefix, fmt.Sprint(a...))
}

// Warningf reports a condition which does not stop the current operation but which an
// operator should know about, such as a zone which failed to load. Like Printf, warnings
// are emitted regardless of level.
func Warningf(format string, a ...interface{}) (n int, err error) {
	return emit(SilentLevel, "Warning: ", fmt.Sprintf(format, a...))
}

// Errorf reports a failure of an operation as a whole, such as an aborted reload.
func Errorf(format string, a ...interface{}) (n int, err error) {
	return emit(SilentLevel, "Error: ", fmt.Sprintf(format, a...))
}

// Printf writes to Out() regardless of level. It exists so that banners and reports
// share the same serialization as levelled output.
func Printf(format string, a ...interface{}) (n int, err error) {
	return emit(SilentLevel, "", fmt.Sprintf(format, a...))
}

// emit is the common handler which takes potentially multiple lines and sends them to
// the out stream prefixed with the supplied prefix.
func emit(min logLevel, prefix, lines string) (int, error) {
	mu.Lock()
	defer mu.Unlock()

	if level < min {
		return 0, nil
	}

	if !strings.Contains(lines, "\n") { // Expect this to be the common case
		return fmt.Fprint(out, prefix, lines, "\n")
	}

	lines = strings.TrimRight(lines, "\n")
	s := strings.ReplaceAll(lines, "\n", "\n"+prefix) // Line1 \nprefix Line2

	return fmt.Fprint(out, prefix, s, "\n")
}
