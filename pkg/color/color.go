// Package color provides minimal ANSI terminal styling. Output is
// styled only when stdout is a terminal; piped output stays plain.
package color

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const reset = "\033[0m"

const (
	FgRed    = 31
	FgGreen  = 32
	FgYellow = 33
	FgCyan   = 36
	FgWhite  = 37

	Bold = 1
	Dim  = 2
)

var enabled = isTerminal(os.Stdout)

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Disable turns off styling for the process, regardless of terminal
// detection. Used by the json output mode.
func Disable() { enabled = false }

// Sprint wraps s in the escape sequence for the given attributes.
func Sprint(s string, attrs ...int) string {
	if !enabled || len(attrs) == 0 {
		return s
	}
	codes := make([]string, len(attrs))
	for i, a := range attrs {
		codes[i] = strconv.Itoa(a)
	}
	return "\033[" + strings.Join(codes, ";") + "m" + s + reset
}

// Sprintf formats then wraps in the escape sequence.
func Sprintf(format string, attrs []int, a ...interface{}) string {
	return Sprint(fmt.Sprintf(format, a...), attrs...)
}
