// Package output holds the terminal rendering helpers shared by the
// nwctl commands.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nodewatch-systems/nodewatch/pkg/color"
)

func Success(format string, a ...interface{}) {
	fmt.Println(color.Sprintf("✓ "+format, []int{color.FgGreen, color.Bold}, a...))
}

func Error(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.Sprintf("✗ "+format, []int{color.FgRed, color.Bold}, a...))
}

func Info(format string, a ...interface{}) {
	fmt.Println(color.Sprintf(format, []int{color.FgCyan}, a...))
}

func Warn(format string, a ...interface{}) {
	fmt.Println(color.Sprintf("⚠ "+format, []int{color.FgYellow}, a...))
}

func JSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders rows with columns sized to their widest cell.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) Render() {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range t.headers {
		fmt.Fprintf(&b, "%-*s  ", widths[i], h)
	}
	fmt.Println(color.Sprint(b.String(), color.FgWhite, color.Bold))

	for i := range t.headers {
		fmt.Print(strings.Repeat("-", widths[i]) + "  ")
	}
	fmt.Println()

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Printf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Println()
	}
}
