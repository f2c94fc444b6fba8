package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI SGR codes, kept as bare constants rather than a styling library.
const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorReset  = "\033[0m"
)

// Format selects how a Diagnostic is rendered.
type Format int

const (
	Pretty Format = iota
	Short
)

// AutoColor reports whether ANSI colors should be used when writing to w,
// i.e. w is backed by a terminal file descriptor. Non-terminal sinks (pipes,
// redirected files, the test harness's buffers) get plain ASCII.
func AutoColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Render writes a single diagnostic to w in the requested format.
func Render(w io.Writer, d Diagnostic, format Format, color bool) {
	switch format {
	case Short:
		renderShort(w, d, color)
	default:
		renderPretty(w, d, color)
	}
}

func sevColor(s Severity) string {
	if s == Critical {
		return colorRed
	}
	return colorYellow
}

func paint(color bool, code, text string) string {
	if !color {
		return text
	}
	return code + text + colorReset
}

func renderShort(w io.Writer, d Diagnostic, color bool) {
	header := fmt.Sprintf("%s: %s", d.Severity, d.Message)
	fmt.Fprintln(w, paint(color, sevColor(d.Severity), header))
	if d.Hint != "" {
		fmt.Fprintln(w, paint(color, colorGreen, "~ "+d.Hint))
	}
}

func renderPretty(w io.Writer, d Diagnostic, color bool) {
	header := fmt.Sprintf("%s: %s", d.Severity, d.Message)
	fmt.Fprintln(w, paint(color, sevColor(d.Severity), header))

	for _, label := range d.Labels {
		r := label.Region
		line, col := r.Line+1, r.Column+1
		fmt.Fprintf(w, "  at %s:%d:%d\n", r.File, line, col)

		trimmed := strings.TrimLeft(r.Source, " \t")
		lead := len(r.Source) - len(trimmed)
		fmt.Fprintf(w, "  [%d] %s\n", line, trimmed)

		caretCol := r.Column - lead
		if caretCol < 0 {
			caretCol = 0
		}
		prefix := fmt.Sprintf("  [%d] ", line)
		caretLine := strings.Repeat(" ", len(prefix)+caretCol) + "^"
		if label.Text != "" {
			caretLine += " " + label.Text
		}
		fmt.Fprintln(w, paint(color, sevColor(d.Severity), caretLine))
	}

	if d.Hint != "" {
		fmt.Fprintln(w, paint(color, colorGreen, "~ "+d.Hint))
	}
}

// RenderBag renders every diagnostic in order, separated by a blank line.
func RenderBag(w io.Writer, b Bag, format Format, color bool) {
	for i, d := range b {
		if i > 0 {
			fmt.Fprintln(w)
		}
		Render(w, d, format, color)
	}
}
