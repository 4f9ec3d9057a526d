// Package ui renders analysis output for the command line, styled when
// writing to a terminal and plain otherwise.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/tokengaps/internal/analysis"
)

// Printer writes tokens and search hits to an output stream.
type Printer struct {
	out    io.Writer
	styles Styles
	styled bool
}

// NewPrinter returns a printer for w. Styling is enabled only for a
// terminal and when NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	styled := IsTTY(w) && !DetectNoColor()
	styles := NoColorStyles()
	if styled {
		styles = DefaultStyles()
	}
	return &Printer{out: w, styles: styles, styled: styled}
}

// Styled reports whether output carries terminal styling.
func (p *Printer) Styled() bool {
	return p.styled
}

// Header prints a section header. Plain output has no header so it stays
// easy to pipe.
func (p *Printer) Header(title string) {
	if !p.styled {
		return
	}
	_, _ = fmt.Fprintln(p.out, p.styles.Header.Render(title))
}

// Tokens prints one token per line: term, offsets, type, increment.
// Increments above 1 are highlighted as gaps.
func (p *Printer) Tokens(tokens []analysis.Token) error {
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	for _, t := range tokens {
		incr := fmt.Sprintf("posinc=%d", t.PositionIncrement)
		if t.PositionIncrement != 1 {
			incr = p.styles.Gap.Render(incr)
		}
		_, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			p.styles.Term.Render(t.Term),
			p.styles.Label.Render(fmt.Sprintf("[%d:%d]", t.Start, t.End)),
			p.styles.Dim.Render(t.Type),
			incr)
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Line prints a plain line.
func (p *Printer) Line(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Warn prints a warning line.
func (p *Printer) Warn(msg string) {
	_, _ = fmt.Fprintln(p.out, p.styles.Warning.Render(msg))
}

// Error prints a formatted error one line at a time, in the error style on
// a terminal.
func (p *Printer) Error(msg string) {
	for _, line := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
		if p.styled {
			line = p.styles.Error.Render(line)
		}
		_, _ = fmt.Fprintln(p.out, line)
	}
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
