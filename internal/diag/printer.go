package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// headerWidth is the banner width used for section headers.
const headerWidth = 60

// Printer writes the decorated diagnostic report. Status glyphs are colored;
// the surrounding text stays plain so the output greps cleanly.
type Printer struct {
	w      io.Writer
	banner *color.Color
	ok     *color.Color
	warn   *color.Color
	fail   *color.Color
	info   *color.Color
	bold   *color.Color
}

// NewPrinter creates a Printer writing to w. Pass os.Stdout in the binary; a
// bytes.Buffer works for tests. fatih/color honors NO_COLOR and non-TTY
// writers on its own.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:      w,
		banner: color.New(color.FgBlue, color.Bold),
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed),
		info:   color.New(color.FgBlue),
		bold:   color.New(color.Bold),
	}
}

// Header prints a section banner.
func (p *Printer) Header(text string) {
	bar := strings.Repeat("=", headerWidth)
	_, _ = p.banner.Fprintf(p.w, "\n%s\n  %s\n%s\n\n", bar, text, bar)
}

// Title prints the bold report title line.
func (p *Printer) Title(format string, args ...any) {
	_, _ = p.bold.Fprintf(p.w, format+"\n", args...)
}

// Success prints a green-check line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s %s\n", p.ok.Sprint("✓"), fmt.Sprintf(format, args...))
}

// Warning prints a yellow-warning line.
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s %s\n", p.warn.Sprint("⚠"), fmt.Sprintf(format, args...))
}

// Error prints a red-cross line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s %s\n", p.fail.Sprint("✗"), fmt.Sprintf(format, args...))
}

// Info prints a blue-info line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s %s\n", p.info.Sprint("ℹ"), fmt.Sprintf(format, args...))
}

// Item prints a bold bracketed id with a trailing name, introducing a
// pipeline block.
func (p *Printer) Item(id, name string) {
	fmt.Fprintf(p.w, "\n  %s %s\n", p.bold.Sprintf("[%s]", id), name)
}

// Plain prints an indented plain line.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s\n", fmt.Sprintf(format, args...))
}
