// Package ui prints panels and status lines for the non-interactive
// commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Makepad-fr/verbalist/internal/model"
)

// Printer writes themed output.
type Printer struct {
	Out, Err io.Writer
	Theme    Theme
	color    bool
}

// NewPrinter colors output only when out is a terminal, NO_COLOR is unset
// and the theme has colors.
func NewPrinter(out, errOut io.Writer, theme string) *Printer {
	t := ThemeByName(theme)
	return &Printer{
		Out:   out,
		Err:   errOut,
		Theme: t,
		color: !t.Colorless && os.Getenv("NO_COLOR") == "" && isTTY(out),
	}
}

// SetColor forces colors on or off.
func (p *Printer) SetColor(on bool) { p.color = on && !p.Theme.Colorless }

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// C wraps s in color when colors are on.
func (p *Printer) C(color, s string) string {
	if !p.color || color == "" {
		return s
	}
	return color + s + reset
}

func (p *Printer) OK(msg string) {
	fmt.Fprintln(p.Out, p.C(p.Theme.Success, p.Theme.SymOK+" "+msg))
}

func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.Err, p.C(p.Theme.Error, p.Theme.SymFail+" "+msg))
}

// ProgressBar renders a bar with a percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := min(done*width/total, width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%", bar, done*100/total)
}

// Panel draws a framed box around lines.
func (p *Printer) Panel(lines []string) {
	t := p.Theme
	maxw := 0
	for _, ln := range lines {
		maxw = max(maxw, lipgloss.Width(ln))
	}
	border := func(s string) string { return p.C(t.Muted, s) }
	fmt.Fprintln(p.Out, border(t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR))
	for _, ln := range lines {
		pad := strings.Repeat(" ", maxw-lipgloss.Width(ln))
		fmt.Fprintln(p.Out, border(t.V)+" "+ln+pad+" "+border(t.V))
	}
	fmt.Fprintln(p.Out, border(t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR))
}

// List prints one list as a panel: title, age, progress and items.
func (p *Printer) List(l model.ToDoList, now time.Time) {
	t := p.Theme
	done, pending := l.Stats()
	lines := []string{
		p.C(t.Title, l.Title),
		p.C(t.Muted, "created "+humanize.RelTime(l.CreatedAt, now, "ago", "from now")),
		fmt.Sprintf("%s %d  %s %d  %s",
			p.C(t.Success, t.SymOK), done,
			p.C(t.Pending, "•"), pending,
			p.C(t.Accent, ProgressBar(done, len(l.Items), 20))),
		"",
	}
	for _, it := range l.Items {
		box, text := t.BoxUnchecked, it.Text
		if it.Completed {
			box, text = p.C(t.Success, t.BoxChecked), p.C(t.Muted, text)
		}
		lines = append(lines, box+" "+text)
	}
	p.Panel(lines)
}
