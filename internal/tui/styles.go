package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title, Success, Pending, Accent, Muted, Error lipgloss.Style
	Selected, Done, Help, Tab, ActiveTab          lipgloss.Style
	Card, Welcome, Toast, ToastError              lipgloss.Style
	Recording                                     lipgloss.Style
	BoxChecked, BoxUnchecked                      string
}

func stylesFor(theme string) styles {
	border := lipgloss.NormalBorder()
	accent, title := lipgloss.Color("12"), lipgloss.NewStyle().Bold(true)
	checked, unchecked := "☑", "☐"
	switch theme {
	case "neon":
		border = lipgloss.RoundedBorder()
		accent = lipgloss.Color("14")
		title = title.Foreground(lipgloss.Color("13"))
		checked, unchecked = "◼", "◻"
	case "mono":
		border = lipgloss.ASCIIBorder()
		checked, unchecked = "[x]", "[ ]"
	}
	s := styles{
		Title:      title,
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Pending:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Accent:     lipgloss.NewStyle().Foreground(accent),
		Muted:      lipgloss.NewStyle().Faint(true),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Selected:   lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:       lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:       lipgloss.NewStyle().Faint(true),
		Tab:        lipgloss.NewStyle().Padding(0, 1).Faint(true),
		ActiveTab:  lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(accent),
		Card:       lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("8")).Padding(0, 1),
		Welcome:    lipgloss.NewStyle().Border(border).BorderForeground(accent).Padding(1, 2),
		Toast:      lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("42")).Padding(0, 1),
		ToastError: lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("9")).Padding(0, 1),
		Recording:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),

		BoxChecked:   checked,
		BoxUnchecked: unchecked,
	}
	if theme == "mono" {
		plain := lipgloss.NewStyle()
		s.Success, s.Pending, s.Accent, s.Error, s.Recording = plain, plain, plain, plain.Bold(true), plain.Bold(true)
		s.ActiveTab = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true)
	}
	return s
}
