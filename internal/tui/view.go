package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Makepad-fr/verbalist/internal/model"
	"github.com/Makepad-fr/verbalist/internal/ui"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.st.Title.Render("Verbalist") + "  " + m.recorderBar() + "\n\n")

	if len(m.lists) == 0 {
		b.WriteString(m.welcome())
	} else {
		b.WriteString(m.tabs() + "\n")
		if l, ok := m.current(); ok {
			b.WriteString(m.card(l))
		}
	}
	b.WriteString("\n")

	if m.confirmDelete {
		if l, ok := m.current(); ok {
			b.WriteString(m.st.Error.Render(fmt.Sprintf("Delete list %q? This cannot be undone.", l.Title)) +
				"  " + m.st.Help.Render("y/n") + "\n")
		}
	}
	if m.toast != nil {
		b.WriteString(m.toastView() + "\n")
	}
	b.WriteString(m.st.Help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) recorderBar() string {
	switch m.rec {
	case recStarting:
		return m.st.Muted.Render("Opening microphone...")
	case recRecording:
		elapsed := m.now().Sub(m.recStart).Truncate(time.Second)
		size := humanize.Bytes(uint64(m.pipe.Recorded()))
		return m.st.Recording.Render("● Recording "+formatElapsed(elapsed)) +
			m.st.Muted.Render(fmt.Sprintf("  %s  r to stop", size))
	case recTranscribing:
		return m.spinner.View() + " " + m.st.Accent.Render("Creating your list...")
	}
	return m.st.Muted.Render("r to record a voice memo")
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func (m Model) welcome() string {
	lines := []string{
		m.st.Title.Render("Welcome to Verbalist"),
		"",
		"Turn your voice memos into organized lists.",
		"",
		"1. Press r and speak your list, for example",
		m.st.Muted.Render(`   "I need a dozen eggs, some milk and to call the dentist".`),
		"2. Press r again to stop.",
		"3. Your list appears here, ready to check off and edit.",
	}
	return m.st.Welcome.Render(strings.Join(lines, "\n")) + "\n"
}

func (m Model) tabs() string {
	cur := m.listIndex()
	tabs := make([]string, 0, len(m.lists))
	for i, l := range m.lists {
		title := truncate(l.Title, 24)
		if i == cur {
			tabs = append(tabs, m.st.ActiveTab.Render(title))
		} else {
			tabs = append(tabs, m.st.Tab.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) card(l model.ToDoList) string {
	done, pending := l.Stats()
	lines := []string{
		m.st.Title.Render(l.Title),
		m.st.Muted.Render("created " + humanize.RelTime(l.CreatedAt, m.now(), "ago", "from now")),
		fmt.Sprintf("%s %d  %s %d  %s",
			m.st.Success.Render("✔"), done,
			m.st.Pending.Render("•"), pending,
			m.st.Accent.Render(ui.ProgressBar(done, len(l.Items), 20))),
		"",
	}
	if len(l.Items) == 0 {
		lines = append(lines, m.st.Muted.Render("No items. Press a to add one."))
	}
	for i, it := range l.Items {
		lines = append(lines, m.itemLine(it, i == m.itemIdx))
	}
	width := max(40, min(m.width-4, 80))
	return m.st.Card.Width(width).Render(strings.Join(lines, "\n")) + "\n"
}

func (m Model) itemLine(it model.ListItem, selected bool) string {
	box := m.st.Muted.Render(m.st.BoxUnchecked)
	text := it.Text
	if it.Completed {
		box = m.st.Success.Render(m.st.BoxChecked)
		text = m.st.Done.Render(text)
	}
	prefix := "  "
	if selected {
		prefix = m.st.Selected.Render("> ")
		if m.session != nil && m.session.ItemID() == it.ID {
			input := m.ti.View()
			if m.session.Selected() {
				input = m.ti.Prompt + m.st.Selected.Render(m.session.Draft())
			}
			return prefix + box + " " + input
		}
	}
	return prefix + box + " " + text
}

func (m Model) toastView() string {
	n := m.toast.notice
	style, title := m.st.Toast, m.st.Success.Render(n.Title)
	if n.Destructive {
		style, title = m.st.ToastError, m.st.Error.Render(n.Title)
	}
	return style.Render(title + "\n" + n.Description)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
