// Package tui is the interactive terminal front end: a recorder bar on
// top, one card per list below it, and inline item editing.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/verbalist/internal/editing"
	"github.com/Makepad-fr/verbalist/internal/model"
	"github.com/Makepad-fr/verbalist/internal/pipeline"
	"github.com/Makepad-fr/verbalist/internal/store"
)

const toastTTL = 4 * time.Second

type recorderState int

const (
	recIdle recorderState = iota
	recStarting
	recRecording
	recTranscribing
)

type (
	startedMsg struct {
		outcome pipeline.Outcome
		ok      bool
	}
	outcomeMsg struct {
		outcome pipeline.Outcome
		ok      bool
	}
	captureEndedMsg struct{}
	recTickMsg      time.Time
	toastExpiredMsg struct{ id int }
)

type toast struct {
	id     int
	notice pipeline.Notice
}

// Options configures a Model.
type Options struct {
	Pipeline *pipeline.Pipeline
	Store    *store.Store
	Theme    string
	Logger   *zap.Logger
	Now      func() time.Time
}

// Model is the Bubble Tea model.
type Model struct {
	pipe  *pipeline.Pipeline
	store *store.Store
	log   *zap.Logger
	now   func() time.Time

	lists   []model.ToDoList
	listID  string
	itemIdx int

	session *editing.Session
	ti      textinput.Model

	rec      recorderState
	recStart time.Time

	confirmDelete bool
	toast         *toast
	toastSeq      int

	spinner spinner.Model
	help    help.Model
	keys    keyMap
	st      styles
	width   int
}

func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "Item text..."
	ti.CharLimit = 200

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		pipe:    opts.Pipeline,
		store:   opts.Store,
		log:     log.Named("tui"),
		now:     now,
		ti:      ti,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeys(),
		st:      stylesFor(opts.Theme),
		width:   80,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// refresh reloads the lists from the store, keeping the selection on the
// same list when it still exists.
func (m *Model) refresh() {
	m.lists = m.store.Lists()
	if m.listIndex() < 0 {
		m.listID = ""
		if len(m.lists) > 0 {
			m.listID = m.lists[0].ID
		}
	}
	m.clampItem()
}

func (m *Model) listIndex() int {
	for i, l := range m.lists {
		if l.ID == m.listID {
			return i
		}
	}
	return -1
}

func (m *Model) current() (model.ToDoList, bool) {
	if i := m.listIndex(); i >= 0 {
		return m.lists[i], true
	}
	return model.ToDoList{}, false
}

func (m *Model) currentItem() (model.ListItem, bool) {
	l, ok := m.current()
	if !ok || m.itemIdx < 0 || m.itemIdx >= len(l.Items) {
		return model.ListItem{}, false
	}
	return l.Items[m.itemIdx], true
}

func (m *Model) clampItem() {
	l, _ := m.current()
	m.itemIdx = max(0, min(m.itemIdx, len(l.Items)-1))
}

func (m *Model) save(l model.ToDoList) {
	m.store.Update(l)
	m.refresh()
}

func (m *Model) notify(n pipeline.Notice) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = &toast{id: id, notice: n}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case startedMsg:
		if !msg.ok {
			if m.pipe.State() != pipeline.Recording {
				m.rec = recIdle
				return m, nil
			}
			m.rec = recRecording
			m.recStart = m.now()
			return m, tea.Batch(m.waitCapture(), recTick())
		}
		m.rec = recIdle
		cmd := m.notify(msg.outcome.Notice())
		return m, cmd

	case captureEndedMsg:
		if m.rec != recRecording {
			return m, nil
		}
		return m.stopRecording()

	case recTickMsg:
		if m.rec != recRecording {
			return m, nil
		}
		return m, recTick()

	case outcomeMsg:
		m.rec = recIdle
		if !msg.ok {
			return m, nil
		}
		m.refresh()
		if msg.outcome.Kind == pipeline.Success && m.session == nil {
			m.listID = msg.outcome.List.ID
			m.itemIdx = 0
		}
		cmd := m.notify(msg.outcome.Notice())
		return m, cmd

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case spinner.TickMsg:
		if m.rec != recTranscribing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.session != nil {
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.session != nil {
		return m.handleEditKey(msg)
	}
	if m.confirmDelete {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirmDelete = false
			if l, ok := m.current(); ok {
				m.store.Delete(l.ID)
				m.log.Info("list deleted", zap.String("list_id", l.ID))
				m.refresh()
			}
		case key.Matches(msg, m.keys.Cancel):
			m.confirmDelete = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Record):
		switch m.rec {
		case recIdle:
			m.rec = recStarting
			return m, m.startCmd()
		case recRecording:
			return m.stopRecording()
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.NextList):
		m.moveList(1)
	case key.Matches(msg, m.keys.PrevList):
		m.moveList(-1)
	case key.Matches(msg, m.keys.Up):
		m.itemIdx--
		m.clampItem()
	case key.Matches(msg, m.keys.Down):
		m.itemIdx++
		m.clampItem()
	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.currentItem(); ok {
			l, _ := m.current()
			l, _ = editing.Toggle(l, it.ID)
			m.save(l)
		}
	case key.Matches(msg, m.keys.Edit):
		if it, ok := m.currentItem(); ok {
			cmd := m.beginEdit(it)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Add):
		if l, ok := m.current(); ok {
			l, it := editing.AddItem(l, nil)
			m.save(l)
			m.itemIdx = len(l.Items) - 1
			if editing.ShouldAutoEdit(it) {
				cmd := m.beginEdit(it)
				return m, cmd
			}
		}
	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.currentItem(); ok {
			l, _ := m.current()
			l, _ = editing.DeleteItem(l, it.ID)
			m.save(l)
		}
	case key.Matches(msg, m.keys.DeleteList):
		if _, ok := m.current(); ok {
			m.confirmDelete = true
		}
	}
	return m, nil
}

func (m *Model) moveList(delta int) {
	if len(m.lists) == 0 {
		return
	}
	i := m.listIndex()
	i = (i + delta + len(m.lists)) % len(m.lists)
	m.listID = m.lists[i].ID
	m.itemIdx = 0
}

func (m *Model) beginEdit(it model.ListItem) tea.Cmd {
	s, err := editing.Begin(it)
	if errors.Is(err, editing.ErrCompleted) {
		return m.notify(pipeline.Notice{Title: "Item is done", Description: "Completed items cannot be edited."})
	}
	if err != nil {
		return nil
	}
	m.session = s
	m.ti.SetValue(s.Draft())
	m.ti.CursorEnd()
	return m.ti.Focus()
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.commitEdit()
		return m, nil
	case tea.KeyEsc:
		m.session.Cancel()
		m.endEdit()
		return m, nil
	case tea.KeyUp, tea.KeyDown, tea.KeyTab, tea.KeyShiftTab:
		// focus leaves the item: commit, then move
		m.commitEdit()
		return m.handleKey(msg)
	}

	if m.session.Selected() {
		switch msg.Type {
		case tea.KeyRunes, tea.KeySpace:
			m.session.Type(string(msg.Runes))
			m.ti.SetValue(m.session.Draft())
			m.ti.CursorEnd()
			return m, nil
		case tea.KeyBackspace, tea.KeyDelete:
			m.session.SetDraft("")
			m.ti.SetValue("")
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.session.SetDraft(m.ti.Value())
	return m, cmd
}

func (m *Model) commitEdit() {
	l, ok := m.current()
	if !ok {
		m.endEdit()
		return
	}
	l, res := m.session.Commit(l)
	if res != editing.Unchanged {
		m.save(l)
		m.log.Debug("item edit committed", zap.Stringer("result", res))
	}
	m.endEdit()
}

func (m *Model) endEdit() {
	m.session = nil
	m.ti.Blur()
	m.ti.SetValue("")
	m.clampItem()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.session != nil {
		m.commitEdit()
	}
	if m.rec == recRecording {
		m.pipe.Abort()
		m.rec = recIdle
	}
	return m, tea.Quit
}

func (m Model) startCmd() tea.Cmd {
	pipe := m.pipe
	return func() tea.Msg {
		o, ok := pipe.Start(context.Background())
		return startedMsg{outcome: o, ok: ok}
	}
}

func (m Model) stopRecording() (tea.Model, tea.Cmd) {
	m.rec = recTranscribing
	pipe := m.pipe
	stop := func() tea.Msg {
		o, ok := pipe.Stop(context.Background())
		return outcomeMsg{outcome: o, ok: ok}
	}
	return m, tea.Batch(stop, m.spinner.Tick)
}

func (m Model) waitCapture() tea.Cmd {
	done := m.pipe.CaptureDone()
	return func() tea.Msg {
		<-done
		return captureEndedMsg{}
	}
}

func recTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return recTickMsg(t) })
}
