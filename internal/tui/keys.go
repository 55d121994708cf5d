package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Record     key.Binding
	NextList   key.Binding
	PrevList   key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Edit       key.Binding
	Add        key.Binding
	Delete     key.Binding
	DeleteList key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Record:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record/stop")),
		NextList:   key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab/→", "next list")),
		PrevList:   key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab/←", "prev list")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done")),
		Edit:       key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add item")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete item")),
		DeleteList: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete list")),
		Confirm:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		Cancel:     key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/esc", "cancel")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Toggle, k.Edit, k.Add, k.NextList, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Record, k.Quit, k.Help},
		{k.NextList, k.PrevList, k.Up, k.Down},
		{k.Toggle, k.Edit, k.Add, k.Delete, k.DeleteList},
	}
}
