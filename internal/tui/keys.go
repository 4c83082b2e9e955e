package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Open      key.Binding
	Back      key.Binding
	MoveHere  key.Binding
	Delete    key.Binding
	Skip      key.Binding
	Undo      key.Binding
	Crop      key.Binding
	UndoCrop  key.Binding
	NewFolder key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select folder"),
		),
		Open: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "open folder"),
		),
		Back: key.NewBinding(
			key.WithKeys("z", "left", "h", "backspace"),
			key.WithHelp("z/←", "back"),
		),
		MoveHere: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "move here"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Skip: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "skip"),
		),
		Undo: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "undo"),
		),
		Crop: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "crop"),
		),
		UndoCrop: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo crop"),
		),
		NewFolder: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new folder"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MoveHere, k.Select, k.Back, k.Skip, k.Undo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Open, k.Back},
		{k.MoveHere, k.Delete, k.Skip, k.Undo},
		{k.Crop, k.UndoCrop, k.NewFolder},
		{k.Help, k.Quit},
	}
}

type cropKeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	FastLeft  key.Binding
	FastRight key.Binding
	FastUp    key.Binding
	FastDown  key.Binding
	Anchor    key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func defaultCropKeyMap() cropKeyMap {
	return cropKeyMap{
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←↑↓→", "move")),
		Right:     key.NewBinding(key.WithKeys("right", "l")),
		Up:        key.NewBinding(key.WithKeys("up", "k")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		FastLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("shift+arrows", "move faster")),
		FastRight: key.NewBinding(key.WithKeys("shift+right", "L")),
		FastUp:    key.NewBinding(key.WithKeys("shift+up", "K")),
		FastDown:  key.NewBinding(key.WithKeys("shift+down", "J")),
		Anchor:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "set corner")),
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "crop")),
		Cancel:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "cancel")),
	}
}

func (k cropKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.FastLeft, k.Anchor, k.Confirm, k.Cancel}
}

func (k cropKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
