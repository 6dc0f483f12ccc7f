package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keybindings for the file browser
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Open      key.Binding
	Back      key.Binding
	Select    key.Binding
	Download  key.Binding
	Upload    key.Binding
	NewFolder key.Binding
	Delete    key.Binding
	Move      key.Binding
	CopyURL   key.Binding
	Search    key.Binding
	Refresh   key.Binding
	Buckets   key.Binding
	Help      key.Binding
	Quit      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding

	// Row actions act on the row under the cursor even when files are selected
	RowDownload key.Binding
	RowDelete   key.Binding
	RowMove     key.Binding
}

// DefaultKeyMap returns default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("pgup", "left", "["),
			key.WithHelp("←/[", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("pgdown", "right", "]"),
			key.WithHelp("→/]", "next page"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "l"),
			key.WithHelp("enter", "open / preview"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "h"),
			key.WithHelp("⌫/h", "parent folder"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload"),
		),
		NewFolder: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new folder"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy URL"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r/f5", "refresh"),
		),
		Buckets: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "buckets"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y/enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
		RowDownload: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "download row"),
		),
		RowDelete: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "delete row"),
		),
		RowMove: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "move row"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Select, k.Download, k.Delete, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.Open, k.Back, k.Select, k.Search},
		{k.Download, k.Upload, k.NewFolder, k.Move},
		{k.Delete, k.CopyURL, k.Refresh, k.Buckets},
		{k.RowDownload, k.RowDelete, k.RowMove},
		{k.Help, k.Quit},
	}
}
