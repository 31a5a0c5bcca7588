package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the browser keybindings.
type KeyMap struct {
	Quit        key.Binding
	Toggle      key.Binding
	RowClick    key.Binding
	ToggleMode  key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	SelectFirst key.Binding
	Clear       key.Binding
	Reload      key.Binding
	Submit      key.Binding
	Cancel      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		RowClick:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle row")),
		ToggleMode:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "row-click mode")),
		NextPage:    key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n/→", "next page")),
		PrevPage:    key.NewBinding(key.WithKeys("p", "left", "h"), key.WithHelp("p/←", "prev page")),
		SelectFirst: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select first N")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.PrevPage, k.NextPage, k.SelectFirst, k.ToggleMode, k.Clear, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.RowClick, k.ToggleMode},
		{k.PrevPage, k.NextPage, k.Reload},
		{k.SelectFirst, k.Clear, k.Quit},
	}
}
