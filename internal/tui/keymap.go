package tui

import "charm.land/bubbles/v2/key"

// KeyBindings holds the user-configurable key names for the widget actions.
type KeyBindings struct {
	ToggleView string
	Back       string
	Copy       string
	Quit       string
}

// DefaultKeyBindings returns the stock bindings.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		ToggleView: "g",
		Back:       "esc",
		Copy:       "y",
		Quit:       "q",
	}
}

// keyMap represents key map data used by this package.
type keyMap struct {
	toggleView key.Binding
	back       key.Binding
	copyText   key.Binding
	toggleHelp key.Binding
	quit       key.Binding
}

// newKeyMap constructs key map.
func newKeyMap(kb KeyBindings) keyMap {
	defaults := DefaultKeyBindings()
	if kb.ToggleView == "" {
		kb.ToggleView = defaults.ToggleView
	}
	if kb.Back == "" {
		kb.Back = defaults.Back
	}
	if kb.Copy == "" {
		kb.Copy = defaults.Copy
	}
	if kb.Quit == "" {
		kb.Quit = defaults.Quit
	}
	return keyMap{
		toggleView: key.NewBinding(key.WithKeys(kb.ToggleView), key.WithHelp(kb.ToggleView, "stack/grid")),
		back:       key.NewBinding(key.WithKeys(kb.Back), key.WithHelp(kb.Back, "close card")),
		copyText:   key.NewBinding(key.WithKeys(kb.Copy), key.WithHelp(kb.Copy, "copy card text")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		quit:       key.NewBinding(key.WithKeys(kb.Quit, "ctrl+c"), key.WithHelp(kb.Quit, "quit")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggleView, k.back, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggleView, k.back, k.copyText},
		{k.toggleHelp, k.quit},
	}
}
