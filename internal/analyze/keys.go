package analyze

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the dashboard. Bindings that do not apply
// to the active tab are disabled, which hides them from help and stops
// key.Matches from firing.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Open    key.Binding
	Back    key.Binding
	Commit  key.Binding
	Erase   key.Binding
	Clean   key.Binding
	Undo    key.Binding
	Rescan  key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Help    key.Binding
	Quit    key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
		Open:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "open")),
		Back:    key.NewBinding(key.WithKeys("left", "h", "backspace"), key.WithHelp("←/h", "parent")),
		Commit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "delete selected")),
		Erase:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "delete permanently")),
		Clean:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "clean")),
		Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore")),
		Rescan:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),

		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm permanent delete")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "n"), key.WithHelp("esc", "cancel")),
	}
}

// setMode enables the bindings for tab, or only Confirm and Cancel while a
// permanent deletion awaits confirmation.
func (k *keyMap) setMode(tab Tab, awaiting bool) {
	all := []*key.Binding{
		&k.Up, &k.Down, &k.Toggle, &k.Open, &k.Back, &k.Commit, &k.Erase,
		&k.Clean, &k.Undo, &k.Rescan, &k.NextTab, &k.PrevTab, &k.Help, &k.Quit,
	}
	for _, b := range all {
		b.SetEnabled(!awaiting)
	}
	k.Confirm.SetEnabled(awaiting)
	k.Cancel.SetEnabled(awaiting)
	if awaiting {
		return
	}

	k.Toggle.SetEnabled(tab == TabScanner)
	k.Open.SetEnabled(tab == TabScanner)
	k.Back.SetEnabled(tab == TabScanner)
	k.Commit.SetEnabled(tab == TabScanner)
	k.Erase.SetEnabled(tab == TabTrash)
	k.Clean.SetEnabled(tab == TabSystem)
	k.Undo.SetEnabled(tab != TabSystem)
	k.Rescan.SetEnabled(tab != TabTrash)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Confirm, k.Cancel,
		k.Up, k.Down, k.Toggle, k.Open, k.Commit, k.Erase, k.Clean, k.Undo,
		k.NextTab, k.Help, k.Quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back},
		{k.Toggle, k.Commit, k.Erase, k.Clean, k.Undo, k.Rescan},
		{k.NextTab, k.PrevTab, k.Help, k.Quit},
		{k.Confirm, k.Cancel},
	}
}
