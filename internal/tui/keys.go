package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the bindings shown in the help footer.
type keyMap struct {
	Select     key.Binding
	Schedule   key.Binding
	Unschedule key.Binding
	Priority   key.Binding
	Refresh    key.Binding
	Quit       key.Binding

	Confirm     key.Binding
	Cancel      key.Binding
	ToggleAbort key.Binding
	Submit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Schedule:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "schedule all")),
		Unschedule:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unschedule all")),
		Priority:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "set priority")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		Cancel:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		ToggleAbort: key.NewBinding(key.WithKeys(" ", "a"), key.WithHelp("space", "toggle abort")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "set")),
	}
}

// menuHelp satisfies help.KeyMap for the main menu.
type menuHelp struct{ keys keyMap }

func (h menuHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.keys.Select, h.keys.Schedule, h.keys.Unschedule, h.keys.Priority, h.keys.Refresh, h.keys.Quit}
}

func (h menuHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }

// modalHelp satisfies help.KeyMap for the open dialog.
type modalHelp struct {
	keys  keyMap
	abort bool
	form  bool
}

func (h modalHelp) ShortHelp() []key.Binding {
	if h.form {
		return []key.Binding{h.keys.Submit, h.keys.Cancel}
	}
	bindings := []key.Binding{h.keys.Confirm, h.keys.Cancel}
	if h.abort {
		bindings = append(bindings, h.keys.ToggleAbort)
	}
	return bindings
}

func (h modalHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }
