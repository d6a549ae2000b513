package grid

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the grid bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Edit     key.Binding
	Cancel   key.Binding
	Clear    key.Binding
	Home     key.Binding
	RowEnd   key.Binding
	TableEnd key.Binding
	Paste    key.Binding
}

// DefaultKeyMap returns the standard grid bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓/←/→", "move")),
		Down:     key.NewBinding(key.WithKeys("down")),
		Left:     key.NewBinding(key.WithKeys("left")),
		Right:    key.NewBinding(key.WithKeys("right")),
		Edit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit/commit")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel edit")),
		Clear:    key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "clear")),
		Home:     key.NewBinding(key.WithKeys("home", "ctrl+home"), key.WithHelp("home", "first cell")),
		RowEnd:   key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "row end")),
		TableEnd: key.NewBinding(key.WithKeys("ctrl+end"), key.WithHelp("ctrl+end", "last cell")),
		Paste:    key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Edit, k.Cancel, k.Clear, k.Paste}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Edit, k.Cancel, k.Clear},
		{k.Home, k.RowEnd, k.TableEnd, k.Paste},
	}
}
