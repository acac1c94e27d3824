package tui

import "github.com/charmbracelet/bubbles/key"

type libraryKeys struct {
	Open     key.Binding
	Paste    key.Binding
	Import   key.Binding
	Settings key.Binding
	Quit     key.Binding
}

var libraryKeyMap = libraryKeys{
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
	Paste:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste text")),
	Import:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import file")),
	Settings: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "settings")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k libraryKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Paste, k.Import, k.Settings, k.Quit}
}

func (k libraryKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type readerKeys struct {
	Play     key.Binding
	Stop     key.Binding
	Previous key.Binding
	Next     key.Binding
	Bookmark key.Binding
	List     key.Binding
	Settings key.Binding
	Back     key.Binding
}

var readerKeyMap = readerKeys{
	Play:     key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "play/pause")),
	Stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
	Previous: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "previous")),
	Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next")),
	Bookmark: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bookmark")),
	List:     key.NewBinding(key.WithKeys("p", "tab"), key.WithHelp("p", "paragraphs")),
	Settings: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "settings")),
	Back:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "library")),
}

func (k readerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Stop, k.Previous, k.Next, k.Bookmark, k.List, k.Back}
}

func (k readerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Settings}}
}

type formKeys struct {
	Next   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

var formKeyMap = formKeys{
	Next:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
	Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Cancel}
}

func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type settingsKeys struct {
	Up       key.Binding
	Down     key.Binding
	Decrease key.Binding
	Increase key.Binding
	Toggle   key.Binding
	Back     key.Binding
}

var settingsKeyMap = settingsKeys{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
	Decrease: key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←", "less")),
	Increase: key.NewBinding(key.WithKeys("right", "l", "+", "="), key.WithHelp("→", "more")),
	Toggle:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
	Back:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
}

func (k settingsKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Decrease, k.Increase, k.Toggle, k.Back}
}

func (k settingsKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
