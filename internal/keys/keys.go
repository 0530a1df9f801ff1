package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Pages
	BoardTab    key.Binding
	BacklogTab  key.Binding
	CalendarTab key.Binding
	SprintsTab  key.Binding
	ArchivedTab key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Overlays
	Detail  key.Binding
	Command key.Binding

	// Task actions
	New         key.Binding
	Select      key.Binding
	Grab        key.Binding
	Drop        key.Binding
	Advance     key.Binding
	Retreat     key.Binding
	Priority    key.Binding
	Subtask     key.Binding
	Sprint      key.Binding
	DueEarlier  key.Binding
	DueLater    key.Binding
	Archive     key.Binding
	Delete      key.Binding
	Unarchive   key.Binding
	BulkArchive key.Binding
	BulkDelete  key.Binding
	BulkMove    key.Binding

	// Lists
	CycleSort     key.Binding
	ToggleOrder   key.Binding
	CycleFilter   key.Binding
	NextPage      key.Binding
	PrevPage      key.Binding
	ClearFilters  key.Binding
	PrevMonth     key.Binding
	NextMonth     key.Binding
	SetupSprints  key.Binding
	ResetProject  key.Binding
	DismissNotice key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "right"),
		),
		BoardTab: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "board"),
		),
		BacklogTab: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "backlog"),
		),
		CalendarTab: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "calendar"),
		),
		SprintsTab: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "sprints"),
		),
		ArchivedTab: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "archived"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		Grab: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "grab/move"),
		),
		Drop: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "drop"),
		),
		Advance: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "next column"),
		),
		Retreat: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "previous column"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle priority"),
		),
		Subtask: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "complete subtask"),
		),
		Sprint: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "active sprint/backlog"),
		),
		DueEarlier: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "due a day earlier"),
		),
		DueLater: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "due a day later"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Unarchive: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "restore"),
		),
		BulkArchive: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "archive selected"),
		),
		BulkDelete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete selected"),
		),
		BulkMove: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "selected to active sprint"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
		ToggleOrder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "asc/desc"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "previous page"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
		SetupSprints: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "set up sprints"),
		),
		ResetProject: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset project"),
		),
		Detail: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "task details"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		DismissNotice: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("enter", "dismiss"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Left, k.Right,
		k.New, k.Search, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Back, k.Quit},
		{k.BoardTab, k.BacklogTab, k.CalendarTab, k.SprintsTab, k.ArchivedTab, k.Refresh},
		{k.New, k.Grab, k.Drop, k.Advance, k.Retreat, k.Priority, k.Subtask},
		{k.Sprint, k.DueEarlier, k.DueLater, k.Archive, k.Delete, k.Unarchive},
		{k.Select, k.BulkArchive, k.BulkDelete, k.BulkMove},
		{k.Search, k.CycleSort, k.ToggleOrder, k.CycleFilter, k.ClearFilters, k.PrevPage, k.NextPage},
		{k.SetupSprints, k.ResetProject, k.Detail, k.Command, k.Help},
	}
}
