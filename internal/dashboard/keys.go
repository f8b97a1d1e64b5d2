package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	quit      key.Binding
	forceQuit key.Binding
	refresh   key.Binding
	errors    key.Binding
	check     key.Binding
	checkAll  key.Binding
	up        key.Binding
	down      key.Binding
	pageUp    key.Binding
	pageDown  key.Binding
	add       key.Binding
	remove    key.Binding
	sync      key.Binding
	edit      key.Binding
	toggle    key.Binding
	enter     key.Binding
	back      key.Binding
	backspace key.Binding
	confirm   key.Binding
	decline   key.Binding
}

var keys = keyMap{
	quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	forceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
	refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rescan"),
	),
	errors: key.NewBinding(
		key.WithKeys("!"),
		key.WithHelp("!", "errors"),
	),
	check: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "check"),
	),
	checkAll: key.NewBinding(
		key.WithKeys("H"),
		key.WithHelp("H", "check all"),
	),
	up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	pageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll detail"),
	),
	pageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "scroll detail"),
	),
	add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add"),
	),
	remove: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "remove"),
	),
	sync: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sync"),
	),
	edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "next"),
	),
	back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	backspace: key.NewBinding(
		key.WithKeys("backspace"),
	),
	confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "yes"),
	),
	decline: key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "no"),
	),
}

// normalHelp is shown on the status line when no message is pending.
var normalHelp = []key.Binding{
	keys.up, keys.down, keys.check, keys.checkAll, keys.add, keys.remove,
	keys.sync, keys.edit, keys.refresh, keys.errors, keys.quit,
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, "  ")
}
