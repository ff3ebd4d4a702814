package config

import (
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/lixenwraith/framediff/terminal"
)

// Key actions understood by the interactive render loop
const (
	ActionQuit   = "quit"
	ActionRedraw = "redraw"
	ActionPause  = "pause"
)

// DefaultKeys returns a fresh copy of the stock bindings
func DefaultKeys() map[string][]string {
	return map[string][]string{
		ActionQuit:   {"q", "escape", "ctrl_c"},
		ActionRedraw: {"r", "ctrl_l"},
		ActionPause:  {"p", "space"},
	}
}

// Bindings maps a key press to an action name
type Bindings map[terminal.KeyEvent]string

// Action returns the action bound to ev, or "" when unbound
// Runes match case-insensitively; modifiers are ignored
func (b Bindings) Action(ev terminal.KeyEvent) string {
	return b[bindingKey(ev)]
}

func bindingKey(ev terminal.KeyEvent) terminal.KeyEvent {
	if ev.Key == terminal.KeyRune {
		return terminal.KeyEvent{Key: terminal.KeyRune, Rune: unicode.ToLower(ev.Rune)}
	}
	return terminal.KeyEvent{Key: ev.Key}
}

// ParseKey resolves a binding name: a key name ("escape", "ctrl_l", "f5") or a single character
func ParseKey(name string) (terminal.KeyEvent, bool) {
	if k, ok := terminal.KeyByName(name); ok {
		return terminal.KeyEvent{Key: k}, true
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if r == ' ' {
			return terminal.KeyEvent{Key: terminal.KeySpace}, true
		}
		return bindingKey(terminal.KeyEvent{Key: terminal.KeyRune, Rune: r}), true
	}
	return terminal.KeyEvent{}, false
}

// KeyBindings resolves the keys section; a key bound to two actions is an error
func (c *Config) KeyBindings() (Bindings, error) {
	actions := make([]string, 0, len(c.Keys))
	for action := range c.Keys {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	b := make(Bindings)
	for _, action := range actions {
		switch action {
		case ActionQuit, ActionRedraw, ActionPause:
		default:
			return nil, fmt.Errorf("keys: unknown action %q", action)
		}
		for _, name := range c.Keys[action] {
			ev, ok := ParseKey(name)
			if !ok {
				return nil, fmt.Errorf("keys: %s: unknown key %q", action, name)
			}
			if prev, dup := b[ev]; dup && prev != action {
				return nil, fmt.Errorf("keys: %q bound to both %s and %s", name, prev, action)
			}
			b[ev] = action
		}
	}
	return b, nil
}
