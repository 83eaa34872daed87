package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/typecheck/internal/model"
)

type keyMap struct {
	End         key.Binding
	Reset       key.Binding
	Erase       key.Binding
	Save        key.Binding
	Certificate key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		End:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "finish")),
		Reset:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "new test")),
		Erase:       key.NewBinding(key.WithKeys("backspace", "delete", "ctrl+h", "ctrl+w", "alt+backspace")),
		Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save result")),
		Certificate: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "certificate")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// setPhase enables the bindings that apply in phase.
func (k *keyMap) setPhase(phase model.Phase) {
	completed := phase == model.PhaseCompleted
	k.End.SetEnabled(phase == model.PhaseActive)
	k.Erase.SetEnabled(!completed)
	k.Save.SetEnabled(completed)
	k.Certificate.SetEnabled(completed)
	k.Quit.SetEnabled(completed)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.End, k.Save, k.Certificate, k.Reset, k.Quit, k.ForceQuit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
