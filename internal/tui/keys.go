package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	sync    key.Binding
	push    key.Binding
	pull    key.Binding
	copy    key.Binding
	about   key.Binding
	enter   key.Binding
	esc     key.Binding
	quit    key.Binding
	refresh key.Binding
}

var keys = keyMap{
	sync:    key.NewBinding(key.WithKeys("s")),
	push:    key.NewBinding(key.WithKeys("p")),
	pull:    key.NewBinding(key.WithKeys("l")),
	copy:    key.NewBinding(key.WithKeys("c")),
	about:   key.NewBinding(key.WithKeys("i")),
	enter:   key.NewBinding(key.WithKeys("enter")),
	esc:     key.NewBinding(key.WithKeys("esc")),
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	refresh: key.NewBinding(key.WithKeys("r")),
}
