package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	SwitchPane  key.Binding
	Fetch       key.Binding
	AddURLs     key.Binding
	Edit        key.Binding
	Order       key.Binding
	Remove      key.Binding
	Add         key.Binding
	SaveAdverts key.Binding
	LoadAdverts key.Binding
	NextType    key.Binding
	Preview     key.Binding
	Detail      key.Binding
	Generate    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		SwitchPane:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Fetch:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fetch")),
		AddURLs:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "add from URL")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Order:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "order")),
		Remove:      key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add notice/advert")),
		SaveAdverts: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "save adverts")),
		LoadAdverts: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "load adverts")),
		NextType:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "email type")),
		Preview:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Detail:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "outline")),
		Generate:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Fetch, k.AddURLs, k.Edit, k.Order, k.Remove, k.Add, k.SaveAdverts, k.LoadAdverts, k.NextType, k.Preview, k.Detail, k.Generate, k.Quit}
}
