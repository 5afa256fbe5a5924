// Package catfilter is the category filter control. It owns only whether its
// dropdown is open; the categories and the selection are passed in on every
// render, and selecting or resetting is delegated to the caller.
package catfilter

import (
	_ "embed"
	"sync"

	"github.com/diamondburned/postlist/frontend/frontserver/render"
)

var (
	//go:embed catfilter.html
	html string
	//go:embed feedform.html
	formHTML string
	//go:embed catfilter.css
	css string
)

func init() {
	render.RegisterCSS(css)
}

// Component renders a Data.
var Component = render.Component{
	Template: html,
	Components: map[string]render.Component{
		"feedform": FormComponent,
	},
}

// FormComponent renders the hidden fields of a Form. Every form posting a feed
// action embeds it so the action knows which view and selection it acts on.
var FormComponent = render.Component{
	Template: formHTML,
}

// Form is the state every feed action form carries.
type Form struct {
	ViewID    string
	Selection []string
}

// Control is the state of one mounted filter control.
type Control struct {
	mu   sync.Mutex
	open bool
}

// IsOpen returns true if the category dropdown is shown.
func (c *Control) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// ToggleVisibility shows or hides the category dropdown.
func (c *Control) ToggleVisibility() {
	c.mu.Lock()
	c.open = !c.open
	c.mu.Unlock()
}

// Select hands the category to onToggle.
func (c *Control) Select(category string, onToggle func(string)) {
	onToggle(category)
}

// Reset calls onReset.
func (c *Control) Reset(onReset func()) {
	onReset()
}

// Item is a single category checkbox.
type Item struct {
	Name    string
	Checked bool
}

// Data is the argument of the catfilter template.
type Data struct {
	Open  bool
	Items []Item
	Form  Form
}

// Data builds the template argument. There is one item per category, checked
// if and only if it is in the selection.
func (c *Control) Data(categories, selection []string, form Form) Data {
	var selected = make(map[string]struct{}, len(selection))
	for _, s := range selection {
		selected[s] = struct{}{}
	}

	var items = make([]Item, len(categories))
	for i, cat := range categories {
		_, checked := selected[cat]
		items[i] = Item{Name: cat, Checked: checked}
	}

	return Data{
		Open:  c.IsOpen(),
		Items: items,
		Form:  form,
	}
}
