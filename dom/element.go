package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/teranos/tip/errors"
)

// Element wraps an element node. Elements are identity-stable: the same node
// always yields the same *Element.
type Element struct {
	doc       *Document
	node      *html.Node
	listeners listeners
	rect      Rect
	hasRect   bool
}

// Document returns the owning document
func (e *Element) Document() *Document { return e.doc }

// TagName returns the lower-case tag name
func (e *Element) TagName() string { return e.node.Data }

// ID returns the id attribute
func (e *Element) ID() string { return e.GetAttribute("id") }

// GetAttribute returns the attribute value, or "" when absent
func (e *Element) GetAttribute(name string) string {
	v, _ := attr(e.node, name)
	return v
}

// HasAttribute reports whether the attribute is present
func (e *Element) HasAttribute(name string) bool {
	_, ok := attr(e.node, name)
	return ok
}

// Attributes returns a copy of all attributes in source order
func (e *Element) Attributes() []html.Attribute {
	out := make([]html.Attribute, len(e.node.Attr))
	copy(out, e.node.Attr)
	return out
}

// SetAttribute sets an attribute, recording a mutation when the value changes
func (e *Element) SetAttribute(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			if a.Val == value {
				return
			}
			old := a.Val
			e.node.Attr[i].Val = value
			e.doc.record(MutationRecord{Type: MutationAttributes, Target: e, AttributeName: name, OldValue: old})
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	e.doc.record(MutationRecord{Type: MutationAttributes, Target: e, AttributeName: name})
}

// RemoveAttribute removes an attribute if present
func (e *Element) RemoveAttribute(name string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			e.doc.record(MutationRecord{Type: MutationAttributes, Target: e, AttributeName: name, OldValue: a.Val})
			return
		}
	}
}

// ClassList returns the class token set
func (e *Element) ClassList() *ClassList {
	return &ClassList{el: e}
}

// Parent returns the parent element, or nil
func (e *Element) Parent() *Element {
	return e.doc.wrap(e.node.Parent)
}

// Children returns child elements in order
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// FirstElementChild returns the first child element, or nil
func (e *Element) FirstElementChild() *Element {
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

// AppendChild moves child to the end of e's children
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.Remove()
	}
	e.node.AppendChild(child.node)
	e.doc.record(MutationRecord{Type: MutationChildList, Target: e, Added: []*Element{child}})
}

// RemoveChild detaches child from e
func (e *Element) RemoveChild(child *Element) error {
	if child.node.Parent != e.node {
		return errors.Mark(errors.Newf("<%s> is not a child of <%s>", child.TagName(), e.TagName()), errors.ErrNotFound)
	}
	e.node.RemoveChild(child.node)
	e.doc.record(MutationRecord{Type: MutationChildList, Target: e, Removed: []*Element{child}})
	return nil
}

// Remove detaches e from its parent
func (e *Element) Remove() {
	parent := e.node.Parent
	if parent == nil {
		return
	}
	if p := e.doc.wrap(parent); p != nil {
		_ = p.RemoveChild(e)
		return
	}
	parent.RemoveChild(e.node)
}

// IsConnected reports whether e is attached to its document
func (e *Element) IsConnected() bool {
	n := e.node
	for n.Parent != nil {
		n = n.Parent
	}
	return n == e.doc.root
}

// Contains reports whether other is e or a descendant of e
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Matches reports whether e matches selector
func (e *Element) Matches(selector string) (bool, error) {
	sel, err := e.doc.compile(selector)
	if err != nil {
		return false, err
	}
	return sel.Match(e.node), nil
}

// Closest returns the nearest inclusive ancestor matching selector, or nil
func (e *Element) Closest(selector string) (*Element, error) {
	sel, err := e.doc.compile(selector)
	if err != nil {
		return nil, err
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && sel.Match(n) {
			return e.doc.wrap(n), nil
		}
	}
	return nil, nil
}

// QuerySelectorAll returns descendants matching selector
func (e *Element) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := e.doc.compile(selector)
	if err != nil {
		return nil, err
	}
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(n *html.Node) bool {
			if n.Type == html.ElementNode && sel.Match(n) {
				out = append(out, e.doc.wrap(n))
			}
			return true
		})
	}
	return out, nil
}

// TextContent returns the concatenated text of all descendants
func (e *Element) TextContent() string {
	var sb strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return sb.String()
}

// SetTextContent replaces all children with a single text node
func (e *Element) SetTextContent(text string) {
	removed := e.clearChildren()
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	e.doc.record(MutationRecord{Type: MutationChildList, Target: e, Removed: removed})
}

// SetInnerHTML replaces all children with parsed markup
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return errors.Wrap(err, "parse fragment")
	}
	removed := e.clearChildren()
	var added []*Element
	for _, n := range nodes {
		e.node.AppendChild(n)
		if n.Type == html.ElementNode {
			added = append(added, e.doc.wrap(n))
		}
	}
	e.doc.record(MutationRecord{Type: MutationChildList, Target: e, Added: added, Removed: removed})
	return nil
}

// InnerHTML renders e's children
func (e *Element) InnerHTML() string {
	var sb strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// OuterHTML renders e
func (e *Element) OuterHTML() string {
	var sb strings.Builder
	_ = html.Render(&sb, e.node)
	return sb.String()
}

func (e *Element) clearChildren() []*Element {
	var removed []*Element
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		if c.Type == html.ElementNode {
			removed = append(removed, e.doc.wrap(c))
		}
		c = next
	}
	return removed
}

// SetRect sets explicit page-space geometry
func (e *Element) SetRect(r Rect) {
	e.rect = r
	e.hasRect = true
}

// SetPosition moves e, keeping its size
func (e *Element) SetPosition(left, top float64) {
	size := e.Size()
	e.rect = Rect{Left: left, Top: top, Width: size.Width, Height: size.Height}
	e.hasRect = true
}

// Size returns explicit size, or the measured natural size
func (e *Element) Size() Size {
	if e.hasRect && (e.rect.Width > 0 || e.rect.Height > 0) {
		return e.rect.Size()
	}
	return e.doc.measure(e)
}

// PageRect returns e's page-space box
func (e *Element) PageRect() Rect {
	if e.hasRect {
		return e.rect
	}
	s := e.Size()
	return Rect{Width: s.Width, Height: s.Height}
}

// BoundingClientRect returns e's box relative to the viewport
func (e *Element) BoundingClientRect() Rect {
	scroll := e.doc.scroll
	return e.PageRect().Translate(-scroll.X, -scroll.Y)
}

// AddEventListener registers fn for typ on e
func (e *Element) AddEventListener(typ string, fn Listener, opts ...ListenerOption) ListenerID {
	return e.listeners.add(e.doc, typ, fn, opts)
}

// RemoveEventListener removes a registration
func (e *Element) RemoveEventListener(typ string, id ListenerID) bool {
	return e.listeners.remove(typ, id)
}

// ListenerCount returns the number of registrations on e
func (e *Element) ListenerCount() int { return e.listeners.count() }

func (e *Element) listenerSet() *listeners { return &e.listeners }

// Dispatch dispatches ev with e as target. Connected elements propagate
// through their ancestors, the document and the window.
func (e *Element) Dispatch(ev *Event) {
	ev.Target = e
	var chain []EventTarget
	for n := e.node.Parent; n != nil; n = n.Parent {
		switch {
		case n.Type == html.ElementNode:
			chain = append(chain, e.doc.wrap(n))
		case n == e.doc.root:
			chain = append(chain, e.doc, e.doc.window)
		}
	}
	// outermost first
	path := make([]EventTarget, len(chain))
	for i, t := range chain {
		path[len(chain)-1-i] = t
	}
	propagate(path, e, ev)
}

// Focus focuses e, blurring the previous active element first
func (e *Element) Focus() {
	e.doc.focus(e)
}

// Blur removes focus from e if it is active
func (e *Element) Blur() {
	if e.doc.ActiveElement() == e {
		e.doc.focus(nil)
	}
}

func (e *Element) String() string {
	var sb strings.Builder
	sb.WriteString("<" + e.TagName())
	if id := e.ID(); id != "" {
		sb.WriteString("#" + id)
	}
	if cls := e.GetAttribute("class"); cls != "" {
		sb.WriteString("." + strings.Join(strings.Fields(cls), "."))
	}
	sb.WriteString(">")
	return sb.String()
}

// ClassList is a live view over an element's class attribute
type ClassList struct {
	el *Element
}

func (c *ClassList) tokens() []string {
	return strings.Fields(c.el.GetAttribute("class"))
}

// Contains reports whether the token is present
func (c *ClassList) Contains(token string) bool {
	return containsToken(c.tokens(), token)
}

// Add adds tokens that are not yet present
func (c *ClassList) Add(tokens ...string) {
	current := c.tokens()
	n := len(current)
	for _, t := range tokens {
		if t != "" && !containsToken(current, t) {
			current = append(current, t)
		}
	}
	if len(current) != n {
		c.el.SetAttribute("class", strings.Join(current, " "))
	}
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

// Remove removes tokens
func (c *ClassList) Remove(tokens ...string) {
	drop := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		drop[t] = true
	}
	current := c.tokens()
	var kept []string
	for _, t := range current {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	if len(kept) != len(current) {
		c.el.SetAttribute("class", strings.Join(kept, " "))
	}
}

// Toggle flips a token and reports whether it is now present
func (c *ClassList) Toggle(token string) bool {
	if c.Contains(token) {
		c.Remove(token)
		return false
	}
	c.Add(token)
	return true
}

// Values returns the tokens in order
func (c *ClassList) Values() []string { return c.tokens() }
