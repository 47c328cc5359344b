package tooltip

import (
	"reflect"
	"strings"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/errors"
)

// ClassList is the class-name set capability of a reference
type ClassList interface {
	Add(tokens ...string)
	Remove(tokens ...string)
	Contains(token string) bool
}

// Reference is the anchor a tooltip attaches to: a document element or a
// virtual reference.
type Reference interface {
	GetAttribute(name string) string
	HasAttribute(name string) bool
	SetAttribute(name, value string)
	RemoveAttribute(name string)
	Classes() ClassList
	AddEventListener(typ string, fn dom.Listener, opts ...dom.ListenerOption) dom.ListenerID
	RemoveEventListener(typ string, id dom.ListenerID) bool
	BoundingClientRect() dom.Rect
}

// ElementReference adapts a document element to Reference
type ElementReference struct {
	*dom.Element
}

// Classes returns the element's class list
func (r ElementReference) Classes() ClassList {
	return r.Element.ClassList()
}

// BoundingClientRecter is the minimal shape of a virtual reference
type BoundingClientRecter interface {
	BoundingClientRect() dom.Rect
}

// VirtualReference is a reference with no backing element, positioned by a
// rect source. Attributes and classes are kept in memory; listener
// registration is a no-op.
type VirtualReference struct {
	source  BoundingClientRecter
	attrs   map[string]string
	classes *virtualClassList
}

// NewVirtualReference wraps a rect source
func NewVirtualReference(source BoundingClientRecter) *VirtualReference {
	return &VirtualReference{
		source:  source,
		attrs:   make(map[string]string),
		classes: &virtualClassList{},
	}
}

// RectFunc adapts a function to BoundingClientRecter
type RectFunc func() dom.Rect

// BoundingClientRect calls f
func (f RectFunc) BoundingClientRect() dom.Rect { return f() }

func (v *VirtualReference) GetAttribute(name string) string { return v.attrs[name] }

func (v *VirtualReference) HasAttribute(name string) bool {
	_, ok := v.attrs[name]
	return ok
}

func (v *VirtualReference) SetAttribute(name, value string) { v.attrs[name] = value }

func (v *VirtualReference) RemoveAttribute(name string) { delete(v.attrs, name) }

func (v *VirtualReference) Classes() ClassList { return v.classes }

func (v *VirtualReference) AddEventListener(string, dom.Listener, ...dom.ListenerOption) dom.ListenerID {
	return 0
}

func (v *VirtualReference) RemoveEventListener(string, dom.ListenerID) bool { return false }

func (v *VirtualReference) BoundingClientRect() dom.Rect {
	if v.source == nil {
		return dom.Rect{}
	}
	return v.source.BoundingClientRect()
}

type virtualClassList struct {
	tokens []string
}

func (c *virtualClassList) Add(tokens ...string) {
	for _, t := range tokens {
		if t != "" && !c.Contains(t) {
			c.tokens = append(c.tokens, t)
		}
	}
}

func (c *virtualClassList) Remove(tokens ...string) {
	for _, t := range tokens {
		for i, have := range c.tokens {
			if have == t {
				c.tokens = append(c.tokens[:i], c.tokens[i+1:]...)
				break
			}
		}
	}
}

func (c *virtualClassList) Contains(token string) bool {
	for _, t := range c.tokens {
		if t == token {
			return true
		}
	}
	return false
}

// ElementOf returns the element behind a reference, if any
func ElementOf(ref Reference) (*dom.Element, bool) {
	switch r := ref.(type) {
	case ElementReference:
		return r.Element, r.Element != nil
	case *ElementReference:
		if r != nil && r.Element != nil {
			return r.Element, true
		}
	}
	return nil, false
}

// isConnected reports whether ref is still attached to its document.
// References without an element are always attached.
func isConnected(ref Reference) bool {
	if c, ok := ref.(interface{ IsConnected() bool }); ok {
		return c.IsConnected()
	}
	return true
}

// resolveTargets turns a target specification into references. It reports
// whether the target was virtual.
func resolveTargets(doc *dom.Document, target any) ([]Reference, bool, error) {
	switch t := target.(type) {
	case nil:
		return nil, false, errors.NewInvalidTargetError("target is nil")
	case string:
		if doc == nil {
			return nil, false, errors.NewInvalidTargetError("selector %q needs a document", t)
		}
		if strings.TrimSpace(t) == "" {
			return nil, false, errors.NewInvalidTargetError("empty selector")
		}
		els, err := doc.QuerySelectorAll(t)
		if err != nil {
			return nil, false, err
		}
		return elementRefs(els), false, nil
	case *dom.Element:
		if t == nil {
			return nil, false, errors.NewInvalidTargetError("target element is nil")
		}
		return []Reference{ElementReference{t}}, false, nil
	case []*dom.Element:
		return elementRefs(t), false, nil
	case *VirtualReference:
		return []Reference{t}, true, nil
	case Reference:
		return []Reference{t}, false, nil
	case []Reference:
		return t, false, nil
	case BoundingClientRecter:
		if isNilValue(t) {
			return nil, false, errors.NewInvalidTargetError("virtual reference is nil")
		}
		return []Reference{NewVirtualReference(t)}, true, nil
	}
	return nil, false, errors.NewInvalidTargetError("unsupported target type %T", target)
}

func elementRefs(els []*dom.Element) []Reference {
	refs := make([]Reference, 0, len(els))
	for _, el := range els {
		if el != nil {
			refs = append(refs, ElementReference{el})
		}
	}
	return refs
}

func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Func, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
