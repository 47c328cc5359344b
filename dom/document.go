package dom

import (
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/teranos/tip/errors"
)

// RectAttribute carries explicit geometry in parsed HTML
const RectAttribute = "data-rect"

// DefaultViewport is the viewport size of a new document
var DefaultViewport = Size{Width: 1024, Height: 768}

// MeasureFunc returns the natural size of an element without explicit geometry
type MeasureFunc func(*Element) Size

// Document is an in-memory HTML document with a window, focus and hover state
type Document struct {
	root      *html.Node
	elements  map[*html.Node]*Element
	selectors map[string]cascadia.SelectorGroup
	listeners listeners
	window    *Window

	nextListener ListenerID
	active       *Element
	hovered      *Element
	viewport     Size
	scroll       Point
	measure      MeasureFunc

	observers []*MutationObserver
	schedule  func(func())
	queued    []func()
}

// NewDocument returns an empty document with html, head and body
func NewDocument() *Document {
	doc, err := ParseString("<!DOCTYPE html><html><head></head><body></body></html>")
	if err != nil {
		panic(err)
	}
	return doc
}

// ParseString parses an HTML string
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Parse parses an HTML document. Elements carrying data-rect get that geometry.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}

	d := &Document{
		root:      root,
		elements:  make(map[*html.Node]*Element),
		selectors: make(map[string]cascadia.SelectorGroup),
		viewport:  DefaultViewport,
		measure:   MeasureText,
	}
	d.window = &Window{doc: d}

	var walkErr error
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if v, ok := attr(n, RectAttribute); ok {
			rect, err := ParseRect(v)
			if err != nil {
				walkErr = errors.Wrapf(err, "<%s>", n.Data)
				return false
			}
			d.wrap(n).SetRect(rect)
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return d, nil
}

// wrap returns the stable Element for a node
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// Window returns the window event target
func (d *Document) Window() *Window { return d.window }

// DocumentElement returns the <html> element
func (d *Document) DocumentElement() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Body returns the <body> element
func (d *Document) Body() *Element {
	var body *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return body == nil
	})
	return d.wrap(body)
}

// CreateElement creates a detached element
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return d.wrap(n)
}

// compile parses and caches a selector group
func (d *Document) compile(selector string) (cascadia.SelectorGroup, error) {
	if sel, ok := d.selectors[selector]; ok {
		return sel, nil
	}
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "invalid selector %q", selector), errors.ErrInvalidTarget)
	}
	d.selectors[selector] = sel
	return sel, nil
}

// QuerySelectorAll returns connected elements matching selector in document order
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	return d.wrapAll(cascadia.QueryAll(d.root, sel)), nil
}

// QuerySelector returns the first match or nil
func (d *Document) QuerySelector(selector string) (*Element, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	return d.wrap(cascadia.Query(d.root, sel)), nil
}

// GetElementByID returns the element with the given id or nil
func (d *Document) GetElementByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if v, ok := attr(n, "id"); ok && v == id && n.Type == html.ElementNode {
			found = n
		}
		return found == nil
	})
	return d.wrap(found)
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// AddEventListener registers a document-level listener
func (d *Document) AddEventListener(typ string, fn Listener, opts ...ListenerOption) ListenerID {
	return d.listeners.add(d, typ, fn, opts)
}

// RemoveEventListener removes a document-level registration
func (d *Document) RemoveEventListener(typ string, id ListenerID) bool {
	return d.listeners.remove(typ, id)
}

// ListenerCount returns the number of document-level registrations
func (d *Document) ListenerCount() int { return d.listeners.count() }

func (d *Document) listenerSet() *listeners { return &d.listeners }

// Dispatch dispatches ev with the document as target
func (d *Document) Dispatch(ev *Event) {
	propagate([]EventTarget{d.window}, d, ev)
}

// ActiveElement returns the focused element, or nil
func (d *Document) ActiveElement() *Element {
	if d.active != nil && !d.active.IsConnected() {
		d.active = nil
	}
	return d.active
}

// Hovered returns the element under the pointer, or nil
func (d *Document) Hovered() *Element { return d.hovered }

// Viewport returns the viewport size
func (d *Document) Viewport() Size { return d.viewport }

// SetViewport resizes the viewport and dispatches resize on the window
func (d *Document) SetViewport(s Size) {
	d.viewport = s
	d.window.Dispatch(NewEvent("resize"))
}

// Scroll returns the scroll offset
func (d *Document) Scroll() Point { return d.scroll }

// ScrollTo sets the scroll offset and dispatches scroll on the window
func (d *Document) ScrollTo(x, y float64) {
	d.scroll = Point{X: x, Y: y}
	d.window.Dispatch(NewEvent("scroll"))
}

// PageWidth is the width used to clamp horizontally positioned content
func (d *Document) PageWidth() float64 {
	if root := d.DocumentElement(); root != nil && root.hasRect && root.rect.Width > 0 {
		return root.rect.Width
	}
	return d.viewport.Width
}

// SetMeasure replaces the natural-size function for unsized elements
func (d *Document) SetMeasure(fn MeasureFunc) {
	if fn == nil {
		fn = MeasureText
	}
	d.measure = fn
}

// ElementFromPoint returns the last element in document order whose box
// contains the client point, or nil
func (d *Document) ElementFromPoint(x, y float64) *Element {
	px, py := x+d.scroll.X, y+d.scroll.Y
	var hit *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if el, ok := d.elements[n]; ok && el.hasRect && el.rect.Contains(px, py) {
			hit = n
		}
		return true
	})
	return d.wrap(hit)
}

// HTML renders the document
func (d *Document) HTML() string {
	var sb strings.Builder
	_ = html.Render(&sb, d.root)
	return sb.String()
}

// MeasureText sizes an element from its text: 8px per character plus 20px
// padding, wrapping at 350px, 20px per line plus 10px padding.
func MeasureText(el *Element) Size {
	const (
		charWidth = 8.0
		padding   = 20.0
		maxWidth  = 350.0
		lineH     = 20.0
	)
	chars := float64(utf8.RuneCountInString(strings.TrimSpace(el.TextContent())))
	width := chars*charWidth + padding
	lines := 1.0
	if width > maxWidth {
		lines = math.Ceil(chars * charWidth / (maxWidth - padding))
		width = maxWidth
	}
	return Size{Width: width, Height: lines*lineH + padding/2}
}

// walk visits nodes depth-first in document order until fn returns false
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
