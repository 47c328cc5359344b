package tooltip

import (
	"strings"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/internal/util"
)

// FollowCursorPadding keeps a cursor-following tooltip off the page edges
const FollowCursorPadding = 5

func isMouseEvent(ev *dom.Event) bool {
	return ev != nil && (strings.HasPrefix(ev.Type, "mouse") || ev.Type == "click")
}

// startFollowCursor tracks document mousemove for follow-cursor instances.
// Shows that did not come from the mouse are placed normally.
func (i *Instance) startFollowCursor(ev *dom.Event) {
	if i.options.FollowCursor == FollowCursorOff || !isMouseEvent(ev) {
		return
	}
	i.cursor = &dom.Point{X: ev.PageX, Y: ev.PageY}
	i.cursorPositioned = false
	if i.following {
		return
	}
	i.following = true
	i.addListener(&i.follow, i.engine.env.Document, "mousemove", i.onFollowMove)
	if i.handle != nil {
		i.handle.DisableEventListeners()
	}
}

func (i *Instance) stopFollowCursor() {
	if !i.following {
		return
	}
	removeListeners(&i.follow)
	i.following = false
	if i.handle != nil && i.visible {
		i.handle.EnableEventListeners()
	}
}

func (i *Instance) onFollowMove(ev *dom.Event) {
	i.cursor = &dom.Point{X: ev.PageX, Y: ev.PageY}
	if i.mounted {
		i.positionAtCursor()
	}
}

func (i *Instance) positionAtCursor() {
	if i.cursor == nil {
		return
	}
	doc := i.engine.env.Document
	var ref dom.Rect
	if el, ok := ElementOf(i.reference); ok {
		ref = el.PageRect()
	} else {
		ref = i.reference.BoundingClientRect().Translate(doc.Scroll().X, doc.Scroll().Y)
	}
	p := CursorPosition(i.placement(), i.options.FollowCursor, *i.cursor, i.floating.Size(), ref, doc.PageWidth())
	i.floating.SetPosition(p.X, p.Y)
	i.cursorPositioned = true

	if i.options.FollowCursor == FollowCursorInitial && i.visible {
		i.stopFollowCursor()
	}
}

// CursorPosition places a floating box of size flush against the cursor (page
// coordinates) on the placement side; the box transform adds the distance.
// horizontal keeps the reference-derived y, vertical the reference-derived x.
// x stays within the page padding.
func CursorPosition(placement string, mode FollowCursorMode, cursor dom.Point, size dom.Size, ref dom.Rect, pageWidth float64) dom.Point {
	w, h := size.Width, size.Height
	var x, y, refX, refY float64
	switch basePlacement(placement) {
	case "bottom":
		x, y = cursor.X-w/2, cursor.Y
		refX, refY = ref.Left+ref.Width/2-w/2, ref.Bottom()
	case "left":
		x, y = cursor.X-w, cursor.Y-h/2
		refX, refY = ref.Left-w, ref.Top+ref.Height/2-h/2
	case "right":
		x, y = cursor.X, cursor.Y-h/2
		refX, refY = ref.Right(), ref.Top+ref.Height/2-h/2
	default:
		x, y = cursor.X-w/2, cursor.Y-h
		refX, refY = ref.Left+ref.Width/2-w/2, ref.Top-h
	}
	switch mode {
	case FollowCursorHorizontal:
		y = refY
	case FollowCursorVertical:
		x = refX
	}
	x = util.Clamp(x, FollowCursorPadding, pageWidth-FollowCursorPadding-w)
	return dom.Point{X: x, Y: y}
}
