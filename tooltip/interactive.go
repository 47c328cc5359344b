package tooltip

import (
	"github.com/teranos/tip/dom"
)

// startInteractive keeps an interactive tooltip open while the cursor travels
// from the reference to the floating element
func (i *Instance) startInteractive() {
	if len(i.interactive) > 0 {
		return
	}
	doc := i.engine.env.Document
	i.addListener(&i.interactive, doc, "mousemove", i.onInteractiveMove)
	if body := doc.Body(); body != nil {
		i.addListener(&i.interactive, body, "mouseleave", func(ev *dom.Event) {
			i.stopInteractive()
			i.requestHide(ev)
		})
	}
}

func (i *Instance) stopInteractive() {
	removeListeners(&i.interactive)
}

func (i *Instance) onInteractiveMove(ev *dom.Event) {
	if ev.Target != nil {
		if el, ok := ElementOf(i.reference); ok && el.Contains(ev.Target) {
			return
		}
		if i.floating.Contains(ev.Target) {
			return
		}
	}
	placement := ""
	if i.mounted {
		placement = i.placement()
	}
	if CursorOutsideInteractiveBorder(placement, i.floating.BoundingClientRect(), ev.ClientX, ev.ClientY, i.options.InteractiveBorder, i.options.Distance) {
		i.stopInteractive()
		i.requestHide(ev)
	}
}

// placement is the side the floating element currently sits on
func (i *Instance) placement() string {
	if p := i.box.GetAttribute(AttrPlacement); p != "" {
		return p
	}
	return i.options.Placement
}

// CursorOutsideInteractiveBorder reports whether client point (x, y) has left
// rect grown by border on every side, plus distance on the side named by the
// placement. An empty placement means the floating element is not
// mounted, which always counts as outside.
func CursorOutsideInteractiveBorder(placement string, rect dom.Rect, x, y, border, distance float64) bool {
	if placement == "" {
		return true
	}
	base := basePlacement(placement)
	gap := func(side string) float64 {
		if base == side {
			return border + distance
		}
		return border
	}
	exceedsTop := rect.Top-y > gap("top")
	exceedsBottom := y-rect.Bottom() > gap("bottom")
	exceedsLeft := rect.Left-x > gap("left")
	exceedsRight := x-rect.Right() > gap("right")
	return exceedsTop || exceedsBottom || exceedsLeft || exceedsRight
}
