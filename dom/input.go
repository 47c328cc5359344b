package dom

// focus moves focus to next (nil clears it), firing blur/focusout on the
// previous element and focus/focusin on the next.
func (d *Document) focus(next *Element) {
	prev := d.ActiveElement()
	if prev == next {
		return
	}
	d.active = nil
	if prev != nil {
		prev.Dispatch(&Event{Type: "blur", RelatedTarget: next})
		prev.Dispatch(&Event{Type: "focusout", RelatedTarget: next, Bubbles: true})
	}
	if next == nil {
		return
	}
	d.active = next
	next.Dispatch(&Event{Type: "focus", RelatedTarget: prev})
	next.Dispatch(&Event{Type: "focusin", RelatedTarget: prev, Bubbles: true})
}

// BlurWindow dispatches blur on the window, as when the page loses focus
func (d *Document) BlurWindow() {
	d.window.Dispatch(NewEvent("blur"))
}

func (d *Document) mouseEvent(typ string, x, y float64, related *Element) *Event {
	return &Event{
		Type:          typ,
		Bubbles:       Bubbles(typ),
		RelatedTarget: related,
		ClientX:       x,
		ClientY:       y,
		PageX:         x + d.scroll.X,
		PageY:         y + d.scroll.Y,
	}
}

// PointerMove moves the pointer over target at client point (x, y). Crossing
// into a new element fires mouseout/mouseleave on the old one and
// mouseover/mouseenter on the new one before the mousemove. A nil target
// means the pointer left the document.
func (d *Document) PointerMove(target *Element, x, y float64) {
	prev := d.hovered
	if prev != nil && !prev.IsConnected() {
		prev = nil
	}

	if target != prev {
		d.hovered = target
		if prev != nil {
			prev.Dispatch(d.mouseEvent("mouseout", x, y, target))
			// innermost first
			for _, el := range inclusiveAncestors(prev) {
				if el.Contains(target) {
					break
				}
				el.Dispatch(d.mouseEvent("mouseleave", x, y, target))
			}
		}
		if target != nil {
			target.Dispatch(d.mouseEvent("mouseover", x, y, prev))
			var entered []*Element
			for _, el := range inclusiveAncestors(target) {
				if el.Contains(prev) {
					break
				}
				entered = append(entered, el)
			}
			// outermost first
			for i := len(entered) - 1; i >= 0; i-- {
				entered[i].Dispatch(d.mouseEvent("mouseenter", x, y, prev))
			}
		}
	}

	if target != nil {
		target.Dispatch(d.mouseEvent("mousemove", x, y, nil))
	}
}

// MoveTo moves the pointer to the client point, hit-testing for the target
func (d *Document) MoveTo(x, y float64) *Element {
	target := d.ElementFromPoint(x, y)
	if target == nil {
		target = d.Body()
	}
	d.PointerMove(target, x, y)
	return target
}

// Hover moves the pointer to the center of el
func (d *Document) Hover(el *Element) {
	c := el.BoundingClientRect().Center()
	d.PointerMove(el, c.X, c.Y)
}

// Click dispatches a click at the center of el
func (d *Document) Click(el *Element) {
	c := el.BoundingClientRect().Center()
	el.Dispatch(d.mouseEvent("click", c.X, c.Y, nil))
}

// TouchStart dispatches touchstart at the center of el
func (d *Document) TouchStart(el *Element) {
	c := el.BoundingClientRect().Center()
	el.Dispatch(d.mouseEvent("touchstart", c.X, c.Y, nil))
}

// TouchEnd dispatches touchend at the center of el
func (d *Document) TouchEnd(el *Element) {
	c := el.BoundingClientRect().Center()
	el.Dispatch(d.mouseEvent("touchend", c.X, c.Y, nil))
}

func inclusiveAncestors(el *Element) []*Element {
	var out []*Element
	for cur := el; cur != nil; cur = cur.Parent() {
		out = append(out, cur)
	}
	return out
}
