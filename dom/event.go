package dom

// Phase is the dispatch phase an event is in
type Phase int

const (
	PhaseNone Phase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

// nonBubbling event types; everything else bubbles
var nonBubbling = map[string]bool{
	"mouseenter": true,
	"mouseleave": true,
	"focus":      true,
	"blur":       true,
	"resize":     true,
	"scroll":     true,
}

// Bubbles reports whether events of this type bubble
func Bubbles(typ string) bool {
	return !nonBubbling[typ]
}

// Event is a dispatched event
type Event struct {
	Type string
	// Target is nil for events dispatched on the window or document
	Target        *Element
	CurrentTarget EventTarget
	RelatedTarget *Element
	ClientX       float64
	ClientY       float64
	PageX         float64
	PageY         float64
	Bubbles       bool
	Phase         Phase

	stopped bool
}

// NewEvent creates an event with the browser's bubbling default for typ
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Bubbles: Bubbles(typ)}
}

// StopPropagation prevents further propagation after the current target
func (e *Event) StopPropagation() {
	e.stopped = true
}

// IsTouch reports a touch event
func (e *Event) IsTouch() bool {
	switch e.Type {
	case "touchstart", "touchend", "touchmove", "touchcancel":
		return true
	}
	return false
}

// Listener handles an event
type Listener func(*Event)

// ListenerID identifies a registration for removal
type ListenerID uint64

// ListenerOption configures a registration
type ListenerOption func(*listenerEntry)

// WithCapture registers for the capture phase
func WithCapture() ListenerOption {
	return func(e *listenerEntry) { e.capture = true }
}

// EventTarget is anything listeners can be registered on: elements, the
// document and the window.
type EventTarget interface {
	AddEventListener(typ string, fn Listener, opts ...ListenerOption) ListenerID
	RemoveEventListener(typ string, id ListenerID) bool
	ListenerCount() int

	listenerSet() *listeners
}

type listenerEntry struct {
	id      ListenerID
	fn      Listener
	capture bool
	removed bool
}

// listeners stores registrations per event type in registration order
type listeners struct {
	byType map[string][]*listenerEntry
}

func (l *listeners) add(doc *Document, typ string, fn Listener, opts []ListenerOption) ListenerID {
	if l.byType == nil {
		l.byType = make(map[string][]*listenerEntry)
	}
	doc.nextListener++
	entry := &listenerEntry{id: doc.nextListener, fn: fn}
	for _, opt := range opts {
		opt(entry)
	}
	l.byType[typ] = append(l.byType[typ], entry)
	return entry.id
}

func (l *listeners) remove(typ string, id ListenerID) bool {
	entries := l.byType[typ]
	for i, e := range entries {
		if e.id == id {
			e.removed = true
			l.byType[typ] = append(entries[:i:i], entries[i+1:]...)
			if len(l.byType[typ]) == 0 {
				delete(l.byType, typ)
			}
			return true
		}
	}
	return false
}

func (l *listeners) count() int {
	n := 0
	for _, entries := range l.byType {
		n += len(entries)
	}
	return n
}

// snapshot copies the registrations so listeners added during dispatch
// do not run for the current event
func (l *listeners) snapshot(typ string) []*listenerEntry {
	entries := l.byType[typ]
	if len(entries) == 0 {
		return nil
	}
	out := make([]*listenerEntry, len(entries))
	copy(out, entries)
	return out
}

// invoke runs the matching registrations on one target.
// capture: only capture listeners; bubble: only non-capture; at target: both.
func invoke(ct EventTarget, ev *Event) {
	for _, entry := range ct.listenerSet().snapshot(ev.Type) {
		if entry.removed {
			continue
		}
		switch ev.Phase {
		case PhaseCapturing:
			if !entry.capture {
				continue
			}
		case PhaseBubbling:
			if entry.capture {
				continue
			}
		}
		ev.CurrentTarget = ct
		entry.fn(ev)
	}
}

// propagate runs the three phases over path (outermost first) and target
func propagate(path []EventTarget, target EventTarget, ev *Event) {
	ev.Phase = PhaseCapturing
	for _, ct := range path {
		if ev.stopped {
			break
		}
		invoke(ct, ev)
	}

	if !ev.stopped {
		ev.Phase = PhaseAtTarget
		invoke(target, ev)
	}

	if ev.Bubbles {
		ev.Phase = PhaseBubbling
		for i := len(path) - 1; i >= 0; i-- {
			if ev.stopped {
				break
			}
			invoke(path[i], ev)
		}
	}

	ev.Phase = PhaseNone
	ev.CurrentTarget = nil
}

// Window is the document's window event target
type Window struct {
	doc       *Document
	listeners listeners
}

// AddEventListener registers fn for typ on the window
func (w *Window) AddEventListener(typ string, fn Listener, opts ...ListenerOption) ListenerID {
	return w.listeners.add(w.doc, typ, fn, opts)
}

// RemoveEventListener removes a registration
func (w *Window) RemoveEventListener(typ string, id ListenerID) bool {
	return w.listeners.remove(typ, id)
}

// ListenerCount returns the number of registrations
func (w *Window) ListenerCount() int { return w.listeners.count() }

func (w *Window) listenerSet() *listeners { return &w.listeners }

// Dispatch dispatches ev on the window
func (w *Window) Dispatch(ev *Event) {
	propagate(nil, w, ev)
}
