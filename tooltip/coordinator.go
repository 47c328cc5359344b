package tooltip

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/logger"
	"github.com/teranos/tip/pulse"
	"github.com/teranos/tip/sym"
)

// DefaultTouchMoveThreshold: two mousemoves closer than this mean a real mouse
const DefaultTouchMoveThreshold = 20 * time.Millisecond

// coordinator applies document-wide policies across every live instance:
// outside clicks, touch detection and window blur. There is one per process;
// each document is bound the first time an instance is created on it.
type coordinator struct {
	mu        sync.Mutex
	bindings  map[*dom.Document]*binding
	instances []*Instance
}

// binding is the coordinator's state for one document
type binding struct {
	doc       *dom.Document
	scheduler pulse.Scheduler
	threshold time.Duration
	log       *zap.SugaredLogger

	usingTouch    bool
	lastMouseMove time.Time
	mouseMoveID   dom.ListenerID

	regs []registration
}

var global = newCoordinator()

func newCoordinator() *coordinator {
	return &coordinator{bindings: make(map[*dom.Document]*binding)}
}

// bind installs the document listeners once per document
func (c *coordinator) bind(env Env, log *zap.SugaredLogger) {
	c.mu.Lock()
	if _, ok := c.bindings[env.Document]; ok {
		c.mu.Unlock()
		return
	}
	b := &binding{
		doc:       env.Document,
		scheduler: env.Scheduler,
		threshold: env.TouchMoveThreshold,
		log:       logger.WithSymbol(log, sym.Coordinator),
	}
	c.bindings[env.Document] = b
	c.mu.Unlock()

	doc := env.Document
	b.listen(doc, "click", func(ev *dom.Event) { c.onClick(b, ev) }, dom.WithCapture())
	b.listen(doc, "touchstart", func(*dom.Event) { c.onTouchStart(b) }, dom.WithCapture())
	b.listen(doc.Window(), "blur", func(*dom.Event) { c.onWindowBlur(b) })
	b.log.Debugw("Document bound")
}

func (b *binding) listen(target listenerTarget, typ string, fn dom.Listener, opts ...dom.ListenerOption) {
	id := target.AddEventListener(typ, fn, opts...)
	b.regs = append(b.regs, registration{target: target, typ: typ, id: id})
}

func (c *coordinator) binding(doc *dom.Document) *binding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindings[doc]
}

func (c *coordinator) register(i *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances = append(c.instances, i)
}

func (c *coordinator) unregister(i *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for n, have := range c.instances {
		if have == i {
			c.instances = append(c.instances[:n], c.instances[n+1:]...)
			return
		}
	}
}

// live returns the registered instances on doc, oldest first. A nil doc
// selects every instance.
func (c *coordinator) live(doc *dom.Document) []*Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Instance, 0, len(c.instances))
	for _, i := range c.instances {
		if doc == nil || i.engine.env.Document == doc {
			out = append(out, i)
		}
	}
	return out
}

func (c *coordinator) usingTouch(doc *dom.Document) bool {
	if b := c.binding(doc); b != nil {
		return b.usingTouch
	}
	return false
}

func (c *coordinator) onClick(b *binding, ev *dom.Event) {
	instances := c.live(b.doc)
	if target := ev.Target; target != nil {
		for _, i := range instances {
			if i.mounted && i.floating.Contains(target) {
				return
			}
		}
		if ref := referenceInstance(instances, target); ref != nil {
			if !ref.options.Multiple {
				hideOthers(instances, ref)
			}
			if b.usingTouch || ref.options.Trigger.Has("click") {
				return
			}
			if ref.options.HideOnClick.IsTrue() {
				ref.ClearDelayTimeouts()
				if ref.visible {
					ref.hide(nil)
				}
			}
			return
		}
	}

	n := 0
	for _, i := range instances {
		if !i.options.HideOnClick.IsTrue() && !i.options.Trigger.Has("focus") {
			continue
		}
		if !i.visible {
			// drops a pending show
			i.requestHide(nil)
			continue
		}
		i.hide(nil)
		n++
	}
	if n > 0 {
		b.log.Debugw("Outside click", logger.FieldCount, n)
	}
}

// hideOthers hides every visible non-multiple instance except keep
func hideOthers(instances []*Instance, keep *Instance) {
	for _, i := range instances {
		if i != keep && i.visible && !i.options.Multiple {
			i.hide(nil)
		}
	}
}

// referenceInstance finds the instance whose reference is the closest
// inclusive ancestor of target. Delegate children win over their container.
func referenceInstance(instances []*Instance, target *dom.Element) *Instance {
	for el := target; el != nil; el = el.Parent() {
		var found *Instance
		for _, i := range instances {
			ref, ok := ElementOf(i.reference)
			if !ok || ref != el {
				continue
			}
			if found == nil || i.parent != nil {
				found = i
			}
		}
		if found != nil {
			return found
		}
	}
	return nil
}

func (c *coordinator) onTouchStart(b *binding) {
	if b.usingTouch {
		return
	}
	b.usingTouch = true
	b.lastMouseMove = time.Time{}
	if body := b.doc.Body(); body != nil {
		body.ClassList().Add(ClassTouch)
	}
	b.mouseMoveID = b.doc.AddEventListener("mousemove", func(*dom.Event) { c.onMouseMove(b) })
	b.log.Debugw("Touch input detected")
}

func (c *coordinator) onMouseMove(b *binding) {
	now := b.scheduler.Now()
	if !b.lastMouseMove.IsZero() && now.Sub(b.lastMouseMove) < b.threshold {
		b.usingTouch = false
		b.doc.RemoveEventListener("mousemove", b.mouseMoveID)
		b.mouseMoveID = 0
		if body := b.doc.Body(); body != nil {
			body.ClassList().Remove(ClassTouch)
		}
		b.log.Debugw("Mouse input detected")
	}
	b.lastMouseMove = now
}

func (c *coordinator) onWindowBlur(b *binding) {
	active := b.doc.ActiveElement()
	if active == nil {
		return
	}
	for _, i := range c.live(b.doc) {
		if ref, ok := ElementOf(i.reference); ok && ref == active {
			active.Blur()
			return
		}
	}
}

// unbind removes the listeners installed on doc
func (c *coordinator) unbind(doc *dom.Document) {
	c.mu.Lock()
	b, ok := c.bindings[doc]
	delete(c.bindings, doc)
	c.mu.Unlock()
	if ok {
		b.release()
	}
}

func (b *binding) release() {
	for _, r := range b.regs {
		r.target.RemoveEventListener(r.typ, r.id)
	}
	b.regs = nil
	if b.mouseMoveID != 0 {
		b.doc.RemoveEventListener("mousemove", b.mouseMoveID)
		b.mouseMoveID = 0
	}
}

// reset unbinds every document and forgets every instance
func (c *coordinator) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.bindings {
		b.release()
	}
	c.bindings = make(map[*dom.Document]*binding)
	c.instances = nil
}

// HideAll hides every visible instance in the process except exclude. The
// optional duration overrides each hide transition.
func HideAll(exclude *Instance, duration ...time.Duration) {
	d := durationArg(duration)
	for _, i := range global.live(nil) {
		if i != exclude && i.visible {
			i.hide(d)
		}
	}
}
