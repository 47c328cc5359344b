package tooltip

import (
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/internal/util"
	"github.com/teranos/tip/logger"
	"github.com/teranos/tip/pulse"
)

// lastID is shared by every engine in the process
var lastID atomic.Uint64

func nextID() uint64 { return lastID.Add(1) }

// listenerTarget is where an instance registers listeners: its reference, the
// document or an element
type listenerTarget interface {
	AddEventListener(typ string, fn dom.Listener, opts ...dom.ListenerOption) dom.ListenerID
	RemoveEventListener(typ string, id dom.ListenerID) bool
}

type registration struct {
	target listenerTarget
	typ    string
	id     dom.ListenerID
}

// Instance is one reference/floating pair and its visibility state machine.
// All methods must be called on the engine's loop.
type Instance struct {
	id         uint64
	engine     *Engine
	log        *zap.SugaredLogger
	reference  Reference
	virtual    bool
	options    Options
	props      Props
	caller     Props
	collection *Collection

	// delegation
	parent   *Instance
	children map[*dom.Element]*Instance
	order    []*Instance

	floating *dom.Element
	box      *dom.Element
	content  *dom.Element

	destroyed       bool
	enabled         bool
	visible         bool
	mounted         bool
	shown           bool
	preparingToShow bool
	hiding          bool
	phase           Phase

	hadTitle bool

	listeners   []registration
	interactive []registration
	follow      []registration

	showTimer       pulse.Timer
	hideTimer       pulse.Timer
	transitionTimer pulse.Timer
	stickyFrame     pulse.Timer

	handle        PositionHandle
	mountCallback func()
	watches       []func()

	cursor           *dom.Point
	following        bool
	cursorPositioned bool
}

func newInstance(e *Engine, ref Reference, virtual bool, opts Options, props, caller Props, parent *Instance, c *Collection) *Instance {
	i := &Instance{
		id:         nextID(),
		engine:     e,
		reference:  ref,
		virtual:    virtual,
		options:    opts,
		props:      props,
		caller:     caller,
		parent:     parent,
		collection: c,
		enabled:    true,
	}
	i.log = logger.ChildLogger(e.log, logger.FieldInstanceID, i.id)

	i.buildFloating()
	i.moveTitle()
	if opts.A11y && !virtual && parent == nil {
		if el, ok := ElementOf(ref); ok && !el.HasAttribute("tabindex") && opts.Target == "" {
			el.SetAttribute("tabindex", "0")
		}
	}

	if parent == nil {
		i.wireTriggers()
	}
	i.watchContent()
	e.coord.register(i)

	i.log.Debugw("Instance created",
		logger.FieldReference, describeReference(ref),
		logger.FieldTrigger, opts.Trigger.String(),
	)

	if opts.ShowOnInit {
		i.requestShow(nil)
	}
	return i
}

func describeReference(ref Reference) string {
	if el, ok := ElementOf(ref); ok {
		return el.String()
	}
	return "virtual"
}

// buildFloating creates div.tip-floating > div.tip-box > div.tip-content
func (i *Instance) buildFloating() {
	doc := i.engine.env.Document
	i.floating = doc.CreateElement("div")
	i.floating.ClassList().Add(ClassFloating)
	i.floating.SetAttribute("id", "tip-"+strconv.FormatUint(i.id, 10))
	i.floating.SetAttribute("role", "tooltip")
	if i.options.Interactive {
		i.floating.SetAttribute("tabindex", "-1")
	}

	i.box = doc.CreateElement("div")
	i.box.ClassList().Add(ClassBox)
	i.box.SetAttribute(AttrState, "hidden")
	i.box.SetAttribute(AttrPlacement, i.options.Placement)
	if i.options.Interactive {
		i.box.SetAttribute(AttrInteractive, "")
	}

	i.content = doc.CreateElement("div")
	i.content.ClassList().Add(ClassContent)
	i.content.SetAttribute(AttrState, "hidden")

	i.box.AppendChild(i.content)
	i.floating.AppendChild(i.box)
	i.fillContent(i.options.Content)
}

func (i *Instance) fillContent(c Content) {
	if c.Element != nil {
		_ = i.content.SetInnerHTML("")
		i.content.AppendChild(c.Element)
		return
	}
	if err := i.content.SetInnerHTML(c.Text); err != nil {
		i.content.SetTextContent(c.Text)
	}
}

// moveTitle keeps the native title from showing alongside the tooltip
func (i *Instance) moveTitle() {
	title := i.reference.GetAttribute("title")
	if title == "" {
		return
	}
	i.hadTitle = true
	i.reference.SetAttribute(AttrOriginalTitle, title)
	i.reference.RemoveAttribute("title")
}

func (i *Instance) restoreTitle() {
	if !i.hadTitle {
		return
	}
	if t := i.reference.GetAttribute(AttrOriginalTitle); t != "" {
		i.reference.SetAttribute("title", t)
	}
	i.reference.RemoveAttribute(AttrOriginalTitle)
}

// SetContent replaces the content. v is a string, an element or a Content.
func (i *Instance) SetContent(v any) error {
	if i.destroyed {
		return nil
	}
	c, err := contentHook(nil, contentType, v)
	if err != nil {
		return err
	}
	i.options.Content = c.(Content)
	i.fillContent(i.options.Content)
	if i.visible && i.handle != nil {
		i.handle.ScheduleUpdate()
	}
	return nil
}

// watchContent subscribes to title/content attribute changes (dynamicTitle)
// and to mutations inside an element content
func (i *Instance) watchContent() {
	w := i.engine.env.Watcher
	if i.options.DynamicTitle {
		names := []string{"title", AttributeName(OptContent)}
		i.watches = append(i.watches, w.WatchAttribute(i.reference, names, func(name, value string) {
			if i.destroyed || value == "" {
				return
			}
			if name == "title" {
				i.hadTitle = true
				i.reference.SetAttribute(AttrOriginalTitle, value)
				i.reference.RemoveAttribute("title")
			}
			_ = i.SetContent(value)
		}))
	}
	if i.options.Content.Element != nil {
		i.watches = append(i.watches, w.WatchSubtree(i.options.Content.Element, func() {
			if i.visible && i.handle != nil {
				i.handle.ScheduleUpdate()
			}
		}))
	}
}

func (i *Instance) addListener(list *[]registration, target listenerTarget, typ string, fn dom.Listener, opts ...dom.ListenerOption) {
	id := target.AddEventListener(typ, fn, opts...)
	if id == 0 {
		return
	}
	*list = append(*list, registration{target: target, typ: typ, id: id})
}

func removeListeners(list *[]registration) {
	for _, r := range *list {
		r.target.RemoveEventListener(r.typ, r.id)
	}
	*list = nil
}

// requestShow starts the show delay
func (i *Instance) requestShow(ev *dom.Event) {
	if i.destroyed || !i.enabled {
		return
	}
	stopTimer(&i.hideTimer)
	if i.visible || i.showTimer != nil {
		i.notePhase()
		return
	}
	i.preparingToShow = true
	i.startFollowCursor(ev)

	delay := i.options.Delay.At(0)
	if delay <= 0 {
		i.show(nil)
		return
	}
	i.showTimer = i.engine.env.Scheduler.AfterFunc(delay, func() {
		i.showTimer = nil
		i.show(nil)
		i.notePhase()
	})
	i.notePhase()
}

// requestHide starts the hide delay
func (i *Instance) requestHide(ev *dom.Event) {
	if i.destroyed {
		return
	}
	stopTimer(&i.showTimer)
	i.preparingToShow = false
	if !i.enabled {
		i.notePhase()
		return
	}
	if !i.visible {
		i.stopFollowCursor()
		i.notePhase()
		return
	}

	delay := i.options.Delay.At(1)
	stopTimer(&i.hideTimer)
	if delay <= 0 {
		i.hide(nil)
		return
	}
	i.hideTimer = i.engine.env.Scheduler.AfterFunc(delay, func() {
		i.hideTimer = nil
		if i.visible {
			i.hide(nil)
		}
		i.notePhase()
	})
	i.notePhase()
}

func (i *Instance) show(duration *time.Duration) {
	if i.destroyed || !i.enabled {
		return
	}
	if !isConnected(i.reference) {
		i.log.Debugw("Reference detached, destroying")
		i.Destroy()
		return
	}
	if i.reference.HasAttribute("disabled") {
		i.preparingToShow = false
		i.notePhase()
		return
	}
	if i.options.OnShow != nil && !i.options.OnShow(i) {
		i.preparingToShow = false
		i.notePhase()
		return
	}

	stopTimer(&i.showTimer)
	stopTimer(&i.hideTimer)
	i.visible = true
	i.preparingToShow = false
	i.hideSiblings()

	d := i.options.Duration.At(0)
	if duration != nil {
		d = *duration
	}
	i.mountCallback = func() { i.onMounted(d) }
	i.mount()
	i.notePhase()
}

// hideSiblings keeps at most one visible instance per collection when
// hideOnClick is true and multiple is false
func (i *Instance) hideSiblings() {
	c := i.collection
	if c == nil || i.options.Multiple || !i.options.HideOnClick.IsTrue() {
		return
	}
	for _, other := range c.Instances {
		if other != i && other.visible {
			other.hide(nil)
		}
	}
}

func (i *Instance) mount() {
	parent := i.appendTarget()
	if parent != nil && i.floating.Parent() != parent {
		parent.AppendChild(i.floating)
		if !i.mounted {
			i.mounted = true
			if i.options.OnMount != nil {
				i.options.OnMount(i)
			}
		}
	}

	if i.handle == nil {
		i.handle = i.engine.env.Positioner.Create(i.reference, i.floating, PositionConfig{
			Placement: i.options.Placement,
			Distance:  i.options.Distance,
			OnUpdate:  i.onPositionUpdate,
		})
	} else {
		i.handle.ScheduleUpdate()
	}
	if i.following {
		i.handle.DisableEventListeners()
	} else {
		i.handle.EnableEventListeners()
	}
}

func (i *Instance) appendTarget() *dom.Element {
	switch {
	case i.options.AppendTo.Element != nil:
		return i.options.AppendTo.Element
	case i.options.AppendTo.Parent:
		if el, ok := ElementOf(i.reference); ok && el.Parent() != nil {
			return el.Parent()
		}
	}
	return i.engine.env.Document.Body()
}

func (i *Instance) onPositionUpdate(data PositionData) {
	if i.destroyed {
		return
	}
	if data.Placement != "" {
		i.box.SetAttribute(AttrPlacement, data.Placement)
	}
	if i.following {
		i.positionAtCursor()
	}
	if cb := i.mountCallback; cb != nil {
		i.mountCallback = nil
		cb()
	}
}

// onMounted runs after the first placement pass of a show
func (i *Instance) onMounted(d time.Duration) {
	if !i.visible {
		return
	}
	i.setState("visible")
	if i.options.Sticky {
		i.scheduleSticky()
	}
	if i.options.Aria != "" {
		i.reference.SetAttribute("aria-"+i.options.Aria, i.floating.ID())
	}
	if i.options.Interactive {
		i.reference.Classes().Add(ClassActive)
	}
	i.afterTransition(d, func() {
		if !i.visible {
			return
		}
		i.shown = true
		if i.options.OnShown != nil {
			i.options.OnShown(i)
		}
	})
}

// scheduleSticky repositions every frame while visible
func (i *Instance) scheduleSticky() {
	if i.stickyFrame != nil {
		return
	}
	i.stickyFrame = i.engine.env.Scheduler.RequestFrame(func() {
		i.stickyFrame = nil
		if i.destroyed || !i.visible || !i.options.Sticky {
			return
		}
		if i.handle != nil {
			i.handle.ScheduleUpdate()
		}
		i.scheduleSticky()
	})
}

func (i *Instance) hide(duration *time.Duration) {
	if i.destroyed {
		return
	}
	i.hiding = true
	i.notePhase()
	if i.options.OnHide != nil && !i.options.OnHide(i) {
		i.hiding = false
		i.notePhase()
		return
	}

	stopTimer(&i.hideTimer)
	stopTimer(&i.stickyFrame)
	i.visible = false
	i.shown = false
	i.hiding = false
	i.mountCallback = nil
	i.stopInteractive()
	i.setState("hidden")
	if i.options.Interactive {
		i.reference.Classes().Remove(ClassActive)
	}

	d := i.options.Duration.At(1)
	if duration != nil {
		d = *duration
	}
	i.notePhase()
	i.afterTransition(d, func() {
		if i.visible {
			return
		}
		if !i.preparingToShow {
			i.stopFollowCursor()
		}
		if i.handle != nil {
			i.handle.DisableEventListeners()
		}
		i.unmount()
		if i.options.Aria != "" {
			i.reference.RemoveAttribute("aria-" + i.options.Aria)
		}
		if i.options.OnHidden != nil {
			i.options.OnHidden(i)
		}
	})
}

func (i *Instance) unmount() {
	if !i.mounted {
		return
	}
	i.floating.Remove()
	i.mounted = false
}

// afterTransition runs fn once d has elapsed, synchronously for 0. A newer
// transition replaces a pending one.
func (i *Instance) afterTransition(d time.Duration, fn func()) {
	stopTimer(&i.transitionTimer)
	if d <= 0 {
		fn()
		return
	}
	i.transitionTimer = i.engine.env.Scheduler.AfterFunc(d, func() {
		i.transitionTimer = nil
		fn()
	})
}

func (i *Instance) setState(state string) {
	i.box.SetAttribute(AttrState, state)
	i.content.SetAttribute(AttrState, state)
}

func stopTimer(t *pulse.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (i *Instance) computePhase() Phase {
	switch {
	case i.destroyed:
		return PhaseDestroyed
	case i.visible && (i.hideTimer != nil || i.hiding):
		return PhaseHiding
	case i.visible:
		return PhaseVisible
	case i.showTimer != nil:
		return PhaseShowing
	}
	return PhaseHidden
}

// notePhase reports a phase change to the log and the host observer
func (i *Instance) notePhase() {
	next := i.computePhase()
	if next == i.phase {
		return
	}
	prev := i.phase
	i.phase = next
	logger.Transition(i.log, prev.Glyph(), next.Glyph())
	if fn := i.engine.env.OnTransition; fn != nil {
		fn(Transition{Instance: i, From: prev, To: next, At: i.engine.env.Scheduler.Now()})
	}
}

// Destroy releases everything the instance holds. Calling it again does
// nothing.
func (i *Instance) Destroy() {
	if i.destroyed {
		return
	}
	if i.visible {
		i.hide(util.Ptr(time.Duration(0)))
	}

	for _, child := range i.order {
		child.Destroy()
	}
	i.children = nil
	i.order = nil

	removeListeners(&i.listeners)
	removeListeners(&i.interactive)
	removeListeners(&i.follow)
	i.following = false

	i.restoreTitle()
	if i.handle != nil {
		i.handle.Destroy()
		i.handle = nil
	}
	for _, cancel := range i.watches {
		cancel()
	}
	i.watches = nil

	stopTimer(&i.showTimer)
	stopTimer(&i.hideTimer)
	stopTimer(&i.transitionTimer)
	stopTimer(&i.stickyFrame)
	i.mountCallback = nil

	i.engine.coord.unregister(i)

	// onHide may have vetoed the hide above
	i.unmount()
	if i.options.Aria != "" {
		i.reference.RemoveAttribute("aria-" + i.options.Aria)
	}
	i.visible = false
	i.shown = false
	i.preparingToShow = false
	i.destroyed = true
	i.notePhase()
	i.log.Debugw("Instance destroyed")
}

// Enable allows the instance to show again
func (i *Instance) Enable() {
	i.enabled = true
}

// Disable blocks shows and requested hides without changing visibility
func (i *Instance) Disable() {
	i.enabled = false
}

// Show shows immediately. The optional duration overrides the show
// transition.
func (i *Instance) Show(duration ...time.Duration) {
	i.show(durationArg(duration))
}

// Hide hides immediately. The optional duration overrides the hide
// transition.
func (i *Instance) Hide(duration ...time.Duration) {
	if !i.visible {
		return
	}
	i.hide(durationArg(duration))
}

func durationArg(d []time.Duration) *time.Duration {
	if len(d) == 0 {
		return nil
	}
	return util.Ptr(d[0])
}

// ClearDelayTimeouts cancels pending show and hide delays
func (i *Instance) ClearDelayTimeouts() {
	stopTimer(&i.showTimer)
	stopTimer(&i.hideTimer)
	i.notePhase()
}

// State returns a snapshot of the instance's flags
func (i *Instance) State() State {
	return State{
		ID:              i.id,
		Phase:           i.computePhase(),
		Destroyed:       i.destroyed,
		Enabled:         i.enabled,
		Visible:         i.visible,
		Mounted:         i.mounted,
		Shown:           i.shown,
		PreparingToShow: i.preparingToShow,
	}
}

func (i *Instance) ID() uint64             { return i.id }
func (i *Instance) Reference() Reference   { return i.reference }
func (i *Instance) Floating() *dom.Element { return i.floating }
func (i *Instance) Options() Options       { return i.options }
func (i *Instance) IsVirtual() bool        { return i.virtual }

// Props returns the merged props the options were decoded from
func (i *Instance) Props() Props { return i.props.Clone() }

// Collection returns the owning collection, nil for delegate children
func (i *Instance) Collection() *Collection { return i.collection }

// Children returns instances created for delegated targets, oldest first
func (i *Instance) Children() []*Instance {
	out := make([]*Instance, len(i.order))
	copy(out, i.order)
	return out
}

// ListenerCount counts the registrations the instance currently holds
func (i *Instance) ListenerCount() int {
	return len(i.listeners) + len(i.interactive) + len(i.follow)
}
