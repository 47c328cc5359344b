package tooltip

import (
	"reflect"
	"time"

	"dario.cat/mergo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/errors"
	"github.com/teranos/tip/logger"
	"github.com/teranos/tip/pulse"
	"github.com/teranos/tip/sym"
)

// Env is the host an engine runs against
type Env struct {
	// Document hosts references and floating elements. Default: an empty
	// document.
	Document *dom.Document
	// Scheduler runs every timer, frame and mutation callback. Default: a
	// manual loop the host must drive.
	Scheduler pulse.Scheduler
	// Positioner places floating elements. Default: reports each pass on the
	// next loop turn and leaves geometry alone.
	Positioner Positioner
	// Watcher delivers content changes. Default: dom mutation observers.
	Watcher ContentWatcher
	Logger  *zap.SugaredLogger

	TouchMoveThreshold time.Duration
	// OnTransition observes every instance phase change
	OnTransition func(Transition)
}

func defaultEnv() Env {
	return Env{TouchMoveThreshold: DefaultTouchMoveThreshold}
}

// Engine creates tooltips on one document
type Engine struct {
	env      Env
	log      *zap.SugaredLogger
	defaults Props
	coord    *coordinator
}

// New returns an engine bound to env, filling unset fields with defaults
func New(env Env) *Engine {
	log := logger.WithSymbol(logger.OrNop(env.Logger), sym.Engine)
	if err := mergo.Merge(&env, defaultEnv()); err != nil {
		log.Warnw("Env defaults not applied", logger.FieldError, err)
	}
	if env.Document == nil {
		env.Document = dom.NewDocument()
	}
	if env.Scheduler == nil {
		env.Scheduler = pulse.NewManualLoop(pulse.DefaultLoopConfig())
	}
	if env.Positioner == nil {
		env.Positioner = postPositioner{scheduler: env.Scheduler}
	}
	if env.Watcher == nil {
		env.Watcher = domWatcher{}
	}
	env.Document.SetMutationScheduler(env.Scheduler.Post)

	return &Engine{
		env:      env,
		log:      log,
		defaults: Props{},
		coord:    global,
	}
}

// Env returns the engine's host, defaults applied
func (e *Engine) Env() Env { return e.env }

// Document returns the engine's document
func (e *Engine) Document() *dom.Document { return e.env.Document }

// SetDefaults replaces the engine defaults layered between the built-in
// defaults and per-reference attributes. Keys are matched case-insensitively.
func (e *Engine) SetDefaults(p Props) error {
	canon, err := canonicalProps(p)
	if err != nil {
		return errors.Wrap(err, "engine defaults")
	}
	if _, err := Resolve(canon); err != nil {
		return errors.Wrap(err, "engine defaults")
	}
	e.defaults = canon
	e.log.Debugw("Defaults set", logger.FieldCount, len(canon))
	return nil
}

// Defaults returns a copy of the engine defaults
func (e *Engine) Defaults() Props { return e.defaults.Clone() }

// Create builds one instance per reference the target resolves to. Every
// reference is resolved before any instance is built, so an option error
// leaves no instances behind. A selector that matches nothing yields an empty
// collection.
func (e *Engine) Create(target any, props Props) (*Collection, error) {
	return e.create(target, props, false)
}

// CreateOne creates a tooltip on the first reference the target resolves to
func (e *Engine) CreateOne(target any, props Props) (*Instance, error) {
	c, err := e.create(target, props, true)
	if err != nil {
		return nil, err
	}
	if len(c.Instances) == 0 {
		return nil, errors.NewNotFoundError("no reference for %v accepts a tooltip", target)
	}
	return c.Instances[0], nil
}

func (e *Engine) create(target any, props Props, one bool) (*Collection, error) {
	if props == nil {
		props = Props{}
	}
	if err := ValidateProps(props); err != nil {
		return nil, err
	}
	refs, virtual, err := resolveTargets(e.env.Document, target)
	if err != nil {
		return nil, err
	}
	if one && len(refs) > 1 {
		refs = refs[:1]
	}

	type planned struct {
		ref    Reference
		opts   Options
		merged Props
	}
	plan := make([]planned, 0, len(refs))
	for _, ref := range refs {
		opts, merged, err := resolveReference(ref, e.defaults, props)
		if err != nil {
			return nil, errors.Wrapf(err, "options for %s", describeReference(ref))
		}
		if !opts.Multiple && e.hasInstance(ref) {
			e.log.Debugw("Reference already has a tooltip", logger.FieldReference, describeReference(ref))
			continue
		}
		plan = append(plan, planned{ref: ref, opts: opts, merged: merged})
	}

	c := &Collection{
		ID:     uuid.New(),
		Target: target,
		Props:  props.Clone(),
	}
	if len(plan) == 0 {
		e.log.Debugw("Target matched nothing", logger.FieldCollectionID, c.ID.String())
		return c, nil
	}

	e.coord.bind(e.env, e.log)
	for _, p := range plan {
		i := newInstance(e, p.ref, virtual, p.opts, p.merged, props, nil, c)
		c.References = append(c.References, p.ref)
		c.Instances = append(c.Instances, i)
	}
	e.log.Debugw("Collection created",
		logger.FieldCollectionID, c.ID.String(),
		logger.FieldCount, len(c.Instances),
	)
	return c, nil
}

// createDelegateChild builds the instance for an element matched under a
// delegate container. It inherits the container's caller props with target
// cleared and shows at once.
func (e *Engine) createDelegateChild(parent *Instance, el *dom.Element) (*Instance, error) {
	caller := parent.caller.Clone()
	caller[OptTarget] = ""
	caller[OptShowOnInit] = true
	ref := ElementReference{el}
	opts, merged, err := resolveReference(ref, e.defaults, caller)
	if err != nil {
		return nil, err
	}
	if parent.children == nil {
		parent.children = make(map[*dom.Element]*Instance)
	}
	live := parent.order[:0]
	for _, child := range parent.order {
		if !child.destroyed {
			live = append(live, child)
		}
	}
	parent.order = live

	child := newInstance(e, ref, false, opts, merged, caller, parent, nil)
	parent.children[el] = child
	parent.order = append(parent.order, child)
	return child, nil
}

// Close destroys every instance on the engine's document and removes the
// document-wide listeners. The engine can create again afterwards.
func (e *Engine) Close() {
	live := e.coord.live(e.env.Document)
	for _, i := range live {
		i.Destroy()
	}
	e.coord.unbind(e.env.Document)
	e.log.Debugw("Engine closed", logger.FieldCount, len(live))
}

// Live counts the instances alive on the engine's document
func (e *Engine) Live() int { return len(e.coord.live(e.env.Document)) }

// hasInstance reports a live top-level instance on ref
func (e *Engine) hasInstance(ref Reference) bool {
	for _, i := range e.coord.live(e.env.Document) {
		if i.parent == nil && !i.destroyed && sameReference(i.reference, ref) {
			return true
		}
	}
	return false
}

func sameReference(a, b Reference) bool {
	ea, okA := ElementOf(a)
	eb, okB := ElementOf(b)
	if okA || okB {
		return okA && okB && ea == eb
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	return ta == tb && ta != nil && ta.Comparable() && a == b
}
