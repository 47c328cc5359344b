package scenario

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/tip/am"
	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/errors"
	"github.com/teranos/tip/logger"
	"github.com/teranos/tip/position"
	"github.com/teranos/tip/pulse"
	"github.com/teranos/tip/tooltip"
)

// Options configures a replay
type Options struct {
	// Config supplies engine defaults and loop tuning. Nil uses built-in defaults.
	Config *am.Config
	// Realtime runs the loop against the wall clock instead of virtual time
	Realtime bool
	Logger   *zap.SugaredLogger
}

// Row is one recorded phase change
type Row struct {
	// AtMS is milliseconds since the replay started
	AtMS      int64         `json:"at_ms"`
	Step      int           `json:"step"`
	Instance  uint64        `json:"instance"`
	Reference string        `json:"reference"`
	From      tooltip.Phase `json:"from"`
	To        tooltip.Phase `json:"to"`
}

// StateRow is the snapshot taken by a state step
type StateRow struct {
	Step      int           `json:"step"`
	Instance  uint64        `json:"instance"`
	Reference string        `json:"reference"`
	Phase     tooltip.Phase `json:"phase"`
	Enabled   bool          `json:"enabled"`
	Mounted   bool          `json:"mounted"`
	Placement string        `json:"placement,omitempty"`
	Content   string        `json:"content,omitempty"`
}

// Result is everything a replay observed
type Result struct {
	Name        string     `json:"name"`
	Instances   int        `json:"instances"`
	Steps       int        `json:"steps"`
	ElapsedMS   int64      `json:"elapsed_ms"`
	Transitions []Row      `json:"transitions"`
	States      []StateRow `json:"states"`
}

// player holds one replay's host and engine. Everything after setup runs on
// the loop.
type player struct {
	s      *Scenario
	log    *zap.SugaredLogger
	doc    *dom.Document
	loop   *pulse.Loop
	engine *tooltip.Engine
	start  time.Time
	step   int
	closed bool

	collections []*tooltip.Collection
	result      Result
}

// Play replays s and returns what it observed. A step error stops the replay.
func Play(ctx context.Context, s *Scenario, opts Options) (*Result, error) {
	p, err := newPlayer(s, opts)
	if err != nil {
		return nil, err
	}
	return p.play(ctx, opts.Realtime)
}

func (p *player) play(ctx context.Context, realtime bool) (*Result, error) {
	var err error
	if realtime {
		err = p.runRealtime(ctx)
	} else {
		err = p.runManual(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &p.result, nil
}

func newPlayer(s *Scenario, opts Options) (*player, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &am.Config{}
	}
	log := logger.OrNop(opts.Logger).With(logger.FieldComponent, "scenario")

	doc, err := dom.ParseString(s.Markup)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse markup"), errors.ErrConfiguration)
	}
	if len(s.Viewport) == 2 {
		doc.SetViewport(dom.Size{Width: s.Viewport[0], Height: s.Viewport[1]})
	}

	loopCfg := pulse.DefaultLoopConfig()
	loopCfg.FrameInterval = cfg.FrameInterval()
	loopCfg.Logger = log
	var loop *pulse.Loop
	if opts.Realtime {
		loop = pulse.NewLoop(loopCfg)
	} else {
		loop = pulse.NewManualLoop(loopCfg)
	}

	p := &player{
		s:      s,
		log:    log,
		doc:    doc,
		loop:   loop,
		start:  loop.Now(),
		result: Result{Name: s.Title(), Steps: len(s.Steps)},
	}
	p.engine = tooltip.New(tooltip.Env{
		Document:           doc,
		Scheduler:          loop,
		Positioner:         position.New(doc, loop, position.Config{Logger: log}),
		Logger:             log,
		TouchMoveThreshold: cfg.TouchMoveThreshold(),
		OnTransition:       p.record,
	})

	defaults := tooltip.Props{}
	for k, v := range cfg.Tooltip.Defaults {
		defaults[k] = v
	}
	for k, v := range s.Defaults {
		defaults[k] = v
	}
	if err := p.engine.SetDefaults(defaults); err != nil {
		return nil, err
	}
	return p, nil
}

// create builds the scenario's tooltips; runs on the loop
func (p *player) create() error {
	for n, ts := range p.s.Tooltips {
		c, err := p.engine.Create(ts.Target, tooltip.Props(ts.Props))
		if err != nil {
			p.close()
			return errors.Wrapf(err, "tooltip %d (%s)", n+1, ts.Target)
		}
		p.collections = append(p.collections, c)
		p.result.Instances += len(c.Instances)
	}
	p.log.Debugw("Scenario ready",
		logger.FieldCount, p.result.Instances,
		"steps", len(p.s.Steps))
	return nil
}

func (p *player) runManual(ctx context.Context) error {
	if err := p.create(); err != nil {
		return err
	}
	defer p.close()
	p.loop.Drain()

	for _, step := range p.s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.step = step.Index
		if step.Op == "wait" {
			p.loop.Advance(step.Wait)
			continue
		}
		if err := p.exec(step); err != nil {
			return err
		}
		p.loop.Drain()
	}
	p.result.ElapsedMS = p.loop.Now().Sub(p.start).Milliseconds()
	return nil
}

func (p *player) runRealtime(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- p.loop.Run(runCtx) }()
	defer func() {
		cancel()
		<-done
	}()

	if err := p.onLoop(ctx, p.create); err != nil {
		return err
	}
	defer p.onLoop(context.Background(), func() error {
		p.close()
		return nil
	})

	for _, step := range p.s.Steps {
		step := step
		if step.Op == "wait" {
			if err := p.onLoop(ctx, func() error { p.step = step.Index; return nil }); err != nil {
				return err
			}
			select {
			case <-time.After(step.Wait):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		err := p.onLoop(ctx, func() error {
			p.step = step.Index
			return p.exec(step)
		})
		if err != nil {
			return err
		}
	}
	return p.onLoop(ctx, func() error {
		p.result.ElapsedMS = p.loop.Now().Sub(p.start).Milliseconds()
		return nil
	})
}

// onLoop runs fn on the loop goroutine and waits for it
func (p *player) onLoop(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	p.loop.Post(func() { result <- fn() })
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close tears the engine down without recording the destroys
func (p *player) close() {
	p.closed = true
	p.engine.Close()
}

func (p *player) record(tr tooltip.Transition) {
	if p.closed {
		return
	}
	p.result.Transitions = append(p.result.Transitions, Row{
		AtMS:      tr.At.Sub(p.start).Milliseconds(),
		Step:      p.step,
		Instance:  tr.Instance.ID(),
		Reference: Label(tr.Instance.Reference()),
		From:      tr.From,
		To:        tr.To,
	})
}

func (p *player) exec(step Step) error {
	var el *dom.Element
	if step.Selector != "" {
		var err error
		el, err = p.doc.QuerySelector(step.Selector)
		if err != nil {
			return errors.Wrapf(err, "step %d", step.Index)
		}
		if el == nil {
			return errors.NewNotFoundError("step %d: no element matches %q", step.Index, step.Selector)
		}
	}

	switch step.Op {
	case "mouseenter":
		p.doc.Hover(el)
	case "mouseleave":
		p.doc.PointerMove(p.doc.Body(), 0, 0)
	case "mousemove":
		p.doc.MoveTo(step.X, step.Y)
	case "click":
		p.doc.Click(el)
	case "focus":
		el.Focus()
	case "blur":
		if active := p.doc.ActiveElement(); active != nil {
			active.Blur()
		}
	case "touchstart":
		p.doc.TouchStart(el)
	case "attr":
		el.SetAttribute(step.Args[1], step.Args[2])
	case "detach":
		el.Remove()
	case "show", "hide", "destroy", "state":
		instances := p.instancesOn(el)
		if len(instances) == 0 {
			return errors.NewNotFoundError("step %d: no tooltip on %q", step.Index, step.Selector)
		}
		for _, inst := range instances {
			p.control(step, inst)
		}
	default:
		return errors.AssertionFailedf("step %d: unhandled op %q", step.Index, step.Op)
	}
	return nil
}

func (p *player) control(step Step, inst *tooltip.Instance) {
	switch step.Op {
	case "show":
		inst.Show()
	case "hide":
		inst.Hide()
	case "destroy":
		inst.Destroy()
	case "state":
		st := inst.State()
		row := StateRow{
			Step:      step.Index,
			Instance:  st.ID,
			Reference: Label(inst.Reference()),
			Phase:     st.Phase,
			Enabled:   st.Enabled,
			Mounted:   st.Mounted,
		}
		if st.Mounted {
			row.Placement = inst.Floating().FirstElementChild().GetAttribute(tooltip.AttrPlacement)
			row.Content = inst.Floating().TextContent()
		}
		p.result.States = append(p.result.States, row)
	}
}

// instancesOn returns the live instances whose reference is el, delegate
// children included
func (p *player) instancesOn(el *dom.Element) []*tooltip.Instance {
	var out []*tooltip.Instance
	var visit func(inst *tooltip.Instance)
	visit = func(inst *tooltip.Instance) {
		if ref, ok := tooltip.ElementOf(inst.Reference()); ok && ref == el && !inst.State().Destroyed {
			out = append(out, inst)
		}
		for _, child := range inst.Children() {
			visit(child)
		}
	}
	for _, c := range p.collections {
		for _, inst := range c.Instances {
			visit(inst)
		}
	}
	return out
}

// Label names a reference for output: #id when it has one
func Label(ref tooltip.Reference) string {
	el, ok := tooltip.ElementOf(ref)
	if !ok {
		return "(virtual)"
	}
	if id := el.ID(); id != "" {
		return "#" + id
	}
	return el.String()
}
