package tooltip_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/tip/dom"
	tiptest "github.com/teranos/tip/internal/testing"
	"github.com/teranos/tip/pulse"
	"github.com/teranos/tip/tooltip"
)

// page has three buttons in a row, a native title, a delegate menu and an
// area to click outside of
const page = `<!DOCTYPE html><html data-rect="0 0 1024 2000"><body>
<button id="a" class="tip" data-rect="100 100 80 30">A</button>
<button id="b" class="tip" data-rect="300 100 80 30">B</button>
<button id="c" title="Native" data-rect="500 100 80 30">C</button>
<ul id="menu" data-rect="0 300 400 200">
  <li class="item" id="i1" data-rect="0 300 400 40"><span id="i1s" data-rect="10 310 40 20">One</span></li>
  <li class="item" id="i2" data-rect="0 340 400 40">Two</li>
  <li class="plain" id="i3" data-rect="0 380 400 40">Three</li>
</ul>
<div id="outside" data-rect="0 600 200 200">outside</div>
<input id="field" data-rect="600 600 100 20">
</body></html>`

// fakeHandle posts its passes like a real adapter but leaves geometry alone
type fakeHandle struct {
	cfg       tooltip.PositionConfig
	sched     pulse.Scheduler
	updates   int
	scheduled int
	enabled   bool
	destroyed bool
}

func (h *fakeHandle) run() {
	if h.destroyed {
		return
	}
	h.updates++
	if h.cfg.OnUpdate != nil {
		h.cfg.OnUpdate(tooltip.PositionData{Placement: h.cfg.Placement})
	}
}

func (h *fakeHandle) ScheduleUpdate() {
	h.scheduled++
	h.sched.Post(h.run)
}

func (h *fakeHandle) EnableEventListeners()  { h.enabled = true }
func (h *fakeHandle) DisableEventListeners() { h.enabled = false }
func (h *fakeHandle) Destroy()               { h.destroyed = true }
func (h *fakeHandle) Placement() string      { return h.cfg.Placement }

type fakePositioner struct {
	sched   pulse.Scheduler
	handles []*fakeHandle
}

func (p *fakePositioner) Create(_ tooltip.Reference, _ *dom.Element, cfg tooltip.PositionConfig) tooltip.PositionHandle {
	h := &fakeHandle{cfg: cfg, sched: p.sched, enabled: true}
	p.handles = append(p.handles, h)
	p.sched.Post(h.run)
	return h
}

type fixture struct {
	*tiptest.Host
	Engine      *tooltip.Engine
	Pos         *fakePositioner
	Logs        *observer.ObservedLogs
	Transitions []tooltip.Transition
}

func newFixture(t *testing.T, markup string, mods ...func(*tooltip.Env)) *fixture {
	t.Helper()
	tooltip.ResetCoordinator()
	t.Cleanup(tooltip.ResetCoordinator)

	f := &fixture{Host: tiptest.NewHost(t, markup)}
	f.Pos = &fakePositioner{sched: f.Loop}
	core, logs := observer.New(zapcore.DebugLevel)
	f.Logs = logs

	env := tooltip.Env{
		Document:   f.Doc,
		Scheduler:  f.Loop,
		Positioner: f.Pos,
		Logger:     zap.New(core).Sugar(),
		OnTransition: func(tr tooltip.Transition) {
			f.Transitions = append(f.Transitions, tr)
		},
	}
	for _, mod := range mods {
		mod(&env)
	}
	f.Engine = tooltip.New(env)
	return f
}

func (f *fixture) create(t *testing.T, target any, props tooltip.Props) *tooltip.Collection {
	t.Helper()
	c, err := f.Engine.Create(target, props)
	require.NoError(t, err)
	return c
}

func (f *fixture) one(t *testing.T, selector string, props tooltip.Props) *tooltip.Instance {
	t.Helper()
	c := f.create(t, selector, props)
	require.Len(t, c.Instances, 1, selector)
	return c.Instances[0]
}

// phases returns the destination phases observed for inst, in order
func (f *fixture) phases(inst *tooltip.Instance) []tooltip.Phase {
	var out []tooltip.Phase
	for _, tr := range f.Transitions {
		if tr.Instance == inst {
			out = append(out, tr.To)
		}
	}
	return out
}

// instant disables delays and transitions
func instant(p tooltip.Props) tooltip.Props {
	out := tooltip.Props{"delay": 0, "duration": 0}
	for k, v := range p {
		out[k] = v
	}
	return out
}
