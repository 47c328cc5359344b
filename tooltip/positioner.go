package tooltip

import (
	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/pulse"
)

// PositionData describes one completed placement pass
type PositionData struct {
	// Placement actually used, after any flip
	Placement string
	// Rect is the floating element's page-space box
	Rect dom.Rect
}

// PositionConfig configures a position handle
type PositionConfig struct {
	Placement string
	Distance  float64
	// OnUpdate fires once per create/update pass, the first included
	OnUpdate func(PositionData)
}

// Positioner computes and maintains floating element placement
type Positioner interface {
	Create(ref Reference, floating *dom.Element, cfg PositionConfig) PositionHandle
}

// PositionHandle is one reference/floating pair's placement
type PositionHandle interface {
	// ScheduleUpdate runs a pass on the next frame
	ScheduleUpdate()
	// EnableEventListeners repositions on window resize and scroll
	EnableEventListeners()
	DisableEventListeners()
	Destroy()
	Placement() string
}

// postPositioner is used when the host supplies none: it leaves geometry
// alone and reports each pass on the next loop turn.
type postPositioner struct {
	scheduler pulse.Scheduler
}

func (p postPositioner) Create(_ Reference, _ *dom.Element, cfg PositionConfig) PositionHandle {
	h := &postHandle{scheduler: p.scheduler, cfg: cfg}
	h.ScheduleUpdate()
	return h
}

type postHandle struct {
	scheduler pulse.Scheduler
	cfg       PositionConfig
	destroyed bool
}

func (h *postHandle) ScheduleUpdate() {
	h.scheduler.Post(func() {
		if h.destroyed || h.cfg.OnUpdate == nil {
			return
		}
		h.cfg.OnUpdate(PositionData{Placement: h.cfg.Placement})
	})
}

func (h *postHandle) EnableEventListeners()  {}
func (h *postHandle) DisableEventListeners() {}
func (h *postHandle) Destroy()               { h.destroyed = true }
func (h *postHandle) Placement() string      { return h.cfg.Placement }
