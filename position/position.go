// Package position places floating elements next to their references using
// dom geometry. Passes run on pulse frames; the first pass of a handle is
// posted so it runs after the caller has mounted the floating element.
package position

import (
	"strconv"
	"strings"

	"dario.cat/mergo"
	"go.uber.org/zap"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/internal/util"
	"github.com/teranos/tip/logger"
	"github.com/teranos/tip/pulse"
	"github.com/teranos/tip/sym"
	"github.com/teranos/tip/tooltip"
)

// Config tunes placement
type Config struct {
	// Padding keeps floating elements this far inside the viewport
	Padding float64
	// NoFlip keeps the requested side even when it overflows
	NoFlip bool
	Logger *zap.SugaredLogger
}

// DefaultConfig returns the defaults New fills in
func DefaultConfig() Config {
	return Config{Padding: 5}
}

// Positioner implements tooltip.Positioner
type Positioner struct {
	doc       *dom.Document
	scheduler pulse.Scheduler
	cfg       Config
	log       *zap.SugaredLogger
}

// New returns a positioner for doc. Zero fields of cfg take their defaults.
func New(doc *dom.Document, scheduler pulse.Scheduler, cfg ...Config) *Positioner {
	var c Config
	if len(cfg) > 0 {
		c = cfg[0]
	}
	log := logger.WithSymbol(logger.OrNop(c.Logger), sym.Positioner)
	if err := mergo.Merge(&c, DefaultConfig()); err != nil {
		log.Warnw("Position defaults not applied", logger.FieldError, err)
	}
	return &Positioner{doc: doc, scheduler: scheduler, cfg: c, log: log}
}

// Create starts positioning floating against ref
func (p *Positioner) Create(ref tooltip.Reference, floating *dom.Element, cfg tooltip.PositionConfig) tooltip.PositionHandle {
	h := &Handle{
		p:         p,
		ref:       ref,
		floating:  floating,
		cfg:       cfg,
		placement: cfg.Placement,
	}
	h.EnableEventListeners()
	p.scheduler.Post(h.update)
	return h
}

type registration struct {
	typ string
	id  dom.ListenerID
}

// Handle is one reference/floating pair
type Handle struct {
	p         *Positioner
	ref       tooltip.Reference
	floating  *dom.Element
	cfg       tooltip.PositionConfig
	placement string
	frame     pulse.Timer
	regs      []registration
	destroyed bool
	passes    int
}

// ScheduleUpdate runs a pass on the next frame. Requests within one frame
// coalesce.
func (h *Handle) ScheduleUpdate() {
	if h.destroyed || h.frame != nil {
		return
	}
	h.frame = h.p.scheduler.RequestFrame(func() {
		h.frame = nil
		h.update()
	})
}

// EnableEventListeners repositions on window resize and scroll
func (h *Handle) EnableEventListeners() {
	if h.destroyed || len(h.regs) > 0 {
		return
	}
	win := h.p.doc.Window()
	for _, typ := range []string{"resize", "scroll"} {
		id := win.AddEventListener(typ, func(*dom.Event) { h.ScheduleUpdate() })
		h.regs = append(h.regs, registration{typ: typ, id: id})
	}
}

// DisableEventListeners stops repositioning on window events
func (h *Handle) DisableEventListeners() {
	win := h.p.doc.Window()
	for _, r := range h.regs {
		win.RemoveEventListener(r.typ, r.id)
	}
	h.regs = nil
}

// Destroy cancels pending passes and listeners
func (h *Handle) Destroy() {
	h.DisableEventListeners()
	if h.frame != nil {
		h.frame.Stop()
		h.frame = nil
	}
	h.destroyed = true
}

// Placement is the side used by the last pass
func (h *Handle) Placement() string { return h.placement }

// Passes counts completed passes
func (h *Handle) Passes() int { return h.passes }

// ListenerCount counts window registrations
func (h *Handle) ListenerCount() int { return len(h.regs) }

func (h *Handle) update() {
	if h.destroyed {
		return
	}
	doc := h.p.doc
	scroll := doc.Scroll()
	placement, rect := Compute(Input{
		Placement: h.cfg.Placement,
		Reference: h.ref.BoundingClientRect(),
		Size:      h.floating.Size(),
		Distance:  h.cfg.Distance,
		Viewport:  doc.Viewport(),
		Padding:   h.p.cfg.Padding,
		Flip:      !h.p.cfg.NoFlip,
	})
	page := towardReference(placement, rect, h.cfg.Distance).Translate(scroll.X, scroll.Y)
	h.floating.SetPosition(page.Left, page.Top)
	h.floating.SetAttribute(tooltip.AttrPlacement, placement)
	if box := h.floating.FirstElementChild(); box != nil {
		box.SetAttribute("style", OffsetStyle(placement, h.cfg.Distance))
	}
	if placement != h.placement {
		h.p.log.Debugw("Flipped", logger.FieldFrom, h.placement, logger.FieldTo, placement)
	}
	h.placement = placement
	h.passes++
	if h.cfg.OnUpdate != nil {
		h.cfg.OnUpdate(tooltip.PositionData{Placement: placement, Rect: page})
	}
}

// towardReference moves the visual box back against the reference. The
// floating element sits flush with the reference; its box carries the
// distance as a transform.
func towardReference(placement string, r dom.Rect, distance float64) dom.Rect {
	switch side, _, _ := strings.Cut(placement, "-"); side {
	case "top":
		r.Top += distance
	case "bottom":
		r.Top -= distance
	case "left":
		r.Left += distance
	default:
		r.Left -= distance
	}
	return r
}

// OffsetStyle is the box transform that shows distance on the placement side
func OffsetStyle(placement string, distance float64) string {
	side, _, _ := strings.Cut(placement, "-")
	axis := "Y"
	if side == "left" || side == "right" {
		axis = "X"
	}
	if side == "top" || side == "left" {
		distance = -distance
	}
	return "transform: translate" + axis + "(" + strconv.FormatFloat(distance, 'f', -1, 64) + "px)"
}

// Input is one placement problem in client coordinates
type Input struct {
	Placement string
	Reference dom.Rect
	Size      dom.Size
	Distance  float64
	// Viewport of zero size disables flipping and clamping
	Viewport dom.Size
	Padding  float64
	Flip     bool
}

// Compute places the visual box next to the reference, distance included. It flips to the opposite side
// when the requested side overflows the padded viewport and the opposite one
// does not, then shifts along the edge to stay inside.
func Compute(in Input) (string, dom.Rect) {
	side, variation, _ := strings.Cut(in.Placement, "-")
	rect := place(side, variation, in)
	if in.Viewport.Width <= 0 || in.Viewport.Height <= 0 {
		return in.Placement, rect
	}

	if in.Flip && overflows(side, rect, in) {
		opp := opposite(side)
		if alt := place(opp, variation, in); !overflows(opp, alt, in) {
			side, rect = opp, alt
		}
	}

	switch side {
	case "top", "bottom":
		rect.Left = util.Clamp(rect.Left, in.Padding, in.Viewport.Width-in.Padding-rect.Width)
	default:
		rect.Top = util.Clamp(rect.Top, in.Padding, in.Viewport.Height-in.Padding-rect.Height)
	}

	if variation != "" {
		return side + "-" + variation, rect
	}
	return side, rect
}

func place(side, variation string, in Input) dom.Rect {
	ref, w, h := in.Reference, in.Size.Width, in.Size.Height
	r := dom.Rect{Width: w, Height: h}
	switch side {
	case "bottom", "top":
		switch variation {
		case "start":
			r.Left = ref.Left
		case "end":
			r.Left = ref.Right() - w
		default:
			r.Left = ref.Left + ref.Width/2 - w/2
		}
		if side == "top" {
			r.Top = ref.Top - h - in.Distance
		} else {
			r.Top = ref.Bottom() + in.Distance
		}
	default:
		switch variation {
		case "start":
			r.Top = ref.Top
		case "end":
			r.Top = ref.Bottom() - h
		default:
			r.Top = ref.Top + ref.Height/2 - h/2
		}
		if side == "left" {
			r.Left = ref.Left - w - in.Distance
		} else {
			r.Left = ref.Right() + in.Distance
		}
	}
	return r
}

func overflows(side string, r dom.Rect, in Input) bool {
	switch side {
	case "top":
		return r.Top < in.Padding
	case "bottom":
		return r.Bottom() > in.Viewport.Height-in.Padding
	case "left":
		return r.Left < in.Padding
	}
	return r.Right() > in.Viewport.Width-in.Padding
}

func opposite(side string) string {
	switch side {
	case "top":
		return "bottom"
	case "bottom":
		return "top"
	case "left":
		return "right"
	}
	return "left"
}
