package tooltip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/tooltip"
)

func TestCursorOutsideInteractiveBorder(t *testing.T) {
	rect := dom.Rect{Left: 100, Top: 50, Width: 80, Height: 40}
	const border, distance = 2.0, 10.0

	tests := []struct {
		placement string
		x, y      float64
		outside   bool
	}{
		{"", 140, 70, true},
		{"top", 140, 70, false},
		{"top", 140, 40, false},
		{"top", 140, 37, true},
		{"top", 140, 92, false},
		{"top", 140, 93, true},
		{"top-start", 140, 40, false},
		{"bottom", 140, 100, false},
		{"bottom", 140, 103, true},
		{"bottom", 140, 47, true},
		{"left", 90, 70, false},
		{"left", 87, 70, true},
		{"left", 183, 70, true},
		{"right", 192, 70, false},
		{"right", 193, 70, true},
		{"right", 97, 70, true},
	}
	for _, tt := range tests {
		got := tooltip.CursorOutsideInteractiveBorder(tt.placement, rect, tt.x, tt.y, border, distance)
		assert.Equal(t, tt.outside, got, "%s at (%g, %g)", tt.placement, tt.x, tt.y)
	}
}

func TestInteractiveHysteresis(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", instant(tooltip.Props{"interactive": true, "content": "Tip"}))
	a := f.Query(t, "#a")
	body := f.Doc.Body()

	f.Doc.Hover(a)
	f.Loop.Drain()
	require.True(t, inst.State().Visible)
	assert.True(t, a.ClassList().Contains(tooltip.ClassActive))
	// flush above #a, which spans y 100..130
	inst.Floating().SetRect(dom.Rect{Left: 100, Top: 60, Width: 80, Height: 40})
	docListeners := f.Doc.ListenerCount()

	f.Doc.PointerMove(body, 140, 99)
	assert.True(t, inst.State().Visible, "left the reference towards the floating element")
	assert.Equal(t, docListeners+1, f.Doc.ListenerCount())

	f.Doc.PointerMove(inst.Floating(), 140, 80)
	assert.True(t, inst.State().Visible)

	f.Doc.PointerMove(body, 140, 52)
	assert.True(t, inst.State().Visible, "within border plus distance above a top placement")

	f.Doc.PointerMove(body, 140, 40)
	assert.False(t, inst.State().Visible)
	assert.False(t, a.ClassList().Contains(tooltip.ClassActive))
	assert.Equal(t, docListeners, f.Doc.ListenerCount(), "tracking removed")
}

func TestInteractiveHidesWhenLeavingTheBody(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", instant(tooltip.Props{"interactive": true}))
	a := f.Query(t, "#a")

	f.Doc.Hover(a)
	f.Loop.Drain()
	inst.Floating().SetRect(dom.Rect{Left: 100, Top: 60, Width: 80, Height: 40})
	f.Doc.PointerMove(f.Doc.Body(), 140, 99)
	require.True(t, inst.State().Visible)

	f.Doc.PointerMove(nil, 140, 99)
	assert.False(t, inst.State().Visible)
}

func TestInteractiveReturnToReferenceKeepsVisible(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", instant(tooltip.Props{"interactive": true}))
	a := f.Query(t, "#a")

	f.Doc.Hover(a)
	f.Loop.Drain()
	inst.Floating().SetRect(dom.Rect{Left: 100, Top: 60, Width: 80, Height: 40})
	f.Doc.PointerMove(f.Doc.Body(), 140, 99)
	f.Doc.PointerMove(a, 140, 110)
	assert.True(t, inst.State().Visible)
}
