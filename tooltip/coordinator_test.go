package tooltip_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tip/tooltip"
)

func TestOutsideClick(t *testing.T) {
	t.Run("hides every visible instance", func(t *testing.T) {
		f := newFixture(t, page)
		a := f.one(t, "#a", instant(nil))
		b := f.one(t, "#b", instant(nil))
		a.Show()
		b.Show()
		require.True(t, a.State().Visible && b.State().Visible)

		f.Doc.Click(f.Query(t, "#outside"))
		assert.False(t, a.State().Visible)
		assert.False(t, b.State().Visible)

		entries := f.Logs.FilterMessage("Outside click").All()
		require.Len(t, entries, 1)
		assert.Equal(t, int64(2), entries[0].ContextMap()["count"])
	})

	t.Run("hideOnClick false keeps hover tooltips", func(t *testing.T) {
		f := newFixture(t, page)
		a := f.one(t, "#a", instant(tooltip.Props{"hideOnClick": false, "trigger": "mouseenter"}))
		a.Show()
		f.Doc.Click(f.Query(t, "#outside"))
		assert.True(t, a.State().Visible)
	})

	t.Run("focus trigger hides regardless", func(t *testing.T) {
		f := newFixture(t, page)
		inst := f.one(t, "#field", instant(tooltip.Props{"hideOnClick": false, "trigger": "focus"}))
		f.Query(t, "#field").Focus()
		require.True(t, inst.State().Visible)

		f.Doc.Click(f.Query(t, "#outside"))
		assert.False(t, inst.State().Visible)
	})

	t.Run("cancels a pending show", func(t *testing.T) {
		f := newFixture(t, page)
		a := f.one(t, "#a", tooltip.Props{"delay": 100, "duration": 0})
		f.Doc.Hover(f.Query(t, "#a"))
		f.Advance(50 * time.Millisecond)
		require.Equal(t, tooltip.PhaseShowing, a.State().Phase)

		f.Doc.Click(f.Query(t, "#outside"))
		assert.Equal(t, tooltip.PhaseHidden, a.State().Phase)
		assert.False(t, a.State().PreparingToShow)

		f.Advance(100 * time.Millisecond)
		assert.False(t, a.State().Visible)
		assert.Zero(t, f.Logs.FilterMessage("Outside click").Len(), "nothing was visible")
	})

	t.Run("click inside the floating element does nothing", func(t *testing.T) {
		f := newFixture(t, page)
		a := f.one(t, "#a", instant(tooltip.Props{"interactive": true}))
		a.Show()
		f.Loop.Drain()
		require.True(t, a.State().Mounted)

		f.Doc.Click(a.Floating())
		assert.True(t, a.State().Visible)
	})
}

func TestReferenceClick(t *testing.T) {
	t.Run("hides its own hover tooltip", func(t *testing.T) {
		f := newFixture(t, page)
		inst := f.one(t, "#a", instant(nil))
		a := f.Query(t, "#a")
		f.Doc.Hover(a)
		require.True(t, inst.State().Visible)

		f.Doc.Click(a)
		assert.False(t, inst.State().Visible)
	})

	t.Run("hideOnClick false keeps it", func(t *testing.T) {
		f := newFixture(t, page)
		inst := f.one(t, "#a", instant(tooltip.Props{"hideOnClick": false}))
		a := f.Query(t, "#a")
		f.Doc.Hover(a)
		f.Doc.Click(a)
		assert.True(t, inst.State().Visible)
	})

	t.Run("hides other non-multiple instances", func(t *testing.T) {
		f := newFixture(t, page)
		a := f.one(t, "#a", instant(nil))
		b := f.one(t, "#b", instant(tooltip.Props{"trigger": "click"}))
		c := f.one(t, "#c", instant(tooltip.Props{"multiple": true}))
		a.Show()
		c.Show()

		f.Doc.Click(f.Query(t, "#b"))
		assert.False(t, a.State().Visible)
		assert.True(t, b.State().Visible, "click trigger toggled it on")
		assert.True(t, c.State().Visible, "multiple instances are left alone")
	})

	t.Run("ignored while using touch", func(t *testing.T) {
		f := newFixture(t, page)
		inst := f.one(t, "#a", instant(nil))
		f.Doc.TouchStart(f.Query(t, "#outside"))
		inst.Show()

		f.Doc.Click(f.Query(t, "#a"))
		assert.True(t, inst.State().Visible)
	})
}

func TestTouchDetection(t *testing.T) {
	t.Run("two quick mousemoves switch back to mouse", func(t *testing.T) {
		f := newFixture(t, page)
		f.one(t, "#a", nil)
		outside := f.Query(t, "#outside")
		body := f.Doc.Body()

		f.Doc.TouchStart(outside)
		assert.True(t, tooltip.UsingTouch(f.Doc))
		assert.True(t, body.ClassList().Contains(tooltip.ClassTouch))

		f.Doc.PointerMove(outside, 10, 610)
		f.Loop.Advance(50 * time.Millisecond)
		f.Doc.PointerMove(outside, 11, 611)
		assert.True(t, tooltip.UsingTouch(f.Doc), "slow moves come from emulated touch")

		f.Loop.Advance(5 * time.Millisecond)
		f.Doc.PointerMove(outside, 12, 612)
		assert.False(t, tooltip.UsingTouch(f.Doc))
		assert.False(t, body.ClassList().Contains(tooltip.ClassTouch))
		assert.Equal(t, 1, f.Logs.FilterMessage("Mouse input detected").Len())
	})

	t.Run("threshold comes from the env", func(t *testing.T) {
		f := newFixture(t, page, func(env *tooltip.Env) {
			env.TouchMoveThreshold = time.Millisecond
		})
		f.one(t, "#a", nil)
		outside := f.Query(t, "#outside")

		f.Doc.TouchStart(outside)
		f.Doc.PointerMove(outside, 10, 610)
		f.Loop.Advance(5 * time.Millisecond)
		f.Doc.PointerMove(outside, 11, 611)
		assert.True(t, tooltip.UsingTouch(f.Doc))
	})

	t.Run("no instances no binding", func(t *testing.T) {
		f := newFixture(t, page)
		f.Doc.TouchStart(f.Query(t, "#outside"))
		assert.False(t, tooltip.UsingTouch(f.Doc))
	})
}

func TestWindowBlurBlursReference(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#field", instant(tooltip.Props{"trigger": "focus"}))
	field := f.Query(t, "#field")
	field.Focus()
	require.True(t, inst.State().Visible)

	f.Doc.BlurWindow()
	assert.Nil(t, f.Doc.ActiveElement())
	assert.False(t, inst.State().Visible)
}

func TestWindowBlurLeavesOtherFocus(t *testing.T) {
	f := newFixture(t, page)
	f.one(t, "#a", instant(nil))
	field := f.Query(t, "#field")
	field.Focus()

	f.Doc.BlurWindow()
	assert.Equal(t, field, f.Doc.ActiveElement())
}

func TestDocumentBoundOnce(t *testing.T) {
	f := newFixture(t, page)
	f.one(t, "#a", nil)
	docListeners := f.Doc.ListenerCount()
	winListeners := f.Doc.Window().ListenerCount()
	assert.Equal(t, 1, f.Logs.FilterMessage("Document bound").Len())

	f.one(t, "#b", nil)
	f.create(t, "#menu", tooltip.Props{"target": ".item"})
	assert.Equal(t, docListeners, f.Doc.ListenerCount())
	assert.Equal(t, winListeners, f.Doc.Window().ListenerCount())
	assert.Equal(t, 1, f.Logs.FilterMessage("Document bound").Len())
}

func TestHideAll(t *testing.T) {
	f := newFixture(t, page)
	a := f.one(t, "#a", instant(nil))
	b := f.one(t, "#b", instant(nil))
	c := f.one(t, "#c", tooltip.Props{"delay": 0, "duration": 300})
	a.Show()
	b.Show()
	c.Show()
	f.Loop.Advance(300 * time.Millisecond)

	tooltip.HideAll(a)
	assert.True(t, a.State().Visible)
	assert.False(t, b.State().Visible)
	assert.False(t, c.State().Visible)
	assert.True(t, c.State().Mounted, "hide transition still running")

	tooltip.HideAll(nil, 0)
	assert.False(t, a.State().Visible)
	assert.False(t, a.State().Mounted)
	assert.True(t, c.State().Mounted, "duration override only applies to new hides")
}
