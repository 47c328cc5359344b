package tooltip_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/tooltip"
)

func TestFloatingStructure(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", tooltip.Props{"content": "<b>Bold</b> help", "interactive": true})

	fl := inst.Floating()
	assert.True(t, fl.ClassList().Contains(tooltip.ClassFloating))
	assert.True(t, strings.HasPrefix(fl.ID(), "tip-"))
	assert.Equal(t, "tooltip", fl.GetAttribute("role"))
	assert.Equal(t, "-1", fl.GetAttribute("tabindex"))

	box := fl.FirstElementChild()
	require.NotNil(t, box)
	assert.True(t, box.ClassList().Contains(tooltip.ClassBox))
	assert.Equal(t, "hidden", box.GetAttribute(tooltip.AttrState))
	assert.Equal(t, "top", box.GetAttribute(tooltip.AttrPlacement))
	assert.True(t, box.HasAttribute(tooltip.AttrInteractive))

	content := box.FirstElementChild()
	require.NotNil(t, content)
	assert.True(t, content.ClassList().Contains(tooltip.ClassContent))
	assert.Equal(t, "<b>Bold</b> help", content.InnerHTML())
	assert.False(t, fl.IsConnected(), "not mounted before the first show")
}

func TestElementContentIsMoved(t *testing.T) {
	f := newFixture(t, page)
	panel := f.Doc.CreateElement("div")
	panel.SetTextContent("Panel")

	inst := f.one(t, "#a", tooltip.Props{"content": panel})
	assert.Equal(t, inst.Floating(), panel.Parent().Parent().Parent())
}

func TestA11yAddsTabindex(t *testing.T) {
	f := newFixture(t, page)
	f.one(t, "#a", nil)
	assert.Equal(t, "0", f.Query(t, "#a").GetAttribute("tabindex"))

	f = newFixture(t, page)
	f.one(t, "#a", tooltip.Props{"a11y": false})
	assert.False(t, f.Query(t, "#a").HasAttribute("tabindex"))
}

func TestHoverShowsAfterDelayAndHidesAfterDelay(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", tooltip.Props{"delay": []any{100, 50}, "duration": 0})
	a := f.Query(t, "#a")

	f.Doc.Hover(a)
	assert.Equal(t, tooltip.PhaseShowing, inst.State().Phase)
	assert.True(t, inst.State().PreparingToShow)

	f.Advance(99 * time.Millisecond)
	assert.False(t, inst.State().Visible)

	f.Advance(time.Millisecond)
	assert.Equal(t, tooltip.PhaseVisible, inst.State().Phase)
	assert.True(t, inst.State().Mounted)
	assert.True(t, inst.Floating().IsConnected())
	assert.Equal(t, "visible", inst.Floating().FirstElementChild().GetAttribute(tooltip.AttrState))
	assert.Equal(t, inst.Floating().ID(), a.GetAttribute("aria-describedby"))
	assert.True(t, inst.State().Shown)

	f.Doc.Hover(f.Query(t, "#outside"))
	assert.Equal(t, tooltip.PhaseHiding, inst.State().Phase)
	f.Advance(50 * time.Millisecond)
	assert.Equal(t, tooltip.PhaseHidden, inst.State().Phase)
	assert.False(t, inst.State().Mounted)
	assert.False(t, inst.Floating().IsConnected())
	assert.False(t, a.HasAttribute("aria-describedby"))

	assert.Equal(t, []tooltip.Phase{
		tooltip.PhaseShowing,
		tooltip.PhaseVisible,
		tooltip.PhaseHiding,
		tooltip.PhaseHidden,
	}, f.phases(inst))
}

func TestLeavingBeforeShowDelayCancelsShow(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", tooltip.Props{"delay": 100})

	f.Doc.Hover(f.Query(t, "#a"))
	f.Advance(50 * time.Millisecond)
	f.Doc.Hover(f.Query(t, "#outside"))
	f.Advance(time.Second)

	assert.False(t, inst.State().Visible)
	assert.False(t, inst.State().PreparingToShow)
	assert.Equal(t, tooltip.PhaseHidden, inst.State().Phase)
	assert.Empty(t, f.Pos.handles, "never positioned")
}

func TestReenteringDuringHideDelayKeepsVisible(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", tooltip.Props{"delay": []any{0, 100}, "duration": 0})
	a := f.Query(t, "#a")

	f.Doc.Hover(a)
	f.Loop.Drain()
	require.True(t, inst.State().Visible)

	f.Doc.Hover(f.Query(t, "#outside"))
	f.Advance(60 * time.Millisecond)
	f.Doc.Hover(a)
	assert.Equal(t, tooltip.PhaseVisible, inst.State().Phase)

	f.Advance(time.Second)
	assert.True(t, inst.State().Visible, "hide timer was cancelled, not queued")
}

func TestShownAndHiddenWaitForDurations(t *testing.T) {
	f := newFixture(t, page)
	var events []string
	inst := f.one(t, "#a", tooltip.Props{
		"duration": []any{200, 100},
		"onMount":  func(*tooltip.Instance) { events = append(events, "mount") },
		"onShown":  func(*tooltip.Instance) { events = append(events, "shown") },
		"onHidden": func(*tooltip.Instance) { events = append(events, "hidden") },
	})

	inst.Show()
	assert.Equal(t, []string{"mount"}, events)
	f.Loop.Drain()
	f.Advance(199 * time.Millisecond)
	assert.False(t, inst.State().Shown)
	f.Advance(time.Millisecond)
	assert.True(t, inst.State().Shown)

	inst.Hide()
	assert.True(t, inst.State().Mounted, "still mounted during the hide transition")
	f.Advance(100 * time.Millisecond)
	assert.False(t, inst.State().Mounted)
	assert.Equal(t, []string{"mount", "shown", "hidden"}, events)
}

func TestDurationOverride(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", tooltip.Props{"duration": 500})

	inst.Show(0)
	f.Loop.Drain()
	assert.True(t, inst.State().Shown)

	inst.Hide(0)
	assert.False(t, inst.State().Mounted)
}

func TestFastReshowKeepsFloatingMounted(t *testing.T) {
	f := newFixture(t, page)
	mounts := 0
	inst := f.one(t, "#a", tooltip.Props{"duration": 100, "onMount": func(*tooltip.Instance) { mounts++ }})

	inst.Show()
	f.Loop.Drain()
	inst.Hide()
	f.Advance(50 * time.Millisecond)
	inst.Show()
	f.Advance(time.Second)

	assert.True(t, inst.State().Visible)
	assert.True(t, inst.State().Mounted)
	assert.Equal(t, 1, mounts)
	require.Len(t, f.Pos.handles, 1, "one positioner handle per instance")
	assert.GreaterOrEqual(t, f.Pos.handles[0].scheduled, 1)
}

func TestHooksCanCancel(t *testing.T) {
	f := newFixture(t, page)
	allowShow, allowHide := false, false
	inst := f.one(t, "#a", instant(tooltip.Props{
		"onShow": func(*tooltip.Instance) bool { return allowShow },
		"onHide": func(*tooltip.Instance) bool { return allowHide },
	}))

	inst.Show()
	assert.False(t, inst.State().Visible)

	allowShow = true
	inst.Show()
	f.Loop.Drain()
	assert.True(t, inst.State().Visible)

	inst.Hide()
	assert.True(t, inst.State().Visible, "onHide vetoed")
	allowHide = true
	inst.Hide()
	assert.False(t, inst.State().Visible)
}

func TestHooksWithoutReturnValue(t *testing.T) {
	f := newFixture(t, page)
	called := false
	inst := f.one(t, "#a", instant(tooltip.Props{"onShow": func(*tooltip.Instance) { called = true }}))
	inst.Show()
	assert.True(t, called)
	assert.True(t, inst.State().Visible)
}

func TestDisabledAttributeBlocksShow(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", instant(nil))
	f.Query(t, "#a").SetAttribute("disabled", "")

	f.Doc.Hover(f.Query(t, "#a"))
	assert.False(t, inst.State().Visible)
	assert.False(t, inst.State().Destroyed)
}

func TestEnableDisable(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", instant(nil))
	a := f.Query(t, "#a")

	inst.Disable()
	f.Doc.Hover(a)
	assert.False(t, inst.State().Visible)
	assert.False(t, inst.State().Enabled)

	inst.Enable()
	f.Doc.Hover(f.Query(t, "#outside"))
	f.Doc.Hover(a)
	assert.True(t, inst.State().Visible)

	inst.Disable()
	f.Doc.Hover(f.Query(t, "#outside"))
	assert.True(t, inst.State().Visible, "disabling keeps the current visibility")
}

func TestDetachedReferenceSelfDestructs(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", tooltip.Props{"delay": 50})
	a := f.Query(t, "#a")

	f.Doc.Hover(a)
	a.Remove()
	f.Advance(50 * time.Millisecond)

	st := inst.State()
	assert.True(t, st.Destroyed)
	assert.False(t, st.Visible)
	assert.Equal(t, 0, inst.ListenerCount())
	assert.Equal(t, 0, a.ListenerCount())
}

func TestDestroyReleasesEverything(t *testing.T) {
	f := newFixture(t, page)
	var events []string
	inst := f.one(t, "#c", instant(tooltip.Props{
		"sticky":      true,
		"interactive": true,
		"onHide": func(*tooltip.Instance) bool {
			events = append(events, "hide")
			return true
		},
	}))
	c := f.Query(t, "#c")
	require.Greater(t, inst.ListenerCount(), 0)

	f.Doc.Hover(c)
	f.Loop.Drain()
	require.True(t, inst.State().Visible)
	docListeners := f.Doc.ListenerCount()
	c.Dispatch(&dom.Event{Type: "mouseleave"})
	require.Equal(t, docListeners+1, f.Doc.ListenerCount(), "interactive tracking installed")

	inst.Destroy()
	inst.Destroy()

	st := inst.State()
	assert.True(t, st.Destroyed)
	assert.False(t, st.Visible)
	assert.False(t, st.Mounted)
	assert.Equal(t, []string{"hide"}, events, "hide runs once before destruction")
	assert.Equal(t, 0, inst.ListenerCount())
	assert.Equal(t, 0, c.ListenerCount())
	assert.Equal(t, docListeners, f.Doc.ListenerCount())
	assert.Equal(t, "Native", c.GetAttribute("title"))
	assert.True(t, f.Pos.handles[0].destroyed)
	assert.Equal(t, 0, tooltip.LiveInstances())

	phases := f.phases(inst)
	require.GreaterOrEqual(t, len(phases), 3)
	assert.Equal(t, []tooltip.Phase{tooltip.PhaseHiding, tooltip.PhaseHidden, tooltip.PhaseDestroyed}, phases[len(phases)-3:])

	before := f.Loop.Stats()
	f.Advance(time.Second)
	assert.Equal(t, before.FramesRun, f.Loop.Stats().FramesRun, "sticky frames stopped")

	inst.Show()
	f.Doc.Hover(c)
	assert.False(t, inst.State().Visible, "destroyed instances accept no transitions")
}

func TestStickyReschedulesUntilHidden(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", instant(tooltip.Props{"sticky": true}))

	inst.Show()
	f.Loop.Drain()
	h := f.Pos.handles[0]
	f.Advance(5 * f.Loop.FrameInterval())
	assert.Equal(t, 5, h.scheduled)

	inst.Hide()
	f.Advance(5 * f.Loop.FrameInterval())
	assert.Equal(t, 5, h.scheduled)
}

func TestAppendToParent(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#i1s", instant(tooltip.Props{"appendTo": "parent"}))
	inst.Show()
	assert.Equal(t, f.Query(t, "#i1"), inst.Floating().Parent())
}

func TestIDsIncrease(t *testing.T) {
	f := newFixture(t, page)
	c := f.create(t, "button", nil)
	require.Len(t, c.Instances, 3)
	assert.Less(t, c.Instances[0].ID(), c.Instances[1].ID())
	assert.Less(t, c.Instances[1].ID(), c.Instances[2].ID())

	next := f.one(t, "#field", nil)
	assert.Greater(t, next.ID(), c.Instances[2].ID())
}

func TestVirtualReference(t *testing.T) {
	f := newFixture(t, page)
	rect := dom.Rect{Left: 10, Top: 10, Width: 1, Height: 1}
	c := f.create(t, tooltip.RectFunc(func() dom.Rect { return rect }), instant(tooltip.Props{"content": "Cursor"}))
	require.Len(t, c.Instances, 1)
	inst := c.Instances[0]

	assert.True(t, inst.IsVirtual())
	assert.Equal(t, 0, inst.ListenerCount())
	assert.Equal(t, rect, inst.Reference().BoundingClientRect())

	inst.Show()
	f.Loop.Drain()
	assert.True(t, inst.State().Shown)
	assert.Equal(t, inst.Floating().ID(), inst.Reference().GetAttribute("aria-describedby"))
}

func TestClearDelayTimeouts(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", tooltip.Props{"delay": 100})
	f.Doc.Hover(f.Query(t, "#a"))
	require.Equal(t, tooltip.PhaseShowing, inst.State().Phase)

	inst.ClearDelayTimeouts()
	assert.Equal(t, tooltip.PhaseHidden, inst.State().Phase)
	f.Advance(time.Second)
	assert.False(t, inst.State().Visible)
}

func TestSetContent(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", instant(tooltip.Props{"content": "old"}))
	inst.Show()
	f.Loop.Drain()

	require.NoError(t, inst.SetContent("new"))
	assert.Equal(t, "new", inst.Options().Content.Text)
	assert.Equal(t, "new", inst.Floating().FirstElementChild().FirstElementChild().TextContent())
	assert.Error(t, inst.SetContent(struct{}{}))
}

func TestTransitionsAreLogged(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", instant(nil))
	inst.Show()

	entries := f.Logs.FilterMessage("Phase change").All()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1].ContextMap()
	assert.Equal(t, "visible", last["to"])
	assert.Equal(t, inst.ID(), last["instance_id"])
}

func TestCollectionKeepsOneVisible(t *testing.T) {
	t.Run("show", func(t *testing.T) {
		f := newFixture(t, page)
		c := f.create(t, ".tip", instant(tooltip.Props{"trigger": "manual"}))
		require.Len(t, c.Instances, 2)

		c.Instances[0].Show()
		f.Settle()
		require.True(t, c.Instances[0].State().Visible)

		c.Instances[1].Show()
		f.Settle()
		assert.False(t, c.Instances[0].State().Visible)
		assert.Equal(t, tooltip.PhaseHidden, c.Instances[0].State().Phase)
		assert.True(t, c.Instances[1].State().Visible)
	})

	t.Run("focus", func(t *testing.T) {
		f := newFixture(t, page)
		c := f.create(t, ".tip", instant(tooltip.Props{"trigger": "focus"}))

		f.Query(t, "#a").Focus()
		f.Settle()
		require.True(t, c.Instances[0].State().Visible)

		c.Instances[1].Show()
		f.Settle()
		assert.False(t, c.Instances[0].State().Visible)
		assert.True(t, c.Instances[1].State().Visible)
	})

	tests := []struct {
		name  string
		props tooltip.Props
	}{
		{"multiple", tooltip.Props{"multiple": true}},
		{"hideOnClick false", tooltip.Props{"hideOnClick": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, page)
			props := instant(tt.props)
			props["trigger"] = "manual"
			c := f.create(t, ".tip", props)

			c.Instances[0].Show()
			c.Instances[1].Show()
			f.Settle()
			assert.True(t, c.Instances[0].State().Visible)
			assert.True(t, c.Instances[1].State().Visible)
		})
	}
}
