package tooltip_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/errors"
	"github.com/teranos/tip/tooltip"
)

func TestNewFillsEnvDefaults(t *testing.T) {
	tooltip.ResetCoordinator()
	t.Cleanup(tooltip.ResetCoordinator)

	e := tooltip.New(tooltip.Env{})
	env := e.Env()
	assert.NotNil(t, env.Document)
	assert.NotNil(t, env.Scheduler)
	assert.NotNil(t, env.Positioner)
	assert.NotNil(t, env.Watcher)
	assert.Equal(t, tooltip.DefaultTouchMoveThreshold, env.TouchMoveThreshold)
	assert.Same(t, env.Document, e.Document())

	e = tooltip.New(tooltip.Env{TouchMoveThreshold: time.Second})
	assert.Equal(t, time.Second, e.Env().TouchMoveThreshold)
}

func TestCreateTargets(t *testing.T) {
	t.Run("selector matching nothing", func(t *testing.T) {
		f := newFixture(t, page)
		c := f.create(t, ".missing", nil)
		assert.Empty(t, c.Instances)
		assert.Equal(t, 0, tooltip.LiveInstances())
		assert.Equal(t, 1, f.Logs.FilterMessage("Target matched nothing").Len())
	})

	t.Run("selector matching several", func(t *testing.T) {
		f := newFixture(t, page)
		c := f.create(t, ".tip", nil)
		require.Len(t, c.Instances, 2)
		require.Len(t, c.References, 2)
		for n, inst := range c.Instances {
			assert.Equal(t, c.References[n], inst.Reference())
			assert.Same(t, c, inst.Collection())
		}
		assert.Equal(t, ".tip", c.Target)
	})

	t.Run("element and element list", func(t *testing.T) {
		f := newFixture(t, page)
		c := f.create(t, f.Query(t, "#a"), nil)
		assert.Len(t, c.Instances, 1)
		c = f.create(t, []*dom.Element{f.Query(t, "#b"), f.Query(t, "#c")}, nil)
		assert.Len(t, c.Instances, 2)
	})

	t.Run("invalid selector", func(t *testing.T) {
		f := newFixture(t, page)
		_, err := f.Engine.Create("##", nil)
		require.Error(t, err)
		assert.True(t, errors.IsInvalidTargetError(err))
	})

	t.Run("unsupported target", func(t *testing.T) {
		f := newFixture(t, page)
		_, err := f.Engine.Create(42, nil)
		assert.True(t, errors.IsInvalidTargetError(err))
		_, err = f.Engine.Create(nil, nil)
		assert.True(t, errors.IsInvalidTargetError(err))
	})

	t.Run("unknown option leaves nothing behind", func(t *testing.T) {
		f := newFixture(t, page)
		_, err := f.Engine.Create(".tip", tooltip.Props{"placment": "top"})
		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
		assert.Equal(t, 0, tooltip.LiveInstances())
		assert.False(t, f.Query(t, "#a").HasAttribute("tabindex"))
	})
}

func TestExistingReferenceIsSkipped(t *testing.T) {
	f := newFixture(t, page)
	first := f.create(t, "#a", nil)
	require.Len(t, first.Instances, 1)

	again := f.create(t, ".tip", nil)
	require.Len(t, again.Instances, 1, "#a already has one")
	assert.Equal(t, "b", again.Instances[0].Reference().(tooltip.ElementReference).ID())

	more := f.create(t, "#a", tooltip.Props{"multiple": true})
	assert.Len(t, more.Instances, 1)
	assert.Equal(t, 3, tooltip.LiveInstances())

	first.DestroyAll()
	reborn := f.create(t, "#a", nil)
	assert.Len(t, reborn.Instances, 0, "the multiple instance still lives on #a")
}

func TestCollectionIDsAreUnique(t *testing.T) {
	f := newFixture(t, page)
	a := f.create(t, "#a", nil)
	b := f.create(t, "#b", nil)
	empty := f.create(t, ".missing", nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, b.ID, empty.ID)
}

func TestCreateOne(t *testing.T) {
	f := newFixture(t, page)
	inst, err := f.Engine.CreateOne("li", nil)
	require.NoError(t, err)
	assert.Equal(t, "i1", inst.Reference().(tooltip.ElementReference).ID())
	assert.Equal(t, 1, tooltip.LiveInstances())

	_, err = f.Engine.CreateOne(".missing", nil)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDestroyAll(t *testing.T) {
	f := newFixture(t, page)
	c := f.create(t, ".tip", instant(nil))
	c.Instances[0].Show()
	require.Len(t, c.Visible(), 1)

	c.DestroyAll()
	assert.Empty(t, c.Visible())
	for _, inst := range c.Instances {
		assert.True(t, inst.State().Destroyed)
	}
	assert.Equal(t, 0, tooltip.LiveInstances())
}

func TestSetDefaults(t *testing.T) {
	f := newFixture(t, page)
	require.NoError(t, f.Engine.SetDefaults(tooltip.Props{"PLACEMENT": "bottom", "Delay": 40}))
	assert.Equal(t, tooltip.Props{"placement": "bottom", "delay": 40}, f.Engine.Defaults())

	inst := f.one(t, "#a", nil)
	assert.Equal(t, "bottom", inst.Options().Placement)
	assert.Equal(t, tooltip.Pair{In: 40 * time.Millisecond, Out: 40 * time.Millisecond}, inst.Options().Delay)

	inst = f.one(t, "#b", tooltip.Props{"placement": "left"})
	assert.Equal(t, "left", inst.Options().Placement)

	err := f.Engine.SetDefaults(tooltip.Props{"placement": "middle"})
	assert.True(t, errors.IsConfigurationError(err))
	err = f.Engine.SetDefaults(tooltip.Props{"nope": 1})
	assert.True(t, errors.IsConfigurationError(err))
	assert.Equal(t, "bottom", f.Engine.Defaults()["placement"], "failed calls keep the old defaults")
}

func TestShowOnInit(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#a", instant(tooltip.Props{"showOnInit": true}))
	assert.True(t, inst.State().Visible)

	inst = f.one(t, "#b", tooltip.Props{"showOnInit": true, "delay": 100})
	assert.False(t, inst.State().Visible)
	f.Loop.Advance(100 * time.Millisecond)
	assert.True(t, inst.State().Visible)
}

func TestDynamicTitle(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#c", tooltip.Props{"dynamicTitle": true})
	c := f.Query(t, "#c")
	assert.Equal(t, "Native", inst.Floating().TextContent())

	c.SetAttribute("title", "Updated")
	assert.Equal(t, "Native", inst.Floating().TextContent(), "delivered asynchronously")
	f.Loop.Drain()
	assert.Equal(t, "Updated", inst.Floating().TextContent())
	assert.False(t, c.HasAttribute("title"))
	assert.Equal(t, "Updated", c.GetAttribute(tooltip.AttrOriginalTitle))

	c.SetAttribute(tooltip.AttributeName(tooltip.OptContent), "From attribute")
	f.Loop.Drain()
	assert.Equal(t, "From attribute", inst.Floating().TextContent())

	inst.Destroy()
	assert.Equal(t, "Updated", c.GetAttribute("title"))
}

func TestStaticTitleIsNotWatched(t *testing.T) {
	f := newFixture(t, page)
	inst := f.one(t, "#c", nil)
	c := f.Query(t, "#c")
	c.SetAttribute("title", "Updated")
	f.Loop.Drain()
	assert.Equal(t, "Native", inst.Floating().TextContent())
}

func TestElementContentChangesReposition(t *testing.T) {
	f := newFixture(t, page)
	panel := f.Doc.CreateElement("div")
	panel.SetTextContent("Panel")
	inst := f.one(t, "#a", instant(tooltip.Props{"content": panel}))

	panel.SetTextContent("Changed while hidden")
	f.Loop.Drain()
	assert.Empty(t, f.Pos.handles)

	inst.Show()
	f.Loop.Drain()
	require.Len(t, f.Pos.handles, 1)
	before := f.Pos.handles[0].scheduled

	panel.SetTextContent("Changed while visible")
	f.Loop.Drain()
	assert.Equal(t, before+1, f.Pos.handles[0].scheduled)
}

func TestCreationIsLogged(t *testing.T) {
	f := newFixture(t, page)
	c := f.create(t, ".tip", nil)

	entries := f.Logs.FilterMessage("Collection created").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, c.ID.String(), ctx["collection_id"])
	assert.Equal(t, int64(2), ctx["count"])
}

func TestClose(t *testing.T) {
	f := newFixture(t, page)
	c := f.create(t, ".tip", instant(nil))
	c.Instances[0].Show()
	require.NotZero(t, f.Doc.ListenerCount())
	assert.Equal(t, len(c.Instances), f.Engine.Live())

	f.Engine.Close()
	assert.Equal(t, 0, tooltip.LiveInstances())
	assert.Equal(t, 0, f.Engine.Live())
	assert.Equal(t, 0, f.Doc.ListenerCount())
	assert.Equal(t, 0, f.Doc.Window().ListenerCount())
	for _, inst := range c.Instances {
		assert.True(t, inst.State().Destroyed)
	}

	again := f.create(t, "#a", nil)
	assert.Len(t, again.Instances, 1)
	assert.Equal(t, 2, f.Logs.FilterMessage("Document bound").Len())
}
