package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tip/am"
	"github.com/teranos/tip/errors"
	"github.com/teranos/tip/tooltip"
)

// replay plays s like Play and hands back the player for inspection
func replay(t *testing.T, s *Scenario, opts Options) (*player, *Result, error) {
	t.Helper()
	p, err := newPlayer(s, opts)
	require.NoError(t, err)
	res, err := p.play(context.Background(), opts.Realtime)
	return p, res, err
}

func assertClosed(t *testing.T, p *player) {
	t.Helper()
	assert.Zero(t, p.engine.Live(), "instances left after replay")
	assert.Zero(t, p.doc.ListenerCount(), "document listeners left after replay")
	assert.Zero(t, p.doc.Window().ListenerCount(), "window listeners left after replay")
}

func TestLoad(t *testing.T) {
	s, err := Load("testdata/hover.toml")
	require.NoError(t, err)

	assert.Equal(t, "hover with show delay", s.Title())
	assert.Equal(t, "testdata/hover.toml", s.Path)
	assert.Equal(t, []float64{1024, 768}, s.Viewport)
	require.Len(t, s.Tooltips, 1)
	assert.Equal(t, "#a", s.Tooltips[0].Target)
	assert.Equal(t, "Hello", s.Tooltips[0].Props["content"])

	require.Len(t, s.Steps, 5)
	assert.Equal(t, Step{Index: 2, Op: "wait", Args: []string{"100ms"}, Wait: 100 * time.Millisecond}, s.Steps[1])
	assert.Equal(t, "#a", s.Steps[2].Selector)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/missing.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "testdata/missing.toml")
}

func TestParseRejects(t *testing.T) {
	const markup = `markup = "<p id='x'>x</p>"` + "\n"
	tests := []struct {
		name string
		data string
	}{
		{"bad toml", "name = "},
		{"unknown key", markup + "delay = 100"},
		{"no markup", `name = "empty"`},
		{"engine too old", markup + `engine = "< 1.0"`},
		{"bad viewport", markup + "viewport = [100]"},
		{"tooltip without target", markup + "[[tooltip]]\nprops = { delay = 1 }"},
		{"unknown step", markup + `steps = ["hover #x"]`},
		{"missing argument", markup + `steps = ["click"]`},
		{"bad wait", markup + `steps = ["wait soon"]`},
		{"unbalanced quote", markup + `steps = ["click '#x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err), "%v", err)
		})
	}
}

func TestParseStep(t *testing.T) {
	step, err := ParseStep(`attr "#a" title 'Two words'`)
	require.NoError(t, err)
	assert.Equal(t, "attr", step.Op)
	assert.Equal(t, "#a", step.Selector)
	assert.Equal(t, []string{"#a", "title", "Two words"}, step.Args)
	assert.Equal(t, `attr #a title 'Two words'`, step.String())

	step, err = ParseStep("mousemove 12.5 40")
	require.NoError(t, err)
	assert.Equal(t, 12.5, step.X)
	assert.Equal(t, 40.0, step.Y)

	step, err = ParseStep("WAIT 250")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, step.Wait)

	_, err = ParseStep("wait -5")
	assert.True(t, errors.IsConfigurationError(err))

	_, err = ParseStep("nope")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "mouseenter")
}

func TestPlayHover(t *testing.T) {
	s, err := Load("testdata/hover.toml")
	require.NoError(t, err)

	p, res, err := replay(t, s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Instances)
	assert.Equal(t, 5, res.Steps)
	assert.Equal(t, int64(100), res.ElapsedMS)

	type change struct {
		at       int64
		step     int
		from, to tooltip.Phase
	}
	var got []change
	for _, row := range res.Transitions {
		assert.Equal(t, "#a", row.Reference)
		got = append(got, change{row.AtMS, row.Step, row.From, row.To})
	}
	assert.Equal(t, []change{
		{0, 1, tooltip.PhaseHidden, tooltip.PhaseShowing},
		{100, 2, tooltip.PhaseShowing, tooltip.PhaseVisible},
		{100, 4, tooltip.PhaseVisible, tooltip.PhaseHiding},
		{100, 4, tooltip.PhaseHiding, tooltip.PhaseHidden},
	}, got)

	require.Len(t, res.States, 2)
	assert.Equal(t, tooltip.PhaseVisible, res.States[0].Phase)
	assert.True(t, res.States[0].Mounted)
	assert.Equal(t, "top", res.States[0].Placement)
	assert.Equal(t, "Hello", res.States[0].Content)
	assert.Equal(t, tooltip.PhaseHidden, res.States[1].Phase)
	assert.False(t, res.States[1].Mounted)

	assertClosed(t, p)
}

func TestPlayDelegatedMenu(t *testing.T) {
	s, err := Load("testdata/menu.toml")
	require.NoError(t, err)

	res, err := Play(context.Background(), s, Options{})
	require.NoError(t, err)
	require.Len(t, res.States, 2)
	assert.Equal(t, "#two", res.States[0].Reference)
	assert.Equal(t, tooltip.PhaseVisible, res.States[0].Phase)
	assert.Equal(t, "Second", res.States[0].Content)
	assert.Equal(t, tooltip.PhaseHidden, res.States[1].Phase, "outside click hides")
}

func TestPlayConfigDefaults(t *testing.T) {
	s, err := Parse(`markup = "<button id='a' data-rect='100 100 80 30'>A</button>"
steps = ["mouseenter #a", "wait 30ms", "state #a"]

[[tooltip]]
target = "#a"
props = { duration = 0 }
`)
	require.NoError(t, err)

	cfg := &am.Config{Tooltip: am.TooltipConfig{Defaults: map[string]interface{}{"delay": 50}}}
	res, err := Play(context.Background(), s, Options{Config: cfg})
	require.NoError(t, err)
	require.Len(t, res.States, 1)
	assert.Equal(t, tooltip.PhaseShowing, res.States[0].Phase, "configured delay still running")

	s.Defaults = map[string]interface{}{"delay": 0}
	res, err = Play(context.Background(), s, Options{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, tooltip.PhaseVisible, res.States[0].Phase, "scenario defaults win")
}

func TestPlayErrors(t *testing.T) {
	const head = `markup = "<button id='a'>A</button>"` + "\n"

	t.Run("missing element", func(t *testing.T) {
		s, err := Parse(head + `steps = ["click #nope"]` + "\n[[tooltip]]\ntarget = \"#a\"")
		require.NoError(t, err)
		p, _, err := replay(t, s, Options{})
		assert.True(t, errors.IsNotFoundError(err))
		assertClosed(t, p)
	})

	t.Run("no tooltip on element", func(t *testing.T) {
		s, err := Parse(head + `steps = ["show #a"]`)
		require.NoError(t, err)
		_, err = Play(context.Background(), s, Options{})
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("bad props", func(t *testing.T) {
		s, err := Parse(head + "[[tooltip]]\ntarget = \"#a\"\nprops = { placment = \"top\" }")
		require.NoError(t, err)
		p, _, err := replay(t, s, Options{})
		assert.True(t, errors.IsConfigurationError(err))
		assert.Contains(t, err.Error(), "tooltip 1")
		assertClosed(t, p)
	})

	t.Run("cancelled", func(t *testing.T) {
		s, err := Parse(head + `steps = ["mouseenter #a"]`)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = Play(ctx, s, Options{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPlayRealtime(t *testing.T) {
	s, err := Parse(`markup = "<button id='a' data-rect='100 100 80 30'>A</button>"
steps = ["mouseenter #a", "wait 5ms", "state #a", "mouseleave"]

[[tooltip]]
target = "#a"
props = { delay = 0, duration = 0 }
`)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := Play(ctx, s, Options{Realtime: true})
	require.NoError(t, err)
	require.Len(t, res.States, 1)
	assert.Equal(t, tooltip.PhaseVisible, res.States[0].Phase)
	require.NotEmpty(t, res.Transitions)
	assert.Equal(t, tooltip.PhaseHidden, res.Transitions[len(res.Transitions)-1].To)
	assert.GreaterOrEqual(t, res.ElapsedMS, int64(5))
}
