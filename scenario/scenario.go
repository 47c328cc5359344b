// Package scenario loads and replays tooltip scenarios. A scenario is a TOML
// file holding a page, the tooltips to create on it and a list of input steps;
// replaying it records every phase change the engine reports.
//
//	name = "menu hover"
//	engine = "^1.2"
//	markup = '<button id="a" data-rect="100 100 80 30">A</button>'
//	steps = ["mouseenter #a", "wait 150ms", "state #a", "mouseleave"]
//
//	[[tooltip]]
//	target = "#a"
//	props = { content = "Hello", delay = [100, 0] }
package scenario

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/tip/errors"
	"github.com/teranos/tip/version"
)

// Scenario is one decoded scenario file
type Scenario struct {
	Name string `toml:"name"`
	// Engine is a semver constraint on version.EngineVersion
	Engine string `toml:"engine"`
	Markup string `toml:"markup"`
	// Viewport is [width, height]; zero keeps the document default
	Viewport []float64 `toml:"viewport"`
	// Defaults are engine defaults layered over the configured ones
	Defaults map[string]interface{} `toml:"defaults"`
	Tooltips []TooltipSpec          `toml:"tooltip"`
	RawSteps []string               `toml:"steps"`

	// Steps are RawSteps parsed, in order
	Steps []Step `toml:"-"`
	// Path is the file the scenario was loaded from, if any
	Path string `toml:"-"`
}

// TooltipSpec is one Create call
type TooltipSpec struct {
	Target string                 `toml:"target"`
	Props  map[string]interface{} `toml:"props"`
}

// Load reads and parses a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scenario %s", path)
	}
	s, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", path)
	}
	s.Path = path
	return s, nil
}

// Parse decodes a scenario and checks it: the engine constraint, the markup,
// every tooltip target and every step.
func Parse(data string) (*Scenario, error) {
	var s Scenario
	md, err := toml.Decode(data, &s)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode scenario"), errors.ErrConfiguration)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		err := errors.NewConfigurationError("unknown scenario keys: %s", strings.Join(keys, ", "))
		return nil, errors.WithHint(err, "tooltip props go under [tooltip.props] or [defaults]")
	}

	if err := version.CheckEngine(s.Engine); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.Markup) == "" {
		return nil, errors.NewConfigurationError("scenario has no markup")
	}
	if len(s.Viewport) != 0 && (len(s.Viewport) != 2 || s.Viewport[0] <= 0 || s.Viewport[1] <= 0) {
		return nil, errors.NewConfigurationError("viewport must be [width, height], got %v", s.Viewport)
	}
	for n, t := range s.Tooltips {
		if strings.TrimSpace(t.Target) == "" {
			return nil, errors.NewConfigurationError("tooltip %d has no target", n+1)
		}
	}

	s.Steps = make([]Step, 0, len(s.RawSteps))
	for n, raw := range s.RawSteps {
		step, err := ParseStep(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", n+1)
		}
		step.Index = n + 1
		s.Steps = append(s.Steps, step)
	}
	return &s, nil
}

// Title returns the scenario name, or its path when unnamed
func (s *Scenario) Title() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Path != "" {
		return s.Path
	}
	return "scenario"
}
