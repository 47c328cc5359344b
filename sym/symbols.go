// Package sym defines the glyphs tip uses for instance phases and engine
// components. They are stable across log output and the CLI so a phase reads
// the same wherever it shows up.
package sym

// Phase glyphs, one per instance state.
const (
	Hidden    = "○" // hidden, nothing armed
	Showing   = "◔" // show timer armed
	Visible   = "●" // visible
	Hiding    = "◕" // hide timer armed
	Destroyed = "✕" // terminal
)

// Component glyphs.
const (
	Engine      = "⌖" // collection creation, option resolution
	Coordinator = "⊕" // document-wide policies
	Positioner  = "⊹" // placement adapter
	Pulse       = "꩜" // event loop, timers and frames
	AM          = "≡" // configuration
)

// entry binds a glyph to its short name and description.
type entry struct {
	glyph       string
	name        string
	description string
}

var registry = []entry{
	{Hidden, "hidden", "Floating element detached, no timer armed"},
	{Showing, "showing", "Show delay running"},
	{Visible, "visible", "Floating element mounted and positioned"},
	{Hiding, "hiding", "Hide delay running"},
	{Destroyed, "destroyed", "Instance released all resources"},
	{Engine, "engine", "Target resolution and instance creation"},
	{Coordinator, "coordinator", "Outside click, touch detection, window blur"},
	{Positioner, "positioner", "Placement updates"},
	{Pulse, "pulse", "Event loop"},
	{AM, "am", "Configuration"},
}

// NameToGlyph maps short names to glyphs.
var NameToGlyph = map[string]string{}

// GlyphToName maps glyphs to short names.
var GlyphToName = map[string]string{}

// Descriptions maps glyphs to one-line descriptions.
var Descriptions = map[string]string{}

func init() {
	for _, e := range registry {
		NameToGlyph[e.name] = e.glyph
		GlyphToName[e.glyph] = e.name
		Descriptions[e.glyph] = e.description
	}
}

// Glyph returns the glyph for a short name, or "?" when unknown.
func Glyph(name string) string {
	if g, ok := NameToGlyph[name]; ok {
		return g
	}
	return "?"
}

// PhaseOrder is the order phases are listed in CLI output.
var PhaseOrder = []string{Hidden, Showing, Visible, Hiding, Destroyed}
