package logger

// OutputCategory defines a category of CLI output that can be enabled or
// disabled independently of log severity.
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Final state table
	OutputErrors                        // Errors with hints

	// Level 1 (-v)
	OutputTransitions // Phase changes per instance
	OutputConfig      // Config values loaded/applied

	// Level 2 (-vv)
	OutputTimers      // Delay and duration timers armed/cancelled
	OutputPositioning // Positioner create/update passes

	// Level 3 (-vvv)
	OutputEvents // Every dispatched DOM event

	// Level 4 (-vvvv)
	OutputDataDump // Resolved options and document dumps
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:     VerbosityUser,
	OutputErrors:      VerbosityUser,
	OutputTransitions: VerbosityInfo,
	OutputConfig:      VerbosityInfo,
	OutputTimers:      VerbosityDebug,
	OutputPositioning: VerbosityDebug,
	OutputEvents:      VerbosityTrace,
	OutputDataDump:    VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:     "results",
	OutputErrors:      "errors",
	OutputTransitions: "transitions",
	OutputConfig:      "config",
	OutputTimers:      "timers",
	OutputPositioning: "positioning",
	OutputEvents:      "events",
	OutputDataDump:    "data-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
