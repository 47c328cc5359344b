package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across tip.
// Use these constants instead of raw strings.
const (
	// Identity
	FieldInstanceID   = "instance_id"
	FieldCollectionID = "collection_id"
	FieldReference    = "reference"
	FieldComponent    = "component"

	// Engine
	FieldPhase     = "phase"
	FieldFrom      = "from"
	FieldTo        = "to"
	FieldTrigger   = "trigger"
	FieldEvent     = "event"
	FieldPlacement = "placement"
	FieldTarget    = "target"
	FieldKey       = "key"

	// Timing
	FieldDelayMS    = "delay_ms"
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount = "count"

	// Files
	FieldFile = "file"

	// Glyph of the emitting component (○, ●, ⊕, ...)
	FieldSymbol = "symbol"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	engine := tooltip.New(tooltip.Env{
//	    Logger: logger.ComponentLogger("tooltip"),
//	})
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
//	instLog := logger.ChildLogger(base, logger.FieldInstanceID, inst.ID())
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	if parent == nil {
		parent = Logger
	}
	return parent.With(keysAndValues...)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
