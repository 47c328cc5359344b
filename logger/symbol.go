package logger

import (
	"github.com/teranos/tip/sym"
	"go.uber.org/zap"
)

// Symbol-aware logging helpers.
// The glyph goes into a structured field, not into the message, so logs stay
// queryable by component and phase.
//
//	log := logger.WithSymbol(base, sym.Coordinator)
//	log.Debugw("Outside click", logger.FieldCount, n)

// WithSymbol returns a child logger that tags every entry with glyph.
func WithSymbol(parent *zap.SugaredLogger, glyph string) *zap.SugaredLogger {
	return OrNop(parent).With(FieldSymbol, glyph)
}

// Transition logs a phase change at debug level with the destination glyph.
func Transition(l *zap.SugaredLogger, from, to string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}
	fields := append([]interface{}{FieldSymbol, to, FieldFrom, sym.GlyphToName[from], FieldTo, sym.GlyphToName[to]}, keysAndValues...)
	l.Debugw("Phase change", fields...)
}

// PulseDebugw logs a debug message with the Pulse symbol (꩜)
func PulseDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.Pulse}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// AmInfow logs an info message with the AM symbol (≡)
func AmInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.AM}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}
