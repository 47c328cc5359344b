// Package tooltip is the tooltip engine: per-reference visibility state
// machines, trigger wiring, and the document-wide coordinator.
//
// An Engine is bound to a host (a dom.Document, a pulse.Scheduler and a
// Positioner). Create resolves a target into references and builds one
// Instance per reference:
//
//	engine := tooltip.New(tooltip.Env{Document: doc, Scheduler: loop, Positioner: position.New(doc, loop)})
//	tips, err := engine.Create(".help", tooltip.Props{"content": "Help", "delay": []any{100, 50}})
//
// Options resolve from four layers, lowest first: built-in defaults, engine
// defaults (SetDefaults, usually from am.toml), data-tip-* attributes on the
// reference, and the props passed to Create. Function-valued content and
// appendTo are evaluated once per reference at creation.
//
// Everything runs on the scheduler's loop. Instances are not safe for use
// from other goroutines; hand work to the loop with Post.
package tooltip
