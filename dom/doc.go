// Package dom is an in-memory document host for the tooltip engine.
//
// Documents are parsed with golang.org/x/net/html and queried with cascadia
// selectors. Layout is explicit: elements carry a page-space Rect set by the
// caller (or a data-rect="left top width height" attribute in parsed HTML),
// and unsized elements are measured from their text.
//
// Events follow the browser model closely enough for tooltips: capture, target
// and bubble phases, non-bubbling mouseenter/mouseleave/focus/blur, a window
// target, and focus tracking. Mutation observers deliver records
// asynchronously through a scheduler hook (usually a pulse.Loop's Post).
package dom
