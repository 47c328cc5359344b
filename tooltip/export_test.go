package tooltip

import (
	"strings"

	"github.com/teranos/tip/dom"
)

// ResetCoordinator unbinds every document and forgets every instance
func ResetCoordinator() { global.reset() }

// UsingTouch reports the coordinator's input mode for doc
func UsingTouch(doc *dom.Document) bool { return global.usingTouch(doc) }

// LiveInstances counts instances registered with the coordinator
func LiveInstances() int { return len(global.live(nil)) }

// TriggerEvents lists "event:role" for each listener a trigger string wires
func TriggerEvents(trigger string, delegated, touchHold bool) []string {
	var out []string
	for _, b := range triggerBindings(Triggers(strings.Fields(trigger)), delegated, touchHold) {
		out = append(out, b.event+":"+b.role.String())
	}
	return out
}
