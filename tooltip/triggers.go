package tooltip

import (
	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/logger"
)

type triggerRole int

const (
	roleShow triggerRole = iota
	roleHide
	roleToggle
)

func (r triggerRole) String() string {
	switch r {
	case roleHide:
		return "hide"
	case roleToggle:
		return "toggle"
	}
	return "show"
}

// triggerBinding is one listener a trigger name expands to
type triggerBinding struct {
	event string
	role  triggerRole
}

var directTriggers = map[string][]triggerBinding{
	"mouseenter": {{"mouseenter", roleShow}, {"mouseleave", roleHide}},
	"focus":      {{"focus", roleShow}, {"blur", roleHide}},
	"click":      {{"click", roleToggle}},
}

var delegatedTriggers = map[string][]triggerBinding{
	"mouseenter": {{"mouseover", roleShow}, {"mouseout", roleHide}},
	"focus":      {{"focusin", roleShow}, {"focusout", roleHide}},
	"click":      {{"click", roleToggle}},
}

var touchHoldBindings = []triggerBinding{{"touchstart", roleShow}, {"touchend", roleHide}}

// triggerBindings expands a trigger list into listener bindings, in order and
// without duplicates. manual expands to nothing.
func triggerBindings(triggers Triggers, delegated, touchHold bool) []triggerBinding {
	table := directTriggers
	if delegated {
		table = delegatedTriggers
	}
	seen := make(map[triggerBinding]bool)
	var out []triggerBinding
	add := func(b triggerBinding) {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	for _, name := range triggers {
		if name == "manual" {
			continue
		}
		bindings, ok := table[name]
		if !ok {
			bindings = []triggerBinding{{name, roleShow}}
		}
		for _, b := range bindings {
			add(b)
		}
		if name == "mouseenter" && touchHold && !delegated {
			for _, b := range touchHoldBindings {
				add(b)
			}
		}
	}
	return out
}

func (i *Instance) wireTriggers() {
	if i.options.Trigger.IsManual() {
		return
	}
	delegated := i.options.Target != ""
	for _, b := range triggerBindings(i.options.Trigger, delegated, i.options.TouchHold) {
		role := b.role
		i.addListener(&i.listeners, i.reference, b.event, func(ev *dom.Event) {
			i.onTrigger(ev, role)
		})
	}
}

func (i *Instance) onTrigger(ev *dom.Event, role triggerRole) {
	if i.destroyed {
		return
	}
	if i.touchFiltered(ev) {
		return
	}
	if i.options.Target != "" {
		i.onDelegated(ev, role)
		return
	}
	switch role {
	case roleShow:
		i.triggerShow(ev)
	case roleHide:
		i.triggerHide(ev)
	case roleToggle:
		if i.visible {
			if i.options.HideOnClick != HideOnClickPersistent {
				i.requestHide(ev)
			}
			return
		}
		i.triggerShow(ev)
	}
}

// touchFiltered drops events that do not match the active input kind
func (i *Instance) touchFiltered(ev *dom.Event) bool {
	if !i.engine.coord.usingTouch(i.engine.env.Document) {
		return false
	}
	if !i.options.Touch {
		return true
	}
	isTouch := ev.IsTouch()
	return (i.options.TouchHold && !isTouch) || (!i.options.TouchHold && isTouch)
}

func (i *Instance) triggerShow(ev *dom.Event) {
	if i.options.OnTrigger != nil {
		i.options.OnTrigger(i, ev)
	}
	i.requestShow(ev)
}

func (i *Instance) triggerHide(ev *dom.Event) {
	switch ev.Type {
	case "blur", "focusout":
		if i.options.Interactive && ev.RelatedTarget != nil && i.floating.Contains(ev.RelatedTarget) {
			return
		}
	case "mouseleave", "mouseout":
		if i.options.Interactive {
			i.startInteractive()
			return
		}
	}
	i.requestHide(ev)
}

// onDelegated routes an event on a delegate container to the child instance
// for the closest matching descendant
func (i *Instance) onDelegated(ev *dom.Event, role triggerRole) {
	if ev.Target == nil {
		return
	}
	matched, err := ev.Target.Closest(i.options.Target)
	if err != nil || matched == nil || !i.containsDelegate(matched) {
		return
	}
	if role == roleHide && ev.RelatedTarget != nil && matched.Contains(ev.RelatedTarget) {
		return
	}

	child := i.children[matched]
	if child == nil || child.destroyed {
		if role == roleHide {
			return
		}
		child, err = i.engine.createDelegateChild(i, matched)
		if err != nil {
			i.log.Warnw("Delegated instance not created", logger.FieldTarget, matched.String(), logger.FieldError, err)
			return
		}
		// showOnInit already requested the show
		return
	}
	child.onTrigger(ev, role)
}

// containsDelegate reports whether matched sits inside the container
func (i *Instance) containsDelegate(matched *dom.Element) bool {
	el, ok := ElementOf(i.reference)
	if !ok {
		return true
	}
	return el.Contains(matched)
}
