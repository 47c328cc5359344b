package tooltip

import (
	"github.com/teranos/tip/dom"
)

// ContentWatcher notifies about changes that should update a tooltip after
// creation. Notifications must be asynchronous to the change.
type ContentWatcher interface {
	// WatchAttribute calls fn when one of the named attributes changes on ref
	WatchAttribute(ref Reference, names []string, fn func(name, value string)) (cancel func())
	// WatchSubtree calls fn when el's descendants change
	WatchSubtree(el *dom.Element, fn func()) (cancel func())
}

// domWatcher implements ContentWatcher with dom mutation observers
type domWatcher struct{}

func (domWatcher) WatchAttribute(ref Reference, names []string, fn func(name, value string)) func() {
	el, ok := ElementOf(ref)
	if !ok {
		return func() {}
	}
	obs := el.Document().NewMutationObserver(func(records []dom.MutationRecord) {
		seen := make(map[string]bool)
		for _, rec := range records {
			if seen[rec.AttributeName] {
				continue
			}
			seen[rec.AttributeName] = true
			fn(rec.AttributeName, el.GetAttribute(rec.AttributeName))
		}
	})
	obs.Observe(el, dom.ObserveOptions{Attributes: true, AttributeFilter: names})
	return obs.Disconnect
}

func (domWatcher) WatchSubtree(el *dom.Element, fn func()) func() {
	if el == nil {
		return func() {}
	}
	obs := el.Document().NewMutationObserver(func([]dom.MutationRecord) { fn() })
	obs.Observe(el, dom.ObserveOptions{Attributes: true, ChildList: true, Subtree: true})
	return obs.Disconnect
}
