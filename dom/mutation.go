package dom

// Mutation record types
const (
	MutationAttributes = "attributes"
	MutationChildList  = "childList"
)

// MutationRecord describes one change
type MutationRecord struct {
	Type          string
	Target        *Element
	AttributeName string
	OldValue      string
	Added         []*Element
	Removed       []*Element
}

// ObserveOptions selects which changes an observer receives
type ObserveOptions struct {
	Attributes      bool
	AttributeFilter []string
	ChildList       bool
	// Subtree extends observation to all descendants of the target
	Subtree bool
}

type observation struct {
	target *Element
	opts   ObserveOptions
}

// MutationObserver batches records and delivers them asynchronously
type MutationObserver struct {
	doc          *Document
	callback     func([]MutationRecord)
	observations []observation
	pending      []MutationRecord
	scheduled    bool
}

// NewMutationObserver creates an observer; call Observe to start receiving
func (d *Document) NewMutationObserver(callback func([]MutationRecord)) *MutationObserver {
	return &MutationObserver{doc: d, callback: callback}
}

// SetMutationScheduler sets how record delivery is scheduled, typically a
// loop's Post. With no scheduler, deliveries wait for FlushMutations.
func (d *Document) SetMutationScheduler(schedule func(func())) {
	d.schedule = schedule
}

// FlushMutations runs deliveries queued without a scheduler
func (d *Document) FlushMutations() {
	for len(d.queued) > 0 {
		fn := d.queued[0]
		d.queued = d.queued[1:]
		fn()
	}
}

// Observe starts observing target
func (o *MutationObserver) Observe(target *Element, opts ObserveOptions) {
	for i, obs := range o.observations {
		if obs.target == target {
			o.observations[i].opts = opts
			return
		}
	}
	if len(o.observations) == 0 {
		o.doc.observers = append(o.doc.observers, o)
	}
	o.observations = append(o.observations, observation{target: target, opts: opts})
}

// Disconnect stops observation and drops undelivered records
func (o *MutationObserver) Disconnect() {
	o.observations = nil
	o.pending = nil
	for i, obs := range o.doc.observers {
		if obs == o {
			o.doc.observers = append(o.doc.observers[:i], o.doc.observers[i+1:]...)
			break
		}
	}
}

// TakeRecords returns and clears undelivered records
func (o *MutationObserver) TakeRecords() []MutationRecord {
	records := o.pending
	o.pending = nil
	return records
}

func (o *MutationObserver) wants(rec MutationRecord) bool {
	for _, obs := range o.observations {
		if obs.target != rec.Target && !(obs.opts.Subtree && obs.target.Contains(rec.Target)) {
			continue
		}
		switch rec.Type {
		case MutationAttributes:
			if !obs.opts.Attributes {
				continue
			}
			if len(obs.opts.AttributeFilter) > 0 && !containsToken(obs.opts.AttributeFilter, rec.AttributeName) {
				continue
			}
			return true
		case MutationChildList:
			if obs.opts.ChildList {
				return true
			}
		}
	}
	return false
}

func (o *MutationObserver) deliver() {
	o.scheduled = false
	records := o.TakeRecords()
	if len(records) == 0 || len(o.observations) == 0 {
		return
	}
	o.callback(records)
}

// record queues rec for every interested observer
func (d *Document) record(rec MutationRecord) {
	for _, o := range d.observers {
		if !o.wants(rec) {
			continue
		}
		o.pending = append(o.pending, rec)
		if o.scheduled {
			continue
		}
		o.scheduled = true
		if d.schedule != nil {
			d.schedule(o.deliver)
		} else {
			d.queued = append(d.queued, o.deliver)
		}
	}
}
