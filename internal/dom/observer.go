package dom

import "golang.org/x/net/html"

// ObserveOptions selects which mutations an observation reports.
type ObserveOptions struct {
	ChildList     bool
	CharacterData bool
	Attributes    bool
	Subtree       bool
}

// Callback receives a batch of records.
type Callback func(records []MutationRecord, o *Observer)

// Observer collects records for the nodes it observes.
type Observer struct {
	doc          *Document
	callback     Callback
	observations []observation
	records      []MutationRecord
}

type observation struct {
	target *html.Node
	opts   ObserveOptions
}

// NewObserver creates an observer that reports to cb.
func (d *Document) NewObserver(cb Callback) *Observer {
	return &Observer{doc: d, callback: cb}
}

// Observe starts reporting mutations of target. Observing the same target
// again replaces its options.
func (o *Observer) Observe(target *html.Node, opts ObserveOptions) {
	for i := range o.observations {
		if o.observations[i].target == target {
			o.observations[i].opts = opts
			return
		}
	}
	o.observations = append(o.observations, observation{target: target, opts: opts})
	o.doc.register(o)
}

// Disconnect stops all observations and drops undelivered records.
func (o *Observer) Disconnect() {
	o.observations = nil
	o.records = nil
	o.doc.unregister(o)
}

// TakeRecords returns and clears the undelivered records.
func (o *Observer) TakeRecords() []MutationRecord {
	records := o.records
	o.records = nil
	return records
}

// Observing reports whether the observer has at least one observation.
func (o *Observer) Observing() bool {
	return len(o.observations) > 0
}

func (o *Observer) wants(rec MutationRecord) bool {
	for _, obs := range o.observations {
		if !obs.opts.accepts(rec.Type) {
			continue
		}
		if rec.Target == obs.target || (obs.opts.Subtree && IsAncestor(obs.target, rec.Target)) {
			return true
		}
	}
	return false
}

func (opts ObserveOptions) accepts(t MutationType) bool {
	switch t {
	case ChildList:
		return opts.ChildList
	case CharacterData:
		return opts.CharacterData
	case Attributes:
		return opts.Attributes
	}
	return false
}
