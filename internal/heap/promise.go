// Promise state machine and then-records (spec.md §4.4). Grounded on
// original_source/njs/basic_types/JSPromise.h for the three-state
// machine and settle-once rule; microtask scheduling itself (draining
// ThenRecords into callable jobs) belongs to internal/eventloop and
// internal/interp, which already own the calling convention for
// invoking a Function object.
package heap

// PromiseState is the three-state machine of spec.md §4.4.
type PromiseState uint8

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// ThenRecord is one registered reaction pair, queued by .then/.catch
// while the promise is pending and drained (in order) the moment it
// settles. NextResolve/NextReject are the resolving functions of the
// promise .then itself returned, so internal/interp's microtask job can
// chain the reaction's return value into the next promise.
type ThenRecord struct {
	OnFulfilled Value // callable or Undefined
	OnRejected  Value // callable or Undefined
	NextResolve Value
	NextReject  Value
}

// PromiseExt is the Ext payload for ClassPromise objects.
type PromiseExt struct {
	State   PromiseState
	Result  Value // fulfillment value or rejection reason once settled
	Records []ThenRecord

	// Handled marks whether any rejection handler has ever been
	// attached. Nothing reads it: unhandled rejections are not reported.
	Handled bool
}

// NewPromiseExt builds an extension for a fresh pending promise.
func NewPromiseExt() *PromiseExt {
	return &PromiseExt{State: PromisePending, Result: Undefined()}
}

// Settle transitions a pending promise to Fulfilled or Rejected exactly
// once (spec.md §4.4: "settle is idempotent; only the first
// resolve/reject call has effect") and returns the ThenRecords to
// enqueue as microtask jobs, clearing them from the promise. A promise
// that is not pending returns (false, nil): the caller must not reuse
// reaction state from a second settle attempt.
func (p *PromiseExt) Settle(fulfilled bool, result Value) ([]ThenRecord, bool) {
	if p.State != PromisePending {
		return nil, false
	}
	if fulfilled {
		p.State = PromiseFulfilled
	} else {
		p.State = PromiseRejected
	}
	p.Result = result
	records := p.Records
	p.Records = nil
	return records, true
}

// AddReaction registers a then/catch reaction pair. It returns the
// record to enqueue immediately as a microtask job if the promise has
// already settled, or (ThenRecord{}, false) once recorded for later
// draining by Settle.
func (p *PromiseExt) AddReaction(r ThenRecord) (ThenRecord, bool) {
	if !r.OnRejected.IsUndefined() {
		p.Handled = true
	}
	if p.State == PromisePending {
		p.Records = append(p.Records, r)
		return ThenRecord{}, false
	}
	return r, true
}
