package trace

import "context"

// Recorder adapts a Store to the propagation engine's recording hook.
// One Recorder covers one top-level call: it carries that call's token and
// stamps records from its own logical clock.
type Recorder struct {
	store *Store
	clock *Clock
	token string
}

// NewRecorder creates a recorder writing to store under a fresh token from
// gen.
func NewRecorder(store *Store, gen TokenGenerator) *Recorder {
	return &Recorder{store: store, clock: NewClock(), token: gen.Generate()}
}

// CallToken returns the token identifying this recorder's call.
func (r *Recorder) CallToken() string { return r.token }

// RecordApply writes one intercepted application. Implements the
// propagation engine's Recorder interface.
func (r *Recorder) RecordApply(op string, order int, operandShapes [][]int, outputShape []int) error {
	return r.store.Write(context.Background(), Record{
		CallToken:     r.token,
		Seq:           r.clock.Next(),
		Op:            op,
		Order:         order,
		OperandShapes: operandShapes,
		OutputShape:   outputShape,
	})
}
