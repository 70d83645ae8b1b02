// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

package event // import "github.com/fdoray/libtrace/event"

// Timestamp is an opaque integral count of 100 ns intervals.
type Timestamp uint64

// Well-known header field names, present on every event.
const (
	OperationFieldName       = "operation"
	CategoryFieldName        = "category"
	ProcessIDFieldName       = "process_id"
	ThreadIDFieldName        = "thread_id"
	ProcessorNumberFieldName = "processor_number"
)

// Event wraps a timestamp, a header struct and a payload struct. The event
// exclusively owns both trees; accessors return borrows. An Event is
// immutable after construction.
type Event struct {
	timestamp Timestamp
	header    *Struct
	payload   *Struct
}

// New builds an event taking ownership of the header and payload.
func New(ts Timestamp, header, payload *Struct) *Event {
	return &Event{timestamp: ts, header: header, payload: payload}
}

// Timestamp returns the event timestamp.
func (e *Event) Timestamp() Timestamp { return e.timestamp }

// Header returns a borrow of the header struct.
func (e *Event) Header() *Struct { return e.header }

// Payload returns a borrow of the payload struct.
func (e *Event) Payload() *Struct { return e.payload }

// Equal reports whether two events carry the same timestamp and deeply
// equal header and payload trees.
func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.timestamp == other.timestamp &&
		e.header.Equal(other.header) &&
		e.payload.Equal(other.payload)
}
