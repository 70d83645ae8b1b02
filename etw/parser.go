// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

package etw // import "github.com/fdoray/libtrace/etw"

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fdoray/libtrace/event"
)

// TraceExtension is the file suffix accepted by AddTraceSource.
const TraceExtension = ".etl"

// Multiplier converting the performance counter frequency to a period in
// units of 100 ns.
const perfPeriodMultiplier = 10000000.0

// ErrDuplicateSource is returned when AddTraceSource is called more than
// once.
var ErrDuplicateSource = errors.New("parser accepts a single trace source")

// ErrBadExtension is returned for paths that do not end in .etl.
var ErrBadExtension = errors.New("trace path must end in " + TraceExtension)

// TraceRecord is one raw event record as reported by the trace reader.
type TraceRecord struct {
	// Provider identifies the event source.
	Provider uuid.UUID
	// Opcode selects one of the provider's event shapes.
	Opcode uint8
	// Version selects among historical layouts of the shape.
	Version uint8
	// Is64Bit reports whether the payload uses 64-bit pointer widths.
	Is64Bit bool
	// RawTimestamp is the raw performance counter value.
	RawTimestamp uint64
	ProcessID    uint32
	ThreadID     uint32
	// ProcessorNumber is the CPU the record was logged on.
	ProcessorNumber uint8
	// Payload is the opaque bytes following the record header. May be
	// nil for empty payloads.
	Payload []byte
}

// TraceSource is an open trace file. Next returns io.EOF at the natural
// end of the trace. Close releases the underlying handle and is safe to
// call after an error.
type TraceSource interface {
	io.Closer

	// StartTime returns the trace start timestamp as an opaque 64-bit
	// system time count.
	StartTime() uint64

	// PerfFreq returns the performance counter frequency in ticks per
	// second.
	PerfFreq() uint64

	// Next returns the next record, or io.EOF at the end of the trace.
	Next() (*TraceRecord, error)
}

// TraceOpener opens trace files by path. The production implementation
// wraps the platform trace API; tests supply scripted sources.
type TraceOpener interface {
	Open(path string) (TraceSource, error)
}

// EventCallback receives each decoded event. The event is only valid for
// the duration of the call; implementations must deep-copy anything they
// retain.
type EventCallback func(*event.Event)

// Parser assembles decoded events from a single trace source and hands
// them to a callback in reader order.
type Parser struct {
	opener TraceOpener
	traces []string

	// Timestamp conversion state, reset on every Parse call.
	firstEventSystemTS uint64
	firstEventRawTS    uint64
	perfPeriod         float64
	sawFirstEvent      bool

	dropped uint64
}

// NewParser returns a parser reading through the given opener.
func NewParser(opener TraceOpener) *Parser {
	return &Parser{opener: opener}
}

// AddTraceSource registers the trace file to parse. At most one source is
// accepted per parser, and the path must carry the .etl suffix.
func (p *Parser) AddTraceSource(path string) error {
	if len(p.traces) > 0 {
		return ErrDuplicateSource
	}
	if !strings.HasSuffix(path, TraceExtension) {
		return ErrBadExtension
	}
	p.traces = append(p.traces, path)
	return nil
}

// DroppedEvents returns the number of records dropped by the last Parse
// because their triple was unknown or their payload truncated.
func (p *Parser) DroppedEvents() uint64 {
	return p.dropped
}

// Parse consumes the registered trace and synchronously invokes the
// callback for every decoded event. Undecodable records are dropped and
// parsing continues. A reader failure aborts parsing and is returned.
func (p *Parser) Parse(callback EventCallback) error {
	p.firstEventSystemTS = 0
	p.firstEventRawTS = 0
	p.perfPeriod = 0
	p.sawFirstEvent = false
	p.dropped = 0
	defer func() {
		p.firstEventSystemTS = 0
		p.firstEventRawTS = 0
		p.perfPeriod = 0
		p.sawFirstEvent = false
	}()

	if len(p.traces) == 0 {
		return nil
	}

	source, err := p.opener.Open(p.traces[0])
	if err != nil {
		return fmt.Errorf("open trace %s: %w", p.traces[0], err)
	}
	defer source.Close()

	p.firstEventSystemTS = source.StartTime()
	p.perfPeriod = perfPeriodMultiplier / float64(source.PerfFreq())

	for {
		record, err := source.Next()
		if err == io.EOF {
			if p.dropped > 0 {
				log.Debugf("Dropped %d undecodable events", p.dropped)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read trace %s: %w", p.traces[0], err)
		}
		p.processRecord(record, callback)
	}
}

func (p *Parser) processRecord(record *TraceRecord, callback EventCallback) {
	if !p.sawFirstEvent {
		p.firstEventRawTS = record.RawTimestamp
		p.sawFirstEvent = true
	}

	category, operation, payload, err := DecodeKernelPayload(
		record.Provider, record.Opcode, record.Version,
		record.Is64Bit, record.Payload)
	if err != nil {
		p.dropped++
		return
	}

	header := event.NewStruct()
	header.AddField(event.OperationFieldName, event.String(operation))
	header.AddField(event.CategoryFieldName, event.String(category))
	header.AddField(event.ProcessIDFieldName, event.Uint64(record.ProcessID))
	header.AddField(event.ThreadIDFieldName, event.Uint64(record.ThreadID))
	header.AddField(event.ProcessorNumberFieldName,
		event.Uint8(record.ProcessorNumber))

	ts := p.firstEventSystemTS + uint64(
		float64(record.RawTimestamp-p.firstEventRawTS)*p.perfPeriod)

	callback(event.New(event.Timestamp(ts), header, payload))
}
