// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

// Package state consumes decoded events and maintains the current view of
// the traced system: which images are loaded where, and what the sampled
// stacks resolve to.
package state // import "github.com/fdoray/libtrace/state"

import (
	"github.com/ianlancetaylor/demangle"
	log "github.com/sirupsen/logrus"

	"github.com/fdoray/libtrace/event"
	"github.com/fdoray/libtrace/intern"
	"github.com/fdoray/libtrace/symbols"
)

const (
	imageCategory     = "Image"
	stackWalkCategory = "StackWalk"

	imageLoadOperation    = "Load"
	imageDCStartOperation = "DCStart"
	imageUnloadOperation  = "Unload"
	stackOperation        = "Stack"
)

// StackSample is one resolved stack walk. Frames holds interned symbol
// names for the addresses that resolved; unresolvable addresses are
// skipped.
type StackSample struct {
	Timestamp uint64
	Pid       symbols.Pid
	Tid       uint64
	Frames    []intern.ID
}

// CurrentState reacts to (category, operation) pairs to keep the symbol
// resolver current and to resolve sampled stacks. All other events are
// ignored.
type CurrentState struct {
	resolver *symbols.Resolver
	names    *intern.Table[string]
	samples  []StackSample
}

// New returns a state sink driving the given resolver.
func New(resolver *symbols.Resolver) *CurrentState {
	return &CurrentState{
		resolver: resolver,
		names:    intern.NewTable[string](),
	}
}

// Resolver exposes the underlying resolver.
func (s *CurrentState) Resolver() *symbols.Resolver { return s.resolver }

// Names exposes the interning table used for symbol names.
func (s *CurrentState) Names() *intern.Table[string] { return s.names }

// Samples returns the stack samples resolved so far.
func (s *CurrentState) Samples() []StackSample { return s.samples }

// OnEvent is the parser callback.
func (s *CurrentState) OnEvent(e *event.Event) {
	category, ok := e.Header().FieldAsString(event.CategoryFieldName)
	if !ok {
		return
	}
	operation, ok := e.Header().FieldAsString(event.OperationFieldName)
	if !ok {
		return
	}

	switch category {
	case imageCategory:
		switch operation {
		case imageLoadOperation, imageDCStartOperation:
			s.onImageLoad(e)
		case imageUnloadOperation:
			s.onImageUnload(e)
		}
	case stackWalkCategory:
		if operation == stackOperation {
			s.onStackWalk(e)
		}
	}
}

func (s *CurrentState) onImageLoad(e *event.Event) {
	var image symbols.Image
	size, okSize := e.Payload().FieldAsUint64("ModuleSize")
	checksum, okChecksum := e.Payload().FieldAsUint64("ImageCheckSum")
	timestamp, okTimestamp := e.Payload().FieldAsUint64("TimeDateStamp")
	filename, okFilename := e.Payload().FieldAsWString("ImageFileName")
	base, okBase := e.Payload().FieldAsUint64("BaseAddress")
	pid, okPid := e.Header().FieldAsUint64(event.ProcessIDFieldName)

	if !okSize || !okChecksum || !okTimestamp || !okFilename ||
		!okBase || !okPid {
		log.Warn("Incomplete Image Load event.")
		return
	}

	image.Size = size
	image.Checksum = uint32(checksum)
	image.Timestamp = uint32(timestamp)
	image.Filename = filename
	s.resolver.LoadImage(symbols.Pid(pid), symbols.Address(base), image)
}

func (s *CurrentState) onImageUnload(e *event.Event) {
	base, okBase := e.Payload().FieldAsUint64("BaseAddress")
	pid, okPid := e.Header().FieldAsUint64(event.ProcessIDFieldName)
	if !okBase || !okPid {
		log.Warn("Incomplete Image Unload event.")
		return
	}
	s.resolver.UnloadImage(symbols.Pid(pid), symbols.Address(base))
}

func (s *CurrentState) onStackWalk(e *event.Event) {
	ts, okTS := e.Payload().FieldAsUint64("EventTimeStamp")
	pid, okPid := e.Payload().FieldAsUint64("StackProcess")
	tid, okTid := e.Payload().FieldAsUint64("StackThread")
	stack, okStack := e.Payload().FieldAsArray("Stack")
	if !okTS || !okPid || !okTid || !okStack {
		log.Warn("Incomplete StackWalk event.")
		return
	}

	sample := StackSample{
		Timestamp: ts,
		Pid:       symbols.Pid(pid),
		Tid:       tid,
	}
	for i := 0; i < stack.Len(); i++ {
		address, ok := event.AsUint64(stack.At(i))
		if !ok {
			log.Warnf("Invalid stack entry of kind %d.",
				stack.At(i).Kind())
			return
		}
		sym, err := s.resolver.ResolveSymbol(
			symbols.Pid(pid), symbols.Address(address))
		if err != nil {
			continue
		}
		name := demangle.Filter(sym.Name)
		sample.Frames = append(sample.Frames, s.names.Intern(name))
	}
	s.samples = append(s.samples, sample)
}
