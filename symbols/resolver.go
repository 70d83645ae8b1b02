// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

// Package symbols maintains per-process maps of loaded images and resolves
// addresses to the symbols they fall into.
package symbols // import "github.com/fdoray/libtrace/symbols"

import (
	"errors"
	"slices"
	"sort"

	"github.com/elastic/go-freelru"
	"github.com/zeebo/xxh3"
)

// Address is a virtual address inside a traced process.
type Address uint64

// Pid identifies a traced process.
type Pid uint64

var ErrNoImage = errors.New("no image contains the address")

var ErrNoSymbol = errors.New("no symbol contains the address")

// Image describes a loaded module. Two images are equal iff all four
// fields are equal; the symbol cache is keyed on that equality.
type Image struct {
	Size      uint64
	Checksum  uint32
	Timestamp uint32
	Filename  string
}

// Symbol is a named code region at an offset from its image's base.
type Symbol struct {
	Name   string
	Offset uint64
	Size   uint64
}

// SymbolEnumerator lists the symbols of an image. The production binding
// wraps a platform debug-symbol library; tests supply a programmable fake.
type SymbolEnumerator interface {
	Enumerate(image Image) ([]Symbol, error)
}

// symbolCacheSize bounds the per-image symbol table cache. Eviction only
// costs a re-enumeration; the rebuilt table is identical.
const symbolCacheSize = 512

type imageEntry struct {
	base  Address
	image Image
}

func hashImage(img Image) uint32 {
	h := xxh3.HashString(img.Filename)
	h ^= xxh3.Hash([]byte{
		byte(img.Size), byte(img.Size >> 8),
		byte(img.Size >> 16), byte(img.Size >> 24),
		byte(img.Size >> 32), byte(img.Size >> 40),
		byte(img.Size >> 48), byte(img.Size >> 56),
		byte(img.Checksum), byte(img.Checksum >> 8),
		byte(img.Checksum >> 16), byte(img.Checksum >> 24),
		byte(img.Timestamp), byte(img.Timestamp >> 8),
		byte(img.Timestamp >> 16), byte(img.Timestamp >> 24),
	})
	return uint32(h)
}

// Resolver tracks images loaded into each process and answers
// address-to-symbol queries through a cached per-image symbol table.
// It is not safe for concurrent use; the parser thread owns it.
type Resolver struct {
	enumerator SymbolEnumerator

	// Per process, the loaded images ordered by base address ascending.
	pidImages map[Pid][]imageEntry

	// Sorted symbol tables keyed by image identity.
	symbolCache *freelru.LRU[Image, []Symbol]
}

// NewResolver returns a resolver backed by the given enumerator.
func NewResolver(enumerator SymbolEnumerator) *Resolver {
	cache, err := freelru.New[Image, []Symbol](symbolCacheSize, hashImage)
	if err != nil {
		panic(err)
	}
	return &Resolver{
		enumerator:  enumerator,
		pidImages:   make(map[Pid][]imageEntry),
		symbolCache: cache,
	}
}

// LoadImage records that image was loaded into pid at base. A second load
// at the same (pid, base) overwrites the previous entry.
func (r *Resolver) LoadImage(pid Pid, base Address, image Image) {
	entries := r.pidImages[pid]
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].base >= base
	})
	if idx < len(entries) && entries[idx].base == base {
		entries[idx].image = image
		r.pidImages[pid] = entries
		return
	}
	r.pidImages[pid] = slices.Insert(entries, idx,
		imageEntry{base: base, image: image})
}

// UnloadImage removes the entry at (pid, base). Absent pids or bases are
// tolerated. The pid bucket persists even when emptied.
func (r *Resolver) UnloadImage(pid Pid, base Address) {
	entries, ok := r.pidImages[pid]
	if !ok {
		return
	}
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].base >= base
	})
	if idx < len(entries) && entries[idx].base == base {
		r.pidImages[pid] = slices.Delete(entries, idx, idx+1)
	}
}

// FindImage returns the image whose interval [base, base+size) contains
// address. Ambiguity from overlapping intervals resolves to the greatest
// base not exceeding the address.
func (r *Resolver) FindImage(pid Pid, address Address) (Image, Address, bool) {
	entries := r.pidImages[pid]
	// Predecessor: greatest base <= address.
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].base > address
	}) - 1
	if idx < 0 {
		return Image{}, 0, false
	}
	entry := entries[idx]
	if uint64(address) >= uint64(entry.base)+entry.image.Size {
		return Image{}, 0, false
	}
	return entry.image, entry.base, true
}

// ResolveSymbol maps an address to the symbol containing it. The symbol
// table of the containing image is built on first use and cached. The
// upper bound is closed: an address exactly at offset+size still resolves
// to the preceding symbol.
func (r *Resolver) ResolveSymbol(pid Pid, address Address) (Symbol, error) {
	image, base, ok := r.FindImage(pid, address)
	if !ok {
		return Symbol{}, ErrNoImage
	}

	table, err := r.imageSymbols(image)
	if err != nil {
		return Symbol{}, err
	}

	offset := uint64(address - base)
	// Predecessor: greatest symbol offset <= offset.
	idx := sort.Search(len(table), func(i int) bool {
		return table[i].Offset > offset
	}) - 1
	if idx < 0 {
		return Symbol{}, ErrNoSymbol
	}
	sym := table[idx]
	if offset > sym.Offset+sym.Size {
		return Symbol{}, ErrNoSymbol
	}
	return sym, nil
}

// imageSymbols fetches or builds the sorted symbol table for an image.
func (r *Resolver) imageSymbols(image Image) ([]Symbol, error) {
	if table, ok := r.symbolCache.Get(image); ok {
		return table, nil
	}
	table, err := r.enumerator.Enumerate(image)
	if err != nil {
		return nil, err
	}
	sort.Slice(table, func(i, j int) bool {
		return table[i].Offset < table[j].Offset
	})
	r.symbolCache.Add(image, table)
	return table, nil
}
