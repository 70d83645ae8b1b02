// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

// Package etw decodes raw ETW kernel trace records into typed event trees
// and drives trace parsing end to end.
package etw // import "github.com/fdoray/libtrace/etw"

import (
	"encoding/binary"
	"errors"

	"github.com/fdoray/libtrace/event"
)

// ErrTruncated is returned when a read would cross the end of the payload.
var ErrTruncated = errors.New("payload truncated")

// Decoder is a little-endian cursor over a raw event payload.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a cursor positioned at the start of buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// RemainingBytes returns the unread byte count.
func (d *Decoder) RemainingBytes() int {
	return len(d.buf) - d.pos
}

// Lookup reads the byte at the given offset from the current position
// without advancing.
func (d *Decoder) Lookup(offset int) (byte, error) {
	if d.pos+offset >= len(d.buf) {
		return 0, ErrTruncated
	}
	return d.buf[d.pos+offset], nil
}

func (d *Decoder) take(n int) ([]byte, error) {
	if d.RemainingBytes() < n {
		return nil, ErrTruncated
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Int8() (int8, error) {
	v, err := d.Uint8()
	return int8(v), err
}

func (d *Decoder) Uint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) Int16() (int16, error) {
	v, err := d.Uint16()
	return int16(v), err
}

func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

func (d *Decoder) Uint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) Int64() (int64, error) {
	v, err := d.Uint64()
	return int64(v), err
}

// Pointer reads a pointer-sized unsigned integer per the bitness flag and
// widens it to uint64.
func (d *Decoder) Pointer(is64Bit bool) (uint64, error) {
	if is64Bit {
		return d.Uint64()
	}
	v, err := d.Uint32()
	return uint64(v), err
}

// Bytes reads n raw bytes.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	return d.take(n)
}

// W16String reads UTF-16 code units up to a NUL terminator. The terminator
// is consumed but not part of the returned value. Fails if the buffer ends
// before a terminator is seen.
func (d *Decoder) W16String() (event.WString, error) {
	var units []uint16
	for {
		u, err := d.Uint16()
		if err != nil {
			return event.WString{}, err
		}
		if u == 0 {
			return event.NewWString(units), nil
		}
		units = append(units, u)
	}
}

// FixedW16String reads exactly length code units, truncating the returned
// value at the first NUL; the cursor always advances by the full length.
func (d *Decoder) FixedW16String(length int) (event.WString, error) {
	b, err := d.take(2 * length)
	if err != nil {
		return event.WString{}, err
	}
	var units []uint16
	for i := 0; i < length; i++ {
		u := binary.LittleEndian.Uint16(b[2*i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return event.NewWString(units), nil
}

// NarrowString reads bytes up to a NUL terminator. The terminator is
// consumed but not part of the returned value.
func (d *Decoder) NarrowString() (event.String, error) {
	var bytes []byte
	for {
		b, err := d.Uint8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return event.String(bytes), nil
		}
		bytes = append(bytes, b)
	}
}
