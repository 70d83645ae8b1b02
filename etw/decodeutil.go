// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

package etw // import "github.com/fdoray/libtrace/etw"

import (
	"github.com/fdoray/libtrace/event"
)

// fieldFunc decodes one named field from the cursor into the struct.
type fieldFunc func(d *Decoder, is64Bit bool, s *event.Struct) error

// layout chains field decoders into a payload decoder. Decoding is a
// straight-line pass over the cursor; trailing unconsumed bytes are
// tolerated (several kernel payloads carry alignment tails).
func layout(fields ...fieldFunc) decodeFunc {
	return func(d *Decoder, is64Bit bool, s *event.Struct) error {
		for _, f := range fields {
			if err := f(d, is64Bit, s); err != nil {
				return err
			}
		}
		return nil
	}
}

func i8(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.Int8()
		if err != nil {
			return err
		}
		s.AddField(name, event.Int8(v))
		return nil
	}
}

func u8(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.Uint8()
		if err != nil {
			return err
		}
		s.AddField(name, event.Uint8(v))
		return nil
	}
}

func i16(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.Int16()
		if err != nil {
			return err
		}
		s.AddField(name, event.Int16(v))
		return nil
	}
}

func u16(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.Uint16()
		if err != nil {
			return err
		}
		s.AddField(name, event.Uint16(v))
		return nil
	}
}

func i32(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.Int32()
		if err != nil {
			return err
		}
		s.AddField(name, event.Int32(v))
		return nil
	}
}

func u32(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.Uint32()
		if err != nil {
			return err
		}
		s.AddField(name, event.Uint32(v))
		return nil
	}
}

func i64(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.Int64()
		if err != nil {
			return err
		}
		s.AddField(name, event.Int64(v))
		return nil
	}
}

func u64(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.Uint64()
		if err != nil {
			return err
		}
		s.AddField(name, event.Uint64(v))
		return nil
	}
}

// ptr reads a pointer-width unsigned integer. The resulting field is
// Uint32 in 32-bit payloads and Uint64 in 64-bit payloads.
func ptr(name string) fieldFunc {
	return func(d *Decoder, is64Bit bool, s *event.Struct) error {
		if is64Bit {
			v, err := d.Uint64()
			if err != nil {
				return err
			}
			s.AddField(name, event.Uint64(v))
			return nil
		}
		v, err := d.Uint32()
		if err != nil {
			return err
		}
		s.AddField(name, event.Uint32(v))
		return nil
	}
}

func nstr(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.NarrowString()
		if err != nil {
			return err
		}
		s.AddField(name, v)
		return nil
	}
}

func wstr(name string) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.W16String()
		if err != nil {
			return err
		}
		s.AddField(name, v)
		return nil
	}
}

func fixedWstr(name string, length int) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		v, err := d.FixedW16String(length)
		if err != nil {
			return err
		}
		s.AddField(name, v)
		return nil
	}
}

// u8Array reads a fixed-length byte array.
func u8Array(name string, length int) fieldFunc {
	return func(d *Decoder, _ bool, s *event.Struct) error {
		b, err := d.Bytes(length)
		if err != nil {
			return err
		}
		arr := event.NewArray()
		for _, x := range b {
			arr.Append(event.Uint8(x))
		}
		s.AddField(name, arr)
		return nil
	}
}

// ptrArrayRest reads pointer-width integers until the payload is
// exhausted. Used by stack walk events.
func ptrArrayRest(name string) fieldFunc {
	return func(d *Decoder, is64Bit bool, s *event.Struct) error {
		width := 4
		if is64Bit {
			width = 8
		}
		arr := event.NewArray()
		for d.RemainingBytes() >= width {
			v, err := d.Pointer(is64Bit)
			if err != nil {
				return err
			}
			if is64Bit {
				arr.Append(event.Uint64(v))
			} else {
				arr.Append(event.Uint32(uint32(v)))
			}
		}
		s.AddField(name, arr)
		return nil
	}
}

const (
	sidMinimumBytes      = 3 * 8
	sidMaxSubAuthorities = 15
)

// sid reads a TOKEN_USER structure followed by the variable-length SID
// body. The body length is 4*SubAuthorityCount+8 where SubAuthorityCount
// is byte 1 of the body, peeked before the read.
func sid(name string) fieldFunc {
	return func(d *Decoder, is64Bit bool, s *event.Struct) error {
		if d.RemainingBytes() < sidMinimumBytes {
			return ErrTruncated
		}

		inner := event.NewStruct()
		if err := ptr("PSid")(d, is64Bit, inner); err != nil {
			return err
		}
		if err := u32("Attributes")(d, is64Bit, inner); err != nil {
			return err
		}
		if is64Bit {
			// Alignment padding between TOKEN_USER and the SID body.
			if _, err := d.Uint32(); err != nil {
				return err
			}
		}

		subAuthorityCount, err := d.Lookup(1)
		if err != nil {
			return err
		}
		if subAuthorityCount > sidMaxSubAuthorities {
			return ErrTruncated
		}
		length := 4*int(subAuthorityCount) + 8
		if err := u8Array("Sid", length)(d, is64Bit, inner); err != nil {
			return err
		}

		s.AddField(name, inner)
		return nil
	}
}

// systemTime reads a SYSTEMTIME structure: eight i16 fields.
func systemTime(name string) fieldFunc {
	return func(d *Decoder, is64Bit bool, s *event.Struct) error {
		inner := event.NewStruct()
		for _, f := range []string{
			"wYear", "wMonth", "wDayOfWeek", "wDay",
			"wHour", "wMinute", "wSecond", "wMilliseconds",
		} {
			if err := i16(f)(d, is64Bit, inner); err != nil {
				return err
			}
		}
		s.AddField(name, inner)
		return nil
	}
}

// timeZoneInformation reads a TIME_ZONE_INFORMATION structure. The name
// fields are fixed 32-code-unit strings.
func timeZoneInformation(name string) fieldFunc {
	return func(d *Decoder, is64Bit bool, s *event.Struct) error {
		inner := event.NewStruct()
		steps := []fieldFunc{
			i32("Bias"),
			fixedWstr("StandardName", 32),
			systemTime("StandardDate"),
			i32("StandardBias"),
			fixedWstr("DaylightName", 32),
			systemTime("DaylightDate"),
			i32("DaylightBias"),
		}
		for _, f := range steps {
			if err := f(d, is64Bit, inner); err != nil {
				return err
			}
		}
		s.AddField(name, inner)
		return nil
	}
}
