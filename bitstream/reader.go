// Package bitstream implements the bit-addressable cursor every demo decoder
// reads through. Bits are consumed LSB-first from a 64-bit little-endian
// window that is refetched from the backing buffer only when a read crosses
// its end.
//
// Reads follow a sticky-error model: the first failure is recorded, later
// reads return zero values without moving the cursor, and callers check
// [Reader.Err] once after a group of reads.
package bitstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOutOfBounds is reported when a read or skip would move the cursor
	// past the end of the buffer (or of a bounded view).
	ErrOutOfBounds = errors.New("bitstream: read out of bounds")

	// ErrInvalidWidth is reported for reads wider than 64 bits or negative
	// widths.
	ErrInvalidWidth = errors.New("bitstream: invalid bit width")
)

// Reader reads bit fields from an in-memory buffer.
type Reader struct {
	data   []byte
	limit  int // bit length visible to this reader
	pos    int
	window uint64
	base   int // bit index of the window's first bit
	err    error
}

// NewReader returns a Reader positioned at the first bit of data.
func NewReader(data []byte) *Reader {
	r := &Reader{data: data, limit: len(data) * 8}
	r.fetch()
	return r
}

func (r *Reader) fetch() {
	block := r.pos / 8
	var buf [8]byte
	if block < len(r.data) {
		copy(buf[:], r.data[block:])
	}
	r.window = binary.LittleEndian.Uint64(buf[:])
	r.base = block * 8
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Pos returns the current bit offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of bits visible to the reader.
func (r *Reader) Len() int { return r.limit }

// BitsLeft returns the number of unread bits.
func (r *Reader) BitsLeft() int {
	if r.pos > r.limit {
		return 0
	}
	return r.limit - r.pos
}

func (r *Reader) fail(n int) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %d + %d > %d", ErrOutOfBounds, r.pos, n, r.limit)
	}
}

func (r *Reader) check(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 {
		r.err = fmt.Errorf("%w: %d", ErrInvalidWidth, n)
		return false
	}
	if r.pos+n > r.limit {
		r.fail(n)
		return false
	}
	return true
}

func mask(n int) uint64 {
	if n >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(n) - 1
}

// ReadBits returns the next n bits (n <= 64) as an unsigned value.
func (r *Reader) ReadBits(n int) uint64 {
	if n > 64 {
		if r.err == nil {
			r.err = fmt.Errorf("%w: %d", ErrInvalidWidth, n)
		}
		return 0
	}
	if n == 0 || !r.check(n) {
		return 0
	}

	off := r.pos - r.base
	var val uint64
	shift := 0
	if remain := 64 - off; n > remain {
		// Drain the window, refetch, then take the rest from the new one.
		if remain > 0 {
			val = r.window >> uint(off)
		}
		r.pos += remain
		r.fetch()
		n -= remain
		shift = remain
		off = 0
	}
	val |= ((r.window >> uint(off)) & mask(n)) << uint(shift)
	r.pos += n
	return val
}

// ReadUint reads n bits as an unsigned 32-bit value.
func (r *Reader) ReadUint(n int) uint32 { return uint32(r.ReadBits(n)) }

// ReadInt reads n bits and reinterprets them as a signed 32-bit value
// without sign extension.
func (r *Reader) ReadInt(n int) int32 { return int32(uint32(r.ReadBits(n))) }

// ReadShort reads n bits truncated to a signed 16-bit value.
func (r *Reader) ReadShort(n int) int16 { return int16(r.ReadInt(n)) }

// ReadUint8 reads n bits truncated to an unsigned 8-bit value.
func (r *Reader) ReadUint8(n int) uint8 { return uint8(r.ReadBits(n)) }

// ReadUint64 reads a full 64-bit field.
func (r *Reader) ReadUint64() uint64 { return r.ReadBits(64) }

// ReadSint reads an n-bit two's-complement field, extending bit n-1 across
// the high bits.
func (r *Reader) ReadSint(n int) int32 {
	v := r.ReadBits(n)
	if n > 0 && n < 64 && v&(1<<uint(n-1)) != 0 {
		v |= math.MaxUint64 << uint(n)
	}
	return int32(v)
}

// ReadBool reads a single bit.
func (r *Reader) ReadBool() bool { return r.ReadBits(1) != 0 }

// ReadVarInt32 reads up to five 7-bit groups, least significant group
// first, stopping at the first group whose continuation bit is clear.
func (r *Reader) ReadVarInt32() int32 {
	var v uint32
	for i := 0; i < 5; i++ {
		b := uint32(r.ReadBits(8))
		v |= (b & 0x7F) << uint(7*i)
		if b&0x80 == 0 {
			break
		}
	}
	return int32(v)
}

// ReadFloat reinterprets n bits as an IEEE 754 single and rounds it to
// three decimal places.
func (r *Reader) ReadFloat(n int) float32 {
	f := math.Float32frombits(uint32(r.ReadBits(n)))
	return float32(math.Round(float64(f*1000))) / 1000
}

// ReadBytes reads n whole bytes starting at the current bit offset.
func (r *Reader) ReadBytes(n int) []byte {
	if !r.check(n * 8) {
		return nil
	}
	out := make([]byte, n)
	if r.pos%8 == 0 {
		start := r.pos / 8
		copy(out, r.data[start:start+n])
		r.Skip(n * 8)
		return out
	}
	for i := range out {
		out[i] = byte(r.ReadBits(8))
	}
	return out
}

// ReadStringNulled reads bytes up to and excluding a zero byte.
func (r *Reader) ReadStringNulled() string {
	var buf []byte
	for {
		c := byte(r.ReadBits(8))
		if c == 0 || r.err != nil {
			break
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// ReadString reads a fixed-width field of bits/8 bytes and drops the
// nul padding.
func (r *Reader) ReadString(bits int) string {
	buf := r.ReadBytes(bits / 8)
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf)
}

// Skip advances the cursor by n bits.
func (r *Reader) Skip(n int) {
	if !r.check(n) {
		return
	}
	r.pos += n
	r.fetch()
}

// SplitAndSkip returns a view positioned at the current offset and bounded
// to the next n bits, then advances the receiver by exactly n bits. Whatever
// the view consumes, the receiver lands at the end of the region.
func (r *Reader) SplitAndSkip(n int) *Reader {
	if !r.check(n) {
		return &Reader{err: r.err}
	}
	view := *r
	view.limit = r.pos + n
	r.Skip(n)
	return &view
}
