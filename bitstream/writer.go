package bitstream

import "math"

// Writer appends bit fields LSB-first, mirroring Reader. Demo files are never
// re-encoded; Writer exists to build fixtures for decoder tests and fuzz seeds.
type Writer struct {
	data   []byte
	bitPos int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// PutBits appends the low n bits of v.
func (w *Writer) PutBits(n int, v uint64) {
	for i := 0; i < n; i++ {
		if w.bitPos/8 >= len(w.data) {
			w.data = append(w.data, 0)
		}
		if (v>>uint(i))&1 == 1 {
			w.data[w.bitPos/8] |= 1 << uint(w.bitPos%8)
		}
		w.bitPos++
	}
}

// PutBool appends a single bit.
func (w *Writer) PutBool(b bool) {
	var v uint64
	if b {
		v = 1
	}
	w.PutBits(1, v)
}

// PutInt appends the low n bits of a signed value.
func (w *Writer) PutInt(n int, v int64) {
	w.PutBits(n, uint64(v))
}

// PutFloat appends the 32-bit IEEE 754 representation of f.
func (w *Writer) PutFloat(f float32) {
	w.PutBits(32, uint64(math.Float32bits(f)))
}

// PutVarInt32 appends v as 7-bit groups with continuation bits.
func (w *Writer) PutVarInt32(v uint32) {
	for {
		b := v & 0x7F
		v >>= 7
		if v == 0 {
			w.PutBits(8, uint64(b))
			return
		}
		w.PutBits(8, uint64(b|0x80))
	}
}

// PutBytes appends raw bytes at the current bit offset.
func (w *Writer) PutBytes(b []byte) {
	for _, v := range b {
		w.PutBits(8, uint64(v))
	}
}

// PutStringNulled appends s followed by a zero byte.
func (w *Writer) PutStringNulled(s string) {
	w.PutBytes([]byte(s))
	w.PutBits(8, 0)
}

// PutString appends s nul-padded to size bytes.
func (w *Writer) PutString(s string, size int) {
	buf := make([]byte, size)
	copy(buf, s)
	w.PutBytes(buf)
}

// Len returns the number of bits written.
func (w *Writer) Len() int { return w.bitPos }

// Bytes returns the written buffer. A partial final byte is zero-padded.
func (w *Writer) Bytes() []byte { return w.data }
