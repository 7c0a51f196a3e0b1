package bitstream

import (
	"errors"
	"testing"
)

func FuzzReader(f *testing.F) {
	f.Add([]byte{0x01, 0x02, 0x03}, uint8(7))
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, uint8(61))
	f.Fuzz(func(t *testing.T, data []byte, width uint8) {
		n := int(width%64) + 1
		r := NewReader(data)
		for r.Err() == nil {
			before := r.Pos()
			r.ReadBits(n)
			if r.Pos() > r.Len() {
				t.Fatalf("cursor %d past end %d", r.Pos(), r.Len())
			}
			if r.Err() != nil && !errors.Is(r.Err(), ErrOutOfBounds) {
				t.Fatalf("unexpected error %v", r.Err())
			}
			if r.Err() == nil && r.Pos() != before+n {
				t.Fatalf("advanced %d bits, want %d", r.Pos()-before, n)
			}
		}
	})
}

func BenchmarkReadBits(b *testing.B) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i * 31)
	}
	b.SetBytes(int64(len(data)))

	for b.Loop() {
		r := NewReader(data)
		for r.BitsLeft() >= 13 {
			r.ReadBits(13)
		}
	}
}
