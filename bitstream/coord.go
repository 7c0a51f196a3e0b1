package bitstream

import "math/bits"

const (
	coordIntegerBits    = 14
	coordFractionalBits = 5
	coordResolution     = 1.0 / (1 << coordFractionalBits)
)

// BitLength returns the smallest j with 2^j > x.
func BitLength(x uint) int { return bits.Len(x) }

// ReadVectorCoord reads one engine coordinate: integer and fraction
// presence bits, then a sign bit if either is present, a 14-bit integer part
// stored minus one and a 5-bit fraction in 1/32 units.
func (r *Reader) ReadVectorCoord() float32 {
	hasInt := r.ReadBool()
	hasFrac := r.ReadBool()
	if !hasInt && !hasFrac {
		return 0
	}
	negative := r.ReadBool()
	var v float32
	if hasInt {
		v += float32(r.ReadUint(coordIntegerBits) + 1)
	}
	if hasFrac {
		v += float32(r.ReadUint(coordFractionalBits)) * coordResolution
	}
	if negative {
		v = -v
	}
	return v
}

// ReadVectorCoords reads three presence bits followed by a coordinate for
// each axis that is present. Absent axes are nil.
func (r *Reader) ReadVectorCoords() [3]*float32 {
	var present [3]bool
	for i := range present {
		present[i] = r.ReadBool()
	}
	var out [3]*float32
	for i, ok := range present {
		if ok {
			v := r.ReadVectorCoord()
			out[i] = &v
		}
	}
	return out
}
