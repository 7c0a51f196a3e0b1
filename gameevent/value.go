// Package gameevent implements the two-phase event schema of a demo: a
// GameEventList message defines event descriptors, and later GameEvent
// messages are decoded by looking their identifier up in that list.
//
// The schema must be registered before any event that uses it is decoded.
// A lookup for an identifier the registry does not hold fails with
// [ErrSchemaLookup].
package gameevent

import (
	"fmt"

	"github.com/zsiec/demparse/bitstream"
	"github.com/zsiec/demparse/protocol"
)

// ValueType is the wire type of an event key. Tag 0 terminates a key list
// and is not a value type.
type ValueType uint8

const (
	TypeString ValueType = iota + 1
	TypeFloat
	TypeInt32
	TypeInt16
	TypeUInt8
	TypeBool
	TypeUInt64
)

var valueTypeNames = [...]string{
	TypeString: "string",
	TypeFloat:  "float",
	TypeInt32:  "int32",
	TypeInt16:  "int16",
	TypeUInt8:  "uint8",
	TypeBool:   "bool",
	TypeUInt64: "uint64",
}

func (t ValueType) String() string {
	if t >= TypeString && t <= TypeUInt64 {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("valuetype(%d)", uint8(t))
}

// ParseValueType maps a wire tag to its ValueType. Tags outside 1-7 fail
// with protocol.ErrUnknownTag.
func ParseValueType(tag uint8) (ValueType, error) {
	t := ValueType(tag)
	if t < TypeString || t > TypeUInt64 {
		return 0, fmt.Errorf("%w: event value type %d", protocol.ErrUnknownTag, tag)
	}
	return t, nil
}

// Value is one decoded event value. The concrete types are String, Float,
// Int32, Int16, UInt8, Bool and UInt64.
type Value interface {
	Type() ValueType
}

type (
	String string
	Float  float32
	Int32  int32
	Int16  int16
	UInt8  uint8
	Bool   bool
	UInt64 uint64
)

func (String) Type() ValueType { return TypeString }
func (Float) Type() ValueType  { return TypeFloat }
func (Int32) Type() ValueType  { return TypeInt32 }
func (Int16) Type() ValueType  { return TypeInt16 }
func (UInt8) Type() ValueType  { return TypeUInt8 }
func (Bool) Type() ValueType   { return TypeBool }
func (UInt64) Type() ValueType { return TypeUInt64 }

func readValue(r *bitstream.Reader, t ValueType) (Value, error) {
	switch t {
	case TypeString:
		return String(r.ReadStringNulled()), nil
	case TypeFloat:
		return Float(r.ReadFloat(32)), nil
	case TypeInt32:
		return Int32(r.ReadInt(32)), nil
	case TypeInt16:
		return Int16(r.ReadShort(16)), nil
	case TypeUInt8:
		return UInt8(r.ReadUint8(8)), nil
	case TypeBool:
		return Bool(r.ReadBool()), nil
	case TypeUInt64:
		return UInt64(r.ReadUint64()), nil
	}
	return nil, fmt.Errorf("%w: event value type %d", protocol.ErrUnknownTag, uint8(t))
}
