package gameevent

import (
	"errors"
	"fmt"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/zsiec/demparse/bitstream"
	"github.com/zsiec/demparse/protocol"
)

const (
	eventIDBits   = 9
	valueTypeBits = 3
)

// ErrSchemaLookup is returned when an event refers to an identifier that
// the registry does not hold.
var ErrSchemaLookup = errors.New("gameevent: schema lookup failed")

// Descriptor defines the keys of one event kind, in wire order.
type Descriptor struct {
	ID   int
	Name string
	Keys *orderedmap.OrderedMap[string, ValueType]
}

// DecodeDescriptor reads an event id, its name and the (type, key name)
// pairs up to the terminating zero type.
func DecodeDescriptor(r *bitstream.Reader) (*Descriptor, error) {
	d := &Descriptor{
		ID:   int(r.ReadUint(eventIDBits)),
		Name: r.ReadStringNulled(),
		Keys: orderedmap.NewOrderedMap[string, ValueType](),
	}
	for r.Err() == nil {
		tag := r.ReadUint8(valueTypeBits)
		if tag == 0 || r.Err() != nil {
			break
		}
		t, err := ParseValueType(tag)
		if err != nil {
			return nil, err
		}
		d.Keys.Set(r.ReadStringNulled(), t)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// Registry holds the most recently decoded event descriptor list. A
// descriptor's position in the list is its event identifier. A Registry
// belongs to a single decode session and is not safe for concurrent use.
type Registry struct {
	descriptors []*Descriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Replace swaps in a new descriptor list; the previous list is discarded.
func (reg *Registry) Replace(list []*Descriptor) {
	reg.descriptors = list
}

// Len returns the number of registered descriptors.
func (reg *Registry) Len() int { return len(reg.descriptors) }

// Descriptors returns the registered list.
func (reg *Registry) Descriptors() []*Descriptor { return reg.descriptors }

// Lookup returns the descriptor at position id.
func (reg *Registry) Lookup(id int) (*Descriptor, error) {
	if id < 0 || id >= len(reg.descriptors) {
		return nil, fmt.Errorf("%w: event id %d, %d registered", ErrSchemaLookup, id, len(reg.descriptors))
	}
	return reg.descriptors[id], nil
}

// Event is a decoded game event.
type Event struct {
	ID     int
	Name   string
	Values *orderedmap.OrderedMap[string, Value]
}

// DecodeEvent reads an event id, resolves its descriptor in reg and reads
// one value per key definition.
func DecodeEvent(r *bitstream.Reader, reg *Registry) (*Event, error) {
	id := int(r.ReadUint(eventIDBits))
	if err := r.Err(); err != nil {
		return nil, err
	}
	d, err := reg.Lookup(id)
	if err != nil {
		return nil, err
	}

	ev := &Event{
		ID:     id,
		Name:   d.Name,
		Values: orderedmap.NewOrderedMapWithCapacity[string, Value](d.Keys.Len()),
	}
	for name, t := range d.Keys.AllFromFront() {
		start := r.Pos()
		v, err := readValue(r, t)
		if err == nil {
			err = r.Err()
		}
		if err != nil {
			return nil, &protocol.DecodeError{Field: d.Name + "." + name, Offset: start, Err: err}
		}
		ev.Values.Set(name, v)
	}
	return ev, nil
}
