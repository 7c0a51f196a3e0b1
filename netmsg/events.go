package netmsg

import (
	"github.com/zsiec/demparse/bitstream"
	"github.com/zsiec/demparse/gameevent"
)

const (
	gameEventLengthBits     = 16
	gameEventCountBits      = 9
	gameEventListLengthBits = 20
)

// GameEvent carries one event decoded against the session's event schema.
type GameEvent struct {
	Length int16
	Event  *gameevent.Event
}

// GameEventList defines the event schema. Decoding it replaces the
// session's registry.
type GameEventList struct {
	Events      int16
	Length      int32
	Descriptors []*gameevent.Descriptor
}

func (*GameEvent) Type() MessageType     { return TypeGameEvent }
func (*GameEventList) Type() MessageType { return TypeGameEventList }

func decodeGameEvent(r *bitstream.Reader, s *Session) (Message, error) {
	m := &GameEvent{Length: r.ReadShort(gameEventLengthBits)}
	view := r.SplitAndSkip(int(uint16(m.Length)))
	if err := r.Err(); err != nil {
		return nil, err
	}
	ev, err := gameevent.DecodeEvent(view, s.Events)
	if err != nil {
		return nil, err
	}
	m.Event = ev
	return m, nil
}

func decodeGameEventList(r *bitstream.Reader, s *Session) (Message, error) {
	m := &GameEventList{
		Events: r.ReadShort(gameEventCountBits),
		Length: r.ReadInt(gameEventListLengthBits),
	}
	view := r.SplitAndSkip(int(m.Length))
	if err := r.Err(); err != nil {
		return nil, err
	}
	m.Descriptors = make([]*gameevent.Descriptor, 0, m.Events)
	for i := 0; i < int(m.Events); i++ {
		d, err := gameevent.DecodeDescriptor(view)
		if err != nil {
			return nil, err
		}
		m.Descriptors = append(m.Descriptors, d)
	}
	s.Events.Replace(m.Descriptors)
	s.logger().Debug("event schema replaced", "descriptors", len(m.Descriptors))
	return m, nil
}
