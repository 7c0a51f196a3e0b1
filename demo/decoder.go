// Package demo decodes recorded demo files: the header, the protocol profile
// derived from it and the packet stream up to the terminating Stop packet.
//
// Decoding is strictly sequential within a file because event schema
// messages must be seen before the events that use them. Independent files
// can be decoded concurrently with DecodeFiles; each decode owns its own
// netmsg.Session.
package demo

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zsiec/demparse/bitstream"
	"github.com/zsiec/demparse/gameevent"
	"github.com/zsiec/demparse/netmsg"
	"github.com/zsiec/demparse/protocol"
)

// Demo is a fully decoded demo file.
type Demo struct {
	Header  Header
	Profile protocol.Profile
	Packets []Packet
	// Events is the event schema in effect when decoding finished.
	Events *gameevent.Registry
}

// KindCounts returns the number of packets of each kind.
func (d *Demo) KindCounts() map[PacketKind]int {
	counts := make(map[PacketKind]int, len(kindNames))
	for _, p := range d.Packets {
		counts[p.Kind()]++
	}
	return counts
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for debug output. A nil logger selects
// slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(d *Decoder) {
		d.base = log
	}
}

// Decoder decodes demo files. A Decoder holds no per-file state and may be
// used from multiple goroutines.
type Decoder struct {
	base *slog.Logger
	log  *slog.Logger
}

// NewDecoder returns a Decoder configured by opts.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	if d.base == nil {
		d.base = slog.Default()
	}
	d.log = d.base.With("component", "demo")
	return d
}

// DecodeFile reads the file at path into memory and decodes it.
func (d *Decoder) DecodeFile(path string) (*Demo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}
	return d.Decode(data)
}

// Decode decodes a complete demo held in data. The protocol profile is
// resolved from the header before any packet is read. If a packet fails to
// decode, the returned Demo holds the packets decoded before it alongside
// the error.
func (d *Decoder) Decode(data []byte) (*Demo, error) {
	r := bitstream.NewReader(data)
	h, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	p, err := protocol.Resolve(h.DemoProtocol, h.NetworkProtocol)
	if err != nil {
		return nil, err
	}
	d.log.Debug("profile resolved",
		"demo_protocol", p.DemoProtocol,
		"network_protocol", p.NetworkProtocol,
		"game", p.Game,
	)

	s := netmsg.NewSession(p, d.base)
	dem := &Demo{Header: *h, Profile: p, Events: s.Events}
	dem.Packets, err = decodePackets(r, s)
	if err != nil {
		return dem, err
	}
	d.log.Debug("decode finished", "packets", len(dem.Packets), "events", s.Events.Len())
	return dem, nil
}

// decodePackets reads packets until the first Stop. Bytes after the Stop
// packet are ignored.
func decodePackets(r *bitstream.Reader, s *netmsg.Session) ([]Packet, error) {
	var packets []Packet
	for {
		start := r.Pos()
		kind := PacketKind(r.ReadUint8(8))
		if err := r.Err(); err != nil {
			return packets, &protocol.DecodeError{Field: "packet type", Offset: start, Err: err}
		}

		if kind == KindStop {
			tick := r.ReadInt(stopTickBits)
			if err := r.Err(); err != nil {
				return packets, &protocol.DecodeError{Field: kind.String(), Offset: start, Err: err}
			}
			return append(packets, &Stop{tickField{tick}}), nil
		}

		decode, ok := packetDecoders[kind]
		if !ok {
			return packets, &protocol.DecodeError{
				Field:  "packet type",
				Offset: start,
				Err:    fmt.Errorf("%w: packet type %d", protocol.ErrUnknownTag, uint8(kind)),
			}
		}
		tick := r.ReadInt(32)
		pkt, err := decode(r, s, tick)
		if err == nil {
			err = r.Err()
		}
		if err != nil {
			return packets, &protocol.DecodeError{Field: kind.String(), Offset: start, Err: err}
		}
		packets = append(packets, pkt)
	}
}
