package demo

import (
	"fmt"

	"github.com/zsiec/demparse/bitstream"
	"github.com/zsiec/demparse/netmsg"
)

// PacketKind is the type code of a top-level packet.
type PacketKind uint8

const (
	KindSignOn       PacketKind = 1
	KindPacket       PacketKind = 2
	KindSyncTick     PacketKind = 3
	KindConsoleCmd   PacketKind = 4
	KindUserCmd      PacketKind = 5
	KindDataTables   PacketKind = 6
	KindStop         PacketKind = 7
	KindStringTables PacketKind = 8
)

var kindNames = map[PacketKind]string{
	KindSignOn:       "SignOn",
	KindPacket:       "Packet",
	KindSyncTick:     "SyncTick",
	KindConsoleCmd:   "ConsoleCmd",
	KindUserCmd:      "UserCmd",
	KindDataTables:   "DataTables",
	KindStop:         "Stop",
	KindStringTables: "StringTables",
}

func (k PacketKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("packet(%d)", uint8(k))
}

// Packet is one top-level packet of the demo stream.
type Packet interface {
	Kind() PacketKind
	Tick() int32
}

type tickField struct {
	tick int32
}

func (t tickField) Tick() int32 { return t.tick }

// CmdInfo holds the view state recorded with a payload packet, for the
// primary and the split-screen player.
type CmdInfo struct {
	Flags            int32
	ViewOrigin       [3]float32
	ViewAngles       [3]float32
	LocalViewAngles  [3]float32
	ViewOrigin2      [3]float32
	ViewAngles2      [3]float32
	LocalViewAngles2 [3]float32
}

// Payload is the body shared by SignOn and Packet. Size is in bytes; the
// messages are decoded from exactly Size bytes following it.
type Payload struct {
	CmdInfo     CmdInfo
	InSequence  int32
	OutSequence int32
	Size        int32
	Messages    []netmsg.Message
}

// SignOn carries the messages exchanged while the client connects.
type SignOn struct {
	tickField
	Payload
}

// NetPacket carries the messages of one network frame.
type NetPacket struct {
	tickField
	Payload
}

// SyncTick marks the tick the playback clock synchronises to.
type SyncTick struct {
	tickField
}

// ConsoleCmd is a console command typed during recording.
type ConsoleCmd struct {
	tickField
	Size    int32
	Command string
}

// UserCmdInfo holds the delta-encoded fields of a user command. Fields
// absent from the delta are nil.
type UserCmdInfo struct {
	CommandNumber *int32
	TickCount     *int32
	ViewAngles    [3]*float32
	ForwardMove   *float32
	SideMove      *float32
	UpMove        *float32
	Buttons       *int32
	Impulse       *uint8
	WeaponSelect  *int16
	WeaponSubtype *uint8
	MouseDx       *int16
	MouseDy       *int16
}

// UserCmd is one player input frame.
type UserCmd struct {
	tickField
	Command int32
	Size    int32
	Info    UserCmdInfo
}

// DataTables carries the send table definitions; the content is skipped.
type DataTables struct {
	tickField
	Size int32
}

// Stop ends the packet stream.
type Stop struct {
	tickField
}

// StringTables carries a string table snapshot; the content is skipped.
type StringTables struct {
	tickField
	Size int32
}

func (*SignOn) Kind() PacketKind       { return KindSignOn }
func (*NetPacket) Kind() PacketKind    { return KindPacket }
func (*SyncTick) Kind() PacketKind     { return KindSyncTick }
func (*ConsoleCmd) Kind() PacketKind   { return KindConsoleCmd }
func (*UserCmd) Kind() PacketKind      { return KindUserCmd }
func (*DataTables) Kind() PacketKind   { return KindDataTables }
func (*Stop) Kind() PacketKind         { return KindStop }
func (*StringTables) Kind() PacketKind { return KindStringTables }

const (
	stopTickBits      = 24
	impulseBits       = 8
	weaponSelectBits  = 11
	weaponSubtypeBits = 6
	mouseDeltaBits    = 16
)

type packetDecodeFunc func(r *bitstream.Reader, s *netmsg.Session, tick int32) (Packet, error)

var packetDecoders = map[PacketKind]packetDecodeFunc{
	KindSignOn:       decodeSignOn,
	KindPacket:       decodeNetPacket,
	KindSyncTick:     decodeSyncTick,
	KindConsoleCmd:   decodeConsoleCmd,
	KindUserCmd:      decodeUserCmd,
	KindDataTables:   decodeDataTables,
	KindStringTables: decodeStringTables,
}

func readVector(r *bitstream.Reader) [3]float32 {
	return [3]float32{r.ReadFloat(32), r.ReadFloat(32), r.ReadFloat(32)}
}

func readCmdInfo(r *bitstream.Reader) CmdInfo {
	return CmdInfo{
		Flags:            r.ReadInt(32),
		ViewOrigin:       readVector(r),
		ViewAngles:       readVector(r),
		LocalViewAngles:  readVector(r),
		ViewOrigin2:      readVector(r),
		ViewAngles2:      readVector(r),
		LocalViewAngles2: readVector(r),
	}
}

func decodePayload(r *bitstream.Reader, s *netmsg.Session) (Payload, error) {
	p := Payload{
		CmdInfo:     readCmdInfo(r),
		InSequence:  r.ReadInt(32),
		OutSequence: r.ReadInt(32),
		Size:        r.ReadInt(32),
	}
	view := r.SplitAndSkip(int(p.Size) * 8)
	if err := r.Err(); err != nil {
		return p, err
	}
	msgs, err := netmsg.DecodeMessages(view, s)
	p.Messages = msgs
	return p, err
}

func decodeSignOn(r *bitstream.Reader, s *netmsg.Session, tick int32) (Packet, error) {
	p, err := decodePayload(r, s)
	if err != nil {
		return nil, err
	}
	return &SignOn{tickField{tick}, p}, nil
}

func decodeNetPacket(r *bitstream.Reader, s *netmsg.Session, tick int32) (Packet, error) {
	p, err := decodePayload(r, s)
	if err != nil {
		return nil, err
	}
	return &NetPacket{tickField{tick}, p}, nil
}

func decodeSyncTick(_ *bitstream.Reader, _ *netmsg.Session, tick int32) (Packet, error) {
	return &SyncTick{tickField{tick}}, nil
}

func decodeConsoleCmd(r *bitstream.Reader, _ *netmsg.Session, tick int32) (Packet, error) {
	p := &ConsoleCmd{tickField: tickField{tick}, Size: r.ReadInt(32)}
	bits := int(p.Size) * 8
	view := r.SplitAndSkip(bits)
	if err := r.Err(); err != nil {
		return nil, err
	}
	p.Command = view.ReadString(bits)
	return p, view.Err()
}

// optional reads a presence bit and, if set, the value read by read.
func optional[T any](r *bitstream.Reader, read func() T) *T {
	if !r.ReadBool() {
		return nil
	}
	v := read()
	return &v
}

func decodeUserCmdInfo(r *bitstream.Reader) UserCmdInfo {
	int32Field := func() int32 { return r.ReadInt(32) }
	floatField := func() float32 { return r.ReadFloat(32) }

	info := UserCmdInfo{
		CommandNumber: optional(r, int32Field),
		TickCount:     optional(r, int32Field),
	}
	for i := range info.ViewAngles {
		info.ViewAngles[i] = optional(r, floatField)
	}
	info.ForwardMove = optional(r, floatField)
	info.SideMove = optional(r, floatField)
	info.UpMove = optional(r, floatField)
	info.Buttons = optional(r, int32Field)
	info.Impulse = optional(r, func() uint8 { return r.ReadUint8(impulseBits) })
	info.WeaponSelect = optional(r, func() int16 { return r.ReadShort(weaponSelectBits) })
	if info.WeaponSelect != nil {
		info.WeaponSubtype = optional(r, func() uint8 { return r.ReadUint8(weaponSubtypeBits) })
	}
	mouse := func() int16 { return int16(r.ReadSint(mouseDeltaBits)) }
	info.MouseDx = optional(r, mouse)
	info.MouseDy = optional(r, mouse)
	return info
}

func decodeUserCmd(r *bitstream.Reader, _ *netmsg.Session, tick int32) (Packet, error) {
	p := &UserCmd{
		tickField: tickField{tick},
		Command:   r.ReadInt(32),
		Size:      r.ReadInt(32),
	}
	view := r.SplitAndSkip(int(p.Size) * 8)
	if err := r.Err(); err != nil {
		return nil, err
	}
	p.Info = decodeUserCmdInfo(view)
	return p, view.Err()
}

func decodeDataTables(r *bitstream.Reader, _ *netmsg.Session, tick int32) (Packet, error) {
	p := &DataTables{tickField: tickField{tick}, Size: r.ReadInt(32)}
	r.Skip(int(p.Size) * 8)
	return p, nil
}

func decodeStringTables(r *bitstream.Reader, _ *netmsg.Session, tick int32) (Packet, error) {
	p := &StringTables{tickField: tickField{tick}, Size: r.ReadInt(32)}
	r.Skip(int(p.Size) * 8)
	return p, nil
}
