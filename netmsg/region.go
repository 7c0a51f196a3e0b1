package netmsg

import "github.com/zsiec/demparse/bitstream"

const (
	netMessageLengthBits = 11
	stringTableIDBits    = 5
	updateLengthBits     = 20
	userDataSizeBits     = 12
	userDataSizeBitsBits = 4
	entityClassBits      = 9
)

// readLength reads a region length of the given width; width 0 selects a
// varint.
func readLength(r *bitstream.Reader, bits int) int32 {
	if bits == 0 {
		return r.ReadVarInt32()
	}
	return r.ReadInt(bits)
}

// SendTable carries a send table definition; the properties are skipped.
type SendTable struct {
	NeedsDecoder bool
	Length       uint8
}

// CreateStringTable creates a string table; the entries are skipped.
type CreateStringTable struct {
	Name              string
	MaxEntries        uint16
	NumEntries        int32
	Length            int32
	UserDataFixedSize bool
	UserDataSize      *int16
	UserDataSizeBits  *uint8
	Flags             uint8
}

// UpdateStringTable changes entries of a string table; the entries are
// skipped.
type UpdateStringTable struct {
	TableID           uint8
	NumChangedEntries int32
	Length            int32
}

// VoiceInit configures the voice codec.
type VoiceInit struct {
	Codec      string
	Quality    uint8
	SampleRate *int32
}

// VoiceData carries voice audio; the audio is skipped.
type VoiceData struct {
	Client    uint8
	Proximity uint8
	Length    int16
	Audible   bool
}

// Sounds carries sound events; the events are skipped.
type Sounds struct {
	ReliableSound bool
	NumSounds     uint8
	Length        int16
}

// SplitScreen manages split-screen users; the payload is skipped.
type SplitScreen struct {
	RemoveUser bool
	Length     int16
}

// UserMessage carries a game-specific user message; the payload is skipped.
type UserMessage struct {
	MessageType uint8
	Length      int16
}

// EntityMessage carries a message for one entity; the payload is skipped.
type EntityMessage struct {
	EntityIndex int16
	ClassID     int16
	Length      int16
}

// PacketEntities carries entity deltas; the deltas are skipped.
type PacketEntities struct {
	MaxEntries     int16
	IsDelta        bool
	DeltaFrom      *int32
	Baseline       bool
	UpdatedEntries int16
	Length         int32
	UpdateBaseline bool
}

// TempEntities carries temporary entities; the entities are skipped.
type TempEntities struct {
	NumEntries uint8
	Length     int32
}

// Menu carries a plugin menu; the key-values are skipped.
type Menu struct {
	MenuType int16
	Length   int32
}

// CmdKeyValues carries serialized key-values; the data is skipped.
type CmdKeyValues struct {
	Length int32
}

func (*SendTable) Type() MessageType         { return TypeSendTable }
func (*CreateStringTable) Type() MessageType { return TypeCreateStringTable }
func (*UpdateStringTable) Type() MessageType { return TypeUpdateStringTable }
func (*VoiceInit) Type() MessageType         { return TypeVoiceInit }
func (*VoiceData) Type() MessageType         { return TypeVoiceData }
func (*Sounds) Type() MessageType            { return TypeSounds }
func (*SplitScreen) Type() MessageType       { return TypeSplitScreen }
func (*UserMessage) Type() MessageType       { return TypeUserMessage }
func (*EntityMessage) Type() MessageType     { return TypeEntityMessage }
func (*PacketEntities) Type() MessageType    { return TypePacketEntities }
func (*TempEntities) Type() MessageType      { return TypeTempEntities }
func (*Menu) Type() MessageType              { return TypeMenu }
func (*CmdKeyValues) Type() MessageType      { return TypeCmdKeyValues }

func decodeSendTable(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &SendTable{
		NeedsDecoder: r.ReadBool(),
		Length:       r.ReadUint8(8),
	}
	r.Skip(int(m.Length))
	return m, nil
}

func decodeCreateStringTable(r *bitstream.Reader, s *Session) (Message, error) {
	p := s.Profile
	m := &CreateStringTable{
		Name:       r.ReadStringNulled(),
		MaxEntries: uint16(r.ReadUint(16)),
	}
	m.NumEntries = r.ReadInt(bitstream.BitLength(uint(m.MaxEntries)))
	m.Length = readLength(r, p.StringTableLengthBits)
	m.UserDataFixedSize = r.ReadBool()
	if m.UserDataFixedSize {
		size := r.ReadShort(userDataSizeBits)
		sizeBits := r.ReadUint8(userDataSizeBitsBits)
		m.UserDataSize = &size
		m.UserDataSizeBits = &sizeBits
	}
	if p.StringTableHasFlags {
		m.Flags = r.ReadUint8(p.StringTableFlagBits)
	}
	r.Skip(int(m.Length))
	return m, nil
}

func decodeUpdateStringTable(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &UpdateStringTable{
		TableID:           r.ReadUint8(stringTableIDBits),
		NumChangedEntries: 1,
	}
	if r.ReadBool() {
		m.NumChangedEntries = r.ReadInt(16)
	}
	m.Length = r.ReadInt(updateLengthBits)
	r.Skip(int(m.Length))
	return m, nil
}

func decodeVoiceInit(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &VoiceInit{
		Codec:   r.ReadStringNulled(),
		Quality: r.ReadUint8(8),
	}
	if m.Quality == 255 {
		rate := r.ReadInt(32)
		m.SampleRate = &rate
	}
	return m, nil
}

func decodeVoiceData(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &VoiceData{
		Client:    r.ReadUint8(8),
		Proximity: r.ReadUint8(8),
		Length:    r.ReadShort(16),
		Audible:   r.ReadBool(),
	}
	r.Skip(int(uint16(m.Length)))
	return m, nil
}

func decodeSounds(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &Sounds{ReliableSound: r.ReadBool(), NumSounds: 1}
	if m.ReliableSound {
		m.Length = r.ReadShort(8)
	} else {
		m.NumSounds = r.ReadUint8(8)
		m.Length = r.ReadShort(16)
	}
	r.Skip(int(uint16(m.Length)))
	return m, nil
}

func decodeSplitScreen(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &SplitScreen{
		RemoveUser: r.ReadBool(),
		Length:     r.ReadShort(netMessageLengthBits),
	}
	r.Skip(int(m.Length))
	return m, nil
}

func decodeUserMessage(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &UserMessage{
		MessageType: r.ReadUint8(8),
		Length:      r.ReadShort(netMessageLengthBits),
	}
	r.Skip(int(m.Length))
	return m, nil
}

func decodeEntityMessage(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &EntityMessage{
		EntityIndex: r.ReadShort(entityIndexBits),
		ClassID:     r.ReadShort(entityClassBits),
		Length:      r.ReadShort(netMessageLengthBits),
	}
	r.Skip(int(m.Length))
	return m, nil
}

func decodePacketEntities(r *bitstream.Reader, s *Session) (Message, error) {
	m := &PacketEntities{
		MaxEntries: r.ReadShort(entityIndexBits),
		IsDelta:    r.ReadBool(),
	}
	if m.IsDelta {
		from := r.ReadInt(32)
		m.DeltaFrom = &from
	}
	m.Baseline = r.ReadBool()
	m.UpdatedEntries = r.ReadShort(entityIndexBits)
	m.Length = readLength(r, s.Profile.PacketEntitiesLengthBits)
	m.UpdateBaseline = r.ReadBool()
	r.Skip(int(m.Length))
	return m, nil
}

func decodeTempEntities(r *bitstream.Reader, s *Session) (Message, error) {
	m := &TempEntities{
		NumEntries: r.ReadUint8(8),
		Length:     readLength(r, s.Profile.TempEntitiesLengthBits),
	}
	r.Skip(int(m.Length))
	return m, nil
}

func decodeMenu(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &Menu{
		MenuType: r.ReadShort(16),
		Length:   r.ReadInt(32),
	}
	r.Skip(int(m.Length))
	return m, nil
}

func decodeCmdKeyValues(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &CmdKeyValues{Length: r.ReadInt(32)}
	r.Skip(int(m.Length))
	return m, nil
}
