package netmsg

import "github.com/zsiec/demparse/bitstream"

// Nop carries nothing.
type Nop struct{}

// Disconnect tells the client why the server dropped it.
type Disconnect struct {
	Reason string
}

// File requests or denies a file transfer.
type File struct {
	TransferID    int32
	FileName      string
	FileRequested bool
}

// Tick synchronises the client clock. The two frame-time fields are scaled
// by 10^5 on the wire and are kept raw.
type Tick struct {
	Tick                      int32
	HostFrameTime             int16
	HostFrameTimeStdDeviation int16
}

// StringCmd is a console command sent as text.
type StringCmd struct {
	Command string
}

// ConVar is a console variable name and value.
type ConVar struct {
	Name  string
	Value string
}

// SetConVar replicates console variables.
type SetConVar struct {
	ConVars []ConVar
}

// SignonState reports the client's progress through the sign-on sequence.
type SignonState struct {
	State      uint8
	SpawnCount int32
}

func (*Nop) Type() MessageType         { return TypeNop }
func (*Disconnect) Type() MessageType  { return TypeDisconnect }
func (*File) Type() MessageType        { return TypeFile }
func (*Tick) Type() MessageType        { return TypeTick }
func (*StringCmd) Type() MessageType   { return TypeStringCmd }
func (*SetConVar) Type() MessageType   { return TypeSetConVar }
func (*SignonState) Type() MessageType { return TypeSignonState }

func decodeNop(*bitstream.Reader, *Session) (Message, error) {
	return &Nop{}, nil
}

func decodeDisconnect(r *bitstream.Reader, _ *Session) (Message, error) {
	return &Disconnect{Reason: r.ReadStringNulled()}, nil
}

func decodeFile(r *bitstream.Reader, _ *Session) (Message, error) {
	return &File{
		TransferID:    r.ReadInt(32),
		FileName:      r.ReadStringNulled(),
		FileRequested: r.ReadBool(),
	}, nil
}

func decodeTick(r *bitstream.Reader, _ *Session) (Message, error) {
	return &Tick{
		Tick:                      r.ReadInt(32),
		HostFrameTime:             r.ReadShort(16),
		HostFrameTimeStdDeviation: r.ReadShort(16),
	}, nil
}

func decodeStringCmd(r *bitstream.Reader, _ *Session) (Message, error) {
	return &StringCmd{Command: r.ReadStringNulled()}, nil
}

func decodeSetConVar(r *bitstream.Reader, _ *Session) (Message, error) {
	n := int(r.ReadUint8(8))
	m := &SetConVar{ConVars: make([]ConVar, 0, n)}
	for i := 0; i < n && r.Err() == nil; i++ {
		m.ConVars = append(m.ConVars, ConVar{
			Name:  r.ReadStringNulled(),
			Value: r.ReadStringNulled(),
		})
	}
	return m, nil
}

func decodeSignonState(r *bitstream.Reader, _ *Session) (Message, error) {
	return &SignonState{
		State:      r.ReadUint8(8),
		SpawnCount: r.ReadInt(32),
	}, nil
}
