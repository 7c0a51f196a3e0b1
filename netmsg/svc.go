package netmsg

import "github.com/zsiec/demparse/bitstream"

const (
	entityIndexBits  = 11
	decalTextureBits = 9
	mapMD5Size       = 16
)

// Print is text for the client console.
type Print struct {
	Message string
}

// ServerInfo describes the server the demo was recorded on. MapCRC is set
// on the pre-Steampipe builds, MapMD5 and HasReplay on Steampipe.
type ServerInfo struct {
	Protocol     int16
	ServerCount  int32
	IsHLTV       bool
	IsDedicated  bool
	ClientCRC    int32
	MaxClasses   int16
	TickInterval float32
	MapCRC       *int32
	MapMD5       []byte
	PlayerSlot   uint8
	MaxClients   uint8
	Platform     byte
	GameDir      string
	MapName      string
	SkyName      string
	HostName     string
	HasReplay    *bool
}

// ServerClass maps a class id to its class and data table names.
type ServerClass struct {
	ClassID       int32
	ClassName     string
	DataTableName string
}

// ClassInfo lists the server classes unless the client creates them itself.
type ClassInfo struct {
	Count          int16
	CreateOnClient bool
	ServerClasses  []ServerClass
}

// SetPause pauses or resumes the game.
type SetPause struct {
	Paused bool
}

// SetView sets the entity the client views from.
type SetView struct {
	EntityIndex int16
}

// FixAngle sets the view angles, in degrees.
type FixAngle struct {
	Relative bool
	Angle    [3]float32
}

// CrosshairAngle sets the crosshair angles, in degrees.
type CrosshairAngle struct {
	Angle [3]float32
}

// BspDecal places a decal on world geometry. Absent position axes are nil.
type BspDecal struct {
	// Position uses the engine coordinate encoding: integer part stored
	// minus one, fraction in 1/32 units.
	Position          [3]*float32
	DecalTextureIndex int16
	EntityIndex       *int16
	ModelIndex        *int16
	LowPriority       bool
}

// Prefetch asks the client to precache a sound.
type Prefetch struct {
	SoundIndex int16
}

// GetCvarValue queries a client console variable.
type GetCvarValue struct {
	Cookie   string
	CvarName string
}

func (*Print) Type() MessageType          { return TypePrint }
func (*ServerInfo) Type() MessageType     { return TypeServerInfo }
func (*ClassInfo) Type() MessageType      { return TypeClassInfo }
func (*SetPause) Type() MessageType       { return TypeSetPause }
func (*SetView) Type() MessageType        { return TypeSetView }
func (*FixAngle) Type() MessageType       { return TypeFixAngle }
func (*CrosshairAngle) Type() MessageType { return TypeCrosshairAngle }
func (*BspDecal) Type() MessageType       { return TypeBspDecal }
func (*Prefetch) Type() MessageType       { return TypePrefetch }
func (*GetCvarValue) Type() MessageType   { return TypeGetCvarValue }

func decodePrint(r *bitstream.Reader, _ *Session) (Message, error) {
	return &Print{Message: r.ReadStringNulled()}, nil
}

func decodeServerInfo(r *bitstream.Reader, s *Session) (Message, error) {
	steampipe := s.Profile.IsSteampipe()
	m := &ServerInfo{
		Protocol:     r.ReadShort(16),
		ServerCount:  r.ReadInt(32),
		IsHLTV:       r.ReadBool(),
		IsDedicated:  r.ReadBool(),
		ClientCRC:    r.ReadInt(32),
		MaxClasses:   r.ReadShort(16),
		TickInterval: r.ReadFloat(32),
	}
	if steampipe {
		m.MapMD5 = r.ReadBytes(mapMD5Size)
	} else {
		crc := r.ReadInt(32)
		m.MapCRC = &crc
	}
	m.PlayerSlot = r.ReadUint8(8)
	m.MaxClients = r.ReadUint8(8)
	m.Platform = r.ReadUint8(8)
	m.GameDir = r.ReadStringNulled()
	m.MapName = r.ReadStringNulled()
	m.SkyName = r.ReadStringNulled()
	m.HostName = r.ReadStringNulled()
	if steampipe {
		replay := r.ReadBool()
		m.HasReplay = &replay
	}
	return m, nil
}

func decodeClassInfo(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &ClassInfo{
		Count:          r.ReadShort(16),
		CreateOnClient: r.ReadBool(),
	}
	if !m.CreateOnClient {
		for i := 0; i < int(m.Count) && r.Err() == nil; i++ {
			m.ServerClasses = append(m.ServerClasses, ServerClass{
				ClassID:       r.ReadInt(32),
				ClassName:     r.ReadStringNulled(),
				DataTableName: r.ReadStringNulled(),
			})
		}
	}
	return m, nil
}

func decodeSetPause(r *bitstream.Reader, _ *Session) (Message, error) {
	return &SetPause{Paused: r.ReadBool()}, nil
}

func decodeSetView(r *bitstream.Reader, _ *Session) (Message, error) {
	return &SetView{EntityIndex: r.ReadShort(entityIndexBits)}, nil
}

// angleFromRaw converts a 16-bit fixed-point angle to degrees.
func angleFromRaw(raw int16) float32 {
	return float32(raw) * (360.0 / 65536.0)
}

func readAngles(r *bitstream.Reader) [3]float32 {
	var a [3]float32
	for i := range a {
		a[i] = angleFromRaw(r.ReadShort(16))
	}
	return a
}

func decodeFixAngle(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &FixAngle{Relative: r.ReadBool()}
	m.Angle = readAngles(r)
	return m, nil
}

func decodeCrosshairAngle(r *bitstream.Reader, _ *Session) (Message, error) {
	return &CrosshairAngle{Angle: readAngles(r)}, nil
}

func decodeBspDecal(r *bitstream.Reader, _ *Session) (Message, error) {
	m := &BspDecal{
		Position:          r.ReadVectorCoords(),
		DecalTextureIndex: r.ReadShort(decalTextureBits),
	}
	if r.ReadBool() {
		ent := r.ReadShort(entityIndexBits)
		model := r.ReadShort(entityIndexBits)
		m.EntityIndex = &ent
		m.ModelIndex = &model
	}
	m.LowPriority = r.ReadBool()
	return m, nil
}

func decodePrefetch(r *bitstream.Reader, s *Session) (Message, error) {
	return &Prefetch{SoundIndex: r.ReadShort(s.Profile.PrefetchSoundIndexBits)}, nil
}

func decodeGetCvarValue(r *bitstream.Reader, _ *Session) (Message, error) {
	return &GetCvarValue{
		Cookie:   r.ReadString(32),
		CvarName: r.ReadStringNulled(),
	}, nil
}
