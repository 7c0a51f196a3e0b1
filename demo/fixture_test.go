package demo

import (
	"github.com/zsiec/demparse/bitstream"
	"github.com/zsiec/demparse/netmsg"
)

// Portal 5135 fixtures use 6-bit message tags.
const fixtureTagBits = 6

type headerFields struct {
	demoProtocol    int32
	networkProtocol int32
	mapName         string
}

func putHeader(w *bitstream.Writer, h headerFields) {
	w.PutBytes(signature)
	w.PutInt(32, int64(h.demoProtocol))
	w.PutInt(32, int64(h.networkProtocol))
	w.PutString("localhost:27015", 260)
	w.PutString("chell", 260)
	w.PutString(h.mapName, 260)
	w.PutString("portal", 260)
	w.PutFloat(12.5)
	w.PutInt(32, 825)
	w.PutInt(32, 790)
	w.PutInt(32, 1024)
}

func newDemoWriter(mapName string) *bitstream.Writer {
	w := bitstream.NewWriter()
	putHeader(w, headerFields{3, 15, mapName})
	return w
}

func putPacketHead(w *bitstream.Writer, kind PacketKind, tick int32) {
	w.PutBits(8, uint64(kind))
	w.PutInt(32, int64(tick))
}

func putStop(w *bitstream.Writer, tick int32) {
	w.PutBits(8, uint64(KindStop))
	w.PutBits(stopTickBits, uint64(tick))
}

// putPayload writes a SignOn or Packet body whose message region holds the
// bytes of msgs.
func putPayload(w *bitstream.Writer, msgs *bitstream.Writer) {
	w.PutInt(32, 0)
	for i := 0; i < 18; i++ {
		w.PutFloat(float32(i))
	}
	w.PutInt(32, 10)
	w.PutInt(32, 11)
	body := msgs.Bytes()
	w.PutInt(32, int64(len(body)))
	w.PutBytes(body)
}

func putMessageTag(w *bitstream.Writer, t netmsg.MessageType) {
	w.PutBits(fixtureTagBits, uint64(t))
}

// copyBits appends the first src.Len() bits of src to dst.
func copyBits(dst, src *bitstream.Writer) {
	data := src.Bytes()
	for i := 0; i < src.Len(); i++ {
		dst.PutBits(1, uint64(data[i/8]>>(i%8)))
	}
}

// putEventSchema writes a GameEventList defining a single event,
// player_death, with an int16 userid and a bool headshot.
func putEventSchema(w *bitstream.Writer) {
	desc := bitstream.NewWriter()
	desc.PutBits(9, 0)
	desc.PutStringNulled("player_death")
	desc.PutBits(3, 4)
	desc.PutStringNulled("userid")
	desc.PutBits(3, 6)
	desc.PutStringNulled("headshot")
	desc.PutBits(3, 0)

	putMessageTag(w, netmsg.TypeGameEventList)
	w.PutBits(9, 1)
	w.PutBits(20, uint64(desc.Len()))
	copyBits(w, desc)
}

func putPlayerDeath(w *bitstream.Writer, userID int16) {
	putMessageTag(w, netmsg.TypeGameEvent)
	w.PutBits(16, 9+16+1)
	w.PutBits(9, 0)
	w.PutInt(16, int64(userID))
	w.PutBool(true)
}

// validDemo returns a small demo exercising every packet kind.
func validDemo(mapName string) []byte {
	w := newDemoWriter(mapName)

	signon := bitstream.NewWriter()
	putEventSchema(signon)
	putMessageTag(signon, netmsg.TypePrint)
	signon.PutStringNulled("welcome")
	putPacketHead(w, KindSignOn, 0)
	putPayload(w, signon)

	putPacketHead(w, KindDataTables, 0)
	w.PutInt(32, 4)
	w.PutBytes([]byte{1, 2, 3, 4})
	putPacketHead(w, KindStringTables, 0)
	w.PutInt(32, 2)
	w.PutBytes([]byte{9, 9})
	putPacketHead(w, KindSyncTick, 0)

	packet := bitstream.NewWriter()
	putPlayerDeath(packet, 3)
	putPacketHead(w, KindPacket, 12)
	putPayload(w, packet)

	putPacketHead(w, KindConsoleCmd, 13)
	w.PutInt(32, 8)
	w.PutString("+attack", 8)

	putStop(w, 14)
	return w.Bytes()
}
