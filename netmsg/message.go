// Package netmsg decodes the net/svc message sub-stream carried inside
// SignOn and Packet payloads. Each message starts with a tag whose width is
// set by the session's protocol profile; the tag selects one of the message
// grammars in this package.
//
// Messages that declare a length for content this package does not model
// (string tables, entity deltas, voice, user messages and so on) skip
// exactly that many bits, so the surrounding stream stays aligned no matter
// what the content holds.
package netmsg

import (
	"fmt"
	"log/slog"

	"github.com/zsiec/demparse/bitstream"
	"github.com/zsiec/demparse/gameevent"
	"github.com/zsiec/demparse/protocol"
)

// minMessageBits is the smallest number of bits left in a region that can
// still hold a message; anything shorter is trailing padding.
const minMessageBits = 7

// Session is the mutable state of one demo decode: the protocol profile and
// the event schema registry. A Session must not be shared between
// concurrent decodes.
type Session struct {
	Profile protocol.Profile
	Events  *gameevent.Registry
	log     *slog.Logger
}

// NewSession returns a Session for the given profile with an empty event
// registry. If log is nil, slog.Default() is used.
func NewSession(p protocol.Profile, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		Profile: p,
		Events:  gameevent.NewRegistry(),
		log:     log.With("component", "netmsg"),
	}
}

func (s *Session) logger() *slog.Logger {
	if s.log == nil {
		return slog.Default()
	}
	return s.log
}

// MessageType is the tag of a net/svc message.
type MessageType uint8

const (
	TypeNop               MessageType = 0
	TypeDisconnect        MessageType = 1
	TypeFile              MessageType = 2
	TypeTick              MessageType = 3
	TypeStringCmd         MessageType = 4
	TypeSetConVar         MessageType = 5
	TypeSignonState       MessageType = 6
	TypePrint             MessageType = 7
	TypeServerInfo        MessageType = 8
	TypeSendTable         MessageType = 9
	TypeClassInfo         MessageType = 10
	TypeSetPause          MessageType = 11
	TypeCreateStringTable MessageType = 12
	TypeUpdateStringTable MessageType = 13
	TypeVoiceInit         MessageType = 14
	TypeVoiceData         MessageType = 15
	TypeSounds            MessageType = 17
	TypeSetView           MessageType = 18
	TypeFixAngle          MessageType = 19
	TypeCrosshairAngle    MessageType = 20
	TypeBspDecal          MessageType = 21
	TypeSplitScreen       MessageType = 22
	TypeUserMessage       MessageType = 23
	TypeEntityMessage     MessageType = 24
	TypeGameEvent         MessageType = 25
	TypePacketEntities    MessageType = 26
	TypeTempEntities      MessageType = 27
	TypePrefetch          MessageType = 28
	TypeMenu              MessageType = 29
	TypeGameEventList     MessageType = 30
	TypeGetCvarValue      MessageType = 31
	TypeCmdKeyValues      MessageType = 32
)

// Message is a decoded net/svc message.
type Message interface {
	Type() MessageType
}

type decodeFunc func(r *bitstream.Reader, s *Session) (Message, error)

type messageKind struct {
	name   string
	decode decodeFunc
}

var messageKinds = map[MessageType]messageKind{
	TypeNop:               {"NetNop", decodeNop},
	TypeDisconnect:        {"NetDisconnect", decodeDisconnect},
	TypeFile:              {"NetFile", decodeFile},
	TypeTick:              {"NetTick", decodeTick},
	TypeStringCmd:         {"NetStringCmd", decodeStringCmd},
	TypeSetConVar:         {"NetSetConVar", decodeSetConVar},
	TypeSignonState:       {"NetSignonState", decodeSignonState},
	TypePrint:             {"SvcPrint", decodePrint},
	TypeServerInfo:        {"SvcServerInfo", decodeServerInfo},
	TypeSendTable:         {"SvcSendTable", decodeSendTable},
	TypeClassInfo:         {"SvcClassInfo", decodeClassInfo},
	TypeSetPause:          {"SvcSetPause", decodeSetPause},
	TypeCreateStringTable: {"SvcCreateStringTable", decodeCreateStringTable},
	TypeUpdateStringTable: {"SvcUpdateStringTable", decodeUpdateStringTable},
	TypeVoiceInit:         {"SvcVoiceInit", decodeVoiceInit},
	TypeVoiceData:         {"SvcVoiceData", decodeVoiceData},
	TypeSounds:            {"SvcSounds", decodeSounds},
	TypeSetView:           {"SvcSetView", decodeSetView},
	TypeFixAngle:          {"SvcFixAngle", decodeFixAngle},
	TypeCrosshairAngle:    {"SvcCrosshairAngle", decodeCrosshairAngle},
	TypeBspDecal:          {"SvcBspDecal", decodeBspDecal},
	TypeSplitScreen:       {"SvcSplitScreen", decodeSplitScreen},
	TypeUserMessage:       {"SvcUserMessage", decodeUserMessage},
	TypeEntityMessage:     {"SvcEntityMessage", decodeEntityMessage},
	TypeGameEvent:         {"SvcGameEvent", decodeGameEvent},
	TypePacketEntities:    {"SvcPacketEntities", decodePacketEntities},
	TypeTempEntities:      {"SvcTempEntities", decodeTempEntities},
	TypePrefetch:          {"SvcPrefetch", decodePrefetch},
	TypeMenu:              {"SvcMenu", decodeMenu},
	TypeGameEventList:     {"SvcGameEventList", decodeGameEventList},
	TypeGetCvarValue:      {"SvcGetCvarValue", decodeGetCvarValue},
	TypeCmdKeyValues:      {"SvcCmdKeyValues", decodeCmdKeyValues},
}

func (t MessageType) String() string {
	if k, ok := messageKinds[t]; ok {
		return k.name
	}
	return fmt.Sprintf("message(%d)", uint8(t))
}

// ParseMessageType maps a raw tag to a MessageType. Unassigned tags fail
// with protocol.ErrUnknownTag.
func ParseMessageType(tag uint64) (MessageType, error) {
	if tag > 0xFF {
		return 0, fmt.Errorf("%w: message type %d", protocol.ErrUnknownTag, tag)
	}
	t := MessageType(tag)
	if _, ok := messageKinds[t]; !ok {
		return 0, fmt.Errorf("%w: message type %d", protocol.ErrUnknownTag, tag)
	}
	return t, nil
}

// DecodeMessage decodes the body of a message of type t.
func DecodeMessage(r *bitstream.Reader, s *Session, t MessageType) (Message, error) {
	k, ok := messageKinds[t]
	if !ok {
		return nil, fmt.Errorf("%w: message type %d", protocol.ErrUnknownTag, uint8(t))
	}
	msg, err := k.decode(r, s)
	if err == nil {
		err = r.Err()
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeMessages decodes messages until fewer than seven bits remain in r.
// r is normally a view bounded to the payload region. Any failure aborts the
// whole region; the messages decoded before it are returned with the error.
func DecodeMessages(r *bitstream.Reader, s *Session) ([]Message, error) {
	tagBits := s.Profile.MessageTagBits
	if tagBits <= 0 {
		return nil, fmt.Errorf("netmsg: profile has no message tag width")
	}

	var msgs []Message
	for r.Err() == nil && r.BitsLeft() >= minMessageBits {
		start := r.Pos()
		tag := r.ReadBits(tagBits)
		if err := r.Err(); err != nil {
			return msgs, &protocol.DecodeError{Field: "message tag", Offset: start, Err: err}
		}
		t, err := ParseMessageType(tag)
		if err != nil {
			return msgs, &protocol.DecodeError{Field: "message tag", Offset: start, Err: err}
		}
		msg, err := DecodeMessage(r, s, t)
		if err != nil {
			return msgs, &protocol.DecodeError{Field: t.String(), Offset: start, Err: err}
		}
		msgs = append(msgs, msg)
	}
	return msgs, r.Err()
}
