package demo

import (
	"bytes"
	"fmt"

	"github.com/zsiec/demparse/bitstream"
	"github.com/zsiec/demparse/protocol"
)

const (
	signatureSize = 8
	nameFieldBits = 260 * 8
)

// signature opens every demo file.
var signature = []byte("HL2DEMO\x00")

// Header is the fixed-size block at the start of a demo file.
type Header struct {
	Signature       string
	DemoProtocol    int32
	NetworkProtocol int32
	ServerName      string
	ClientName      string
	MapName         string
	GameDirectory   string
	PlaybackTime    float32
	PlaybackTicks   int32
	PlaybackFrames  int32
	SignOnLength    int32
}

// DecodeHeader reads the demo header. A file that does not start with the
// demo signature fails with protocol.ErrMalformed.
func DecodeHeader(r *bitstream.Reader) (*Header, error) {
	sig := r.ReadBytes(signatureSize)
	if err := r.Err(); err != nil {
		return nil, &protocol.DecodeError{Field: "header", Offset: 0, Err: err}
	}
	if !bytes.Equal(sig, signature) {
		return nil, &protocol.DecodeError{
			Field:  "header signature",
			Offset: 0,
			Err:    fmt.Errorf("%w: signature %q", protocol.ErrMalformed, sig),
		}
	}

	h := &Header{
		Signature:       string(bytes.TrimRight(sig, "\x00")),
		DemoProtocol:    r.ReadInt(32),
		NetworkProtocol: r.ReadInt(32),
		ServerName:      r.ReadString(nameFieldBits),
		ClientName:      r.ReadString(nameFieldBits),
		MapName:         r.ReadString(nameFieldBits),
		GameDirectory:   r.ReadString(nameFieldBits),
		PlaybackTime:    r.ReadFloat(32),
		PlaybackTicks:   r.ReadInt(32),
		PlaybackFrames:  r.ReadInt(32),
		SignOnLength:    r.ReadInt(32),
	}
	if err := r.Err(); err != nil {
		return nil, &protocol.DecodeError{Field: "header", Offset: signatureSize * 8, Err: err}
	}
	return h, nil
}
