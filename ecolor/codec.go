package ecolor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// opcode families
const (
	opStatus byte = 0x33 // queries and their replies
	opSet    byte = 0xAA // set commands and their echoes
)

// parameters, shared by both families
const (
	paramPower      byte = 0x01
	paramBrightness byte = 0x03
	paramColor      byte = 0x04
)

// set frames for power and color are padded to this length
const frameLen = 20

// Command is a raw device frame
type Command []byte

// fixed frames
var (
	OnStatus      = Command{opStatus, paramPower}
	GetBrightness = Command{opStatus, paramBrightness}
	On            = padded(opSet, paramPower, 0x01)
	Off           = padded(opSet, paramPower, 0x00)
)

func padded(b ...byte) Command {
	c := make(Command, frameLen)
	copy(c, b)
	return c
}

// SetBrightness builds the brightness frame, level is passed through unchanged
func SetBrightness(level uint8) Command {
	return Command{opSet, paramBrightness, level}
}

// SetColor builds the RGB frame; 0x11 0x01 and the trailing zeros are an opaque template
func SetColor(c RGB) Command {
	return padded(opSet, paramColor, 0x11, 0x01, c.R, c.G, c.B)
}

// Base64 is the form the broker envelope carries
func (c Command) Base64() string {
	return base64.StdEncoding.EncodeToString(c)
}

func (c Command) String() string {
	return fmt.Sprintf("% X", []byte(c))
}

// envelope is the JSON wrapper used in both directions
type envelope struct {
	Msg string `json:"msg"`
}

// Encode wraps a command in the {"msg": "<base64>"} envelope
func Encode(c Command) ([]byte, error) {
	return json.Marshal(envelope{Msg: c.Base64()})
}

// EventKind identifies what changed on the device
type EventKind int

const (
	EventPower EventKind = iota + 1
	EventBrightness
)

func (k EventKind) String() string {
	switch k {
	case EventPower:
		return "power"
	case EventBrightness:
		return "brightness"
	default:
		return "unknown"
	}
}

// Event is a decoded state change reported by the device
type Event struct {
	Kind       EventKind
	On         bool // EventPower
	Brightness int  // EventBrightness, 0-255
}

// Decode unwraps an inbound message and turns it into a state event.
// ErrMalformedEnvelope and ErrUnrecognized mean the message should be dropped.
func Decode(payload []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrMalformedEnvelope, err.Error())
	}
	if env.Msg == "" {
		return Event{}, fmt.Errorf("%w: missing msg", ErrMalformedEnvelope)
	}
	b, err := base64.StdEncoding.DecodeString(env.Msg)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrMalformedEnvelope, err.Error())
	}
	return decodeFrame(b)
}

func decodeFrame(b []byte) (Event, error) {
	if len(b) == 0 {
		return Event{}, fmt.Errorf("%w: empty frame", ErrUnrecognized)
	}
	if b[0] != opStatus && b[0] != opSet {
		return Event{}, fmt.Errorf("%w: opcode 0x%02X", ErrUnrecognized, b[0])
	}
	if len(b) < 3 {
		return Event{}, fmt.Errorf("%w: short frame [% X]", ErrUnrecognized, b)
	}

	switch b[1] {
	case paramPower:
		return Event{Kind: EventPower, On: b[2] == 0x01}, nil
	case paramBrightness:
		return Event{Kind: EventBrightness, Brightness: int(b[2])}, nil
	default:
		return Event{}, fmt.Errorf("%w: parameter 0x%02X", ErrUnrecognized, b[1])
	}
}
