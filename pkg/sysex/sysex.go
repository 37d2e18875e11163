// Package sysex encodes, decodes and interprets Roland-style System Exclusive
// messages.
//
// SysEx is an extensibility feature of MIDI and almost always vendor
// specific, so only the formats of the modeled device profiles are parsed;
// everything else is reported back as raw bytes. Framing and checksums live
// in frame.go, the address-to-parameter tables in registry.go, and the
// best-effort interpretation of arbitrary input in inspect.go.
package sysex

import (
	"errors"
	"fmt"
)

// SysEx framing bytes
const (
	SysExStart = 0xF0
	SysExEnd   = 0xF7
)

// Manufacturer IDs
const (
	ManufacturerRoland               = 0x41
	ManufacturerUniversalNonRealTime = 0x7E
	ManufacturerUniversalRealTime    = 0x7F
)

// DeviceBroadcast is the "all call" device ID from the MIDI 1.0 Detailed
// Specification. Roland calls it the broadcast ID.
const DeviceBroadcast = 0x7F

// Command is a single-byte Roland command ID.
type Command byte

// Roland commands
const (
	CommandRQ1 Command = 0x11 // Request data 1
	CommandDT1 Command = 0x12 // Data set 1
)

func (c Command) String() string {
	switch c {
	case CommandRQ1:
		return "Request data 1"
	case CommandDT1:
		return "Data set 1"
	default:
		return fmt.Sprintf("Command %02Xh", byte(c))
	}
}

// Frame errors. Decoding wraps these with details; test with errors.Is.
var (
	ErrTruncated           = errors.New("truncated SysEx")
	ErrBadFraming          = errors.New("bad SysEx framing")
	ErrUnknownManufacturer = errors.New("unknown manufacturer")
)

// Value errors returned by Validate and the builders.
var (
	ErrOutOfRange  = errors.New("value out of range")
	ErrInvalidEnum = errors.New("value not in enumeration")
)

// ErrUnknownParameter is returned when a parameter query matches nothing.
var ErrUnknownParameter = errors.New("unknown parameter")

var manufacturerNames = map[byte]string{
	0x40:                             "Kawai",
	ManufacturerRoland:               "Roland",
	0x42:                             "Korg",
	0x43:                             "Yamaha",
	0x44:                             "Casio",
	0x47:                             "Akai",
	ManufacturerUniversalNonRealTime: "Universal Non-Real Time",
	ManufacturerUniversalRealTime:    "Universal Real Time",
}

// ManufacturerName returns a display name for a manufacturer ID.
func ManufacturerName(id []byte) string {
	if len(id) == 1 {
		if name, ok := manufacturerNames[id[0]]; ok {
			return name
		}
	}
	return "Manufacturer " + FormatHex(id)
}
