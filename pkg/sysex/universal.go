package sysex

import (
	"fmt"
	"strings"
)

// Universal is the body of a universal exclusive message, one of the few
// SysEx formats defined by the MIDI 1.0 Detailed Specification itself.
type Universal struct {
	RealTime bool
	Device   byte
	SubID1   byte
	SubID2   byte
	Data     []byte
}

type universalID struct {
	realTime       bool
	subID1, subID2 byte
}

var universalNames = map[universalID]string{
	{false, 0x09, 0x01}: "GM System On",
	{false, 0x09, 0x02}: "GM System Off",
	{false, 0x06, 0x01}: "Identity Request",
	{false, 0x06, 0x02}: "Identity Reply",
	{true, 0x04, 0x01}:  "Master Volume",
	{true, 0x04, 0x02}:  "Master Balance",
}

func parseUniversal(realTime bool, body []byte) (*Universal, error) {
	if len(body) < 3 {
		return nil, fmt.Errorf("%w: universal message needs device and two sub-IDs", ErrTruncated)
	}
	return &Universal{
		RealTime: realTime,
		Device:   body[0],
		SubID1:   body[1],
		SubID2:   body[2],
		Data:     body[3:],
	}, nil
}

// Name returns the message's name if it is a well-known one.
func (u *Universal) Name() (string, bool) {
	name, ok := universalNames[universalID{u.RealTime, u.SubID1, u.SubID2}]
	return name, ok
}

func (u *Universal) String() string {
	var sb strings.Builder
	if u.Device == DeviceBroadcast {
		sb.WriteString("Broadcast")
	} else {
		fmt.Fprintf(&sb, "Device %02Xh", u.Device)
	}
	if name, ok := u.Name(); ok {
		sb.WriteString(", " + name)
		if name == "Master Volume" && len(u.Data) == 2 {
			fmt.Fprintf(&sb, " = %d", int(u.Data[1])<<7|int(u.Data[0]))
			return sb.String()
		}
	} else {
		fmt.Fprintf(&sb, ", Sub-ID#1 %02Xh, Sub-ID#2 %02Xh", u.SubID1, u.SubID2)
	}
	if len(u.Data) > 0 {
		sb.WriteString(": " + FormatHex(u.Data))
	}
	return sb.String()
}

// GMSystemOn returns the General MIDI System On message.
func GMSystemOn(device byte) []byte {
	return []byte{SysExStart, ManufacturerUniversalNonRealTime, device & 0x7F, 0x09, 0x01, SysExEnd}
}

// GMSystemOff returns the General MIDI System Off message.
func GMSystemOff(device byte) []byte {
	return []byte{SysExStart, ManufacturerUniversalNonRealTime, device & 0x7F, 0x09, 0x02, SysExEnd}
}

// MasterVolume returns the universal Master Volume message for a 14-bit
// volume.
func MasterVolume(device byte, volume int) ([]byte, error) {
	if volume < 0 || volume > 0x3FFF {
		return nil, fmt.Errorf("%w: master volume must be 0..16383, got %d", ErrOutOfRange, volume)
	}
	return []byte{
		SysExStart, ManufacturerUniversalRealTime, device & 0x7F, 0x04, 0x01,
		byte(volume & 0x7F), byte(volume >> 7), SysExEnd,
	}, nil
}
