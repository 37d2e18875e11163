package devices

import (
	"fmt"

	"github.com/james-see/soundpalette/pkg/sysex"
)

// SC7ModelID is the Roland SC-7's own model ID. The SC-7 also answers to
// some GS messages.
const SC7ModelID = 0x56

var sc7System = []sysex.Parameter{
	sysex.Enum(0x00, "REVERB CHARACTER", reverbMacros...),
	sysex.Range(0x01, "REVERB LEVEL", 0x00, 0x7F),
	sysex.Range(0x02, "REVERB (DELAY) TIME", 0x00, 0x7F),
	sysex.Range(0x03, "DELAY TIME", 0x00, 0x7F),
	sysex.Range(0x04, "DELAY FEEDBACK", 0x00, 0x7F),
	sysex.Range(0x05, "CHORUS LEVEL", 0x00, 0x7F),
	sysex.Range(0x06, "CHORUS FEEDBACK", 0x00, 0x7F),
	sysex.Range(0x07, "CHORUS DELAY", 0x00, 0x7F),
	sysex.Range(0x08, "CHORUS RATE", 0x00, 0x7F),
	sysex.Range(0x09, "CHORUS DEPTH", 0x00, 0x7F),
}

var sc7Patch = []sysex.Parameter{
	sysex.Enum(0x00, "RX. CHANNEL", rxChannels...),
	sysex.Switch(0x01, "RX. NRPN"),
	sysex.Range(0x02, "MOD LFO RATE CONTROL", 0x00, 0x7F).Centered(0x40).In(-10, 10, "Hz"),
	sysex.Range(0x03, "MOD LFO PITCH DEPTH", 0x00, 0x7F).In(0, 600, "cents"),
	// The SC-7 manual gives no unit; the SC-55's control of the same name
	// and range is in cents.
	sysex.Range(0x04, "CAF TVF CUT OFF CONTROL", 0x00, 0x7F).Centered(0x40).In(-9600, 9600, "cents"),
	sysex.Range(0x05, "CAF AMPLITUDE CONTROL", 0x00, 0x7F).Centered(0x40).In(-100, 100, "%"),
	sysex.Range(0x06, "CAF LFO RATE CONTROL", 0x00, 0x7F).Centered(0x40).In(-10, 10, "Hz"),
	sysex.Range(0x07, "CAF LFO PITCH DEPTH", 0x00, 0x7F).In(0, 600, "cents"),
}

func sc7Blocks() []sysex.Block {
	blocks := []sysex.Block{
		{Prefix: 0x0000, PrefixSize: 2, Name: "System parameters, Effect Control", Params: sc7System},
	}
	for x, part := range partNumbers {
		blocks = append(blocks, sysex.Block{
			Prefix:     sysex.Address(0x0100 + x),
			PrefixSize: 2,
			Name:       fmt.Sprintf("Patch parameters, Part %d", part),
			Params:     sc7Patch,
		})
	}
	return blocks
}

// SC7 is the Roland SC-7 address map.
var SC7 = &sysex.Profile{
	Key:           "sc7",
	Name:          "Roland SC-7",
	Manufacturer:  sysex.ManufacturerRoland,
	Model:         []byte{SC7ModelID},
	DefaultDevice: 0x10, // not configurable on the SC-7
	AddressSize:   3,
	Blocks:        sc7Blocks(),
}
