package devices

import (
	"fmt"

	"github.com/james-see/soundpalette/pkg/sysex"
)

// GS model constants
const (
	GSModelID       = 0x42
	GSDeviceID      = 0x10 // factory default
	GSAddressSize   = 3
	AddrGSModeSet   = 0x40007F
	AddrReverbMacro = 0x400130
)

// partNumbers maps the low nibble of a GS part block address to the part
// number shown on the front panel. Part 10, the rhythm part, comes first.
var partNumbers = [16]int{10, 1, 2, 3, 4, 5, 6, 7, 8, 9, 11, 12, 13, 14, 15, 16}

var reverbMacros = []string{
	"Room 1", "Room 2", "Room 3", "Hall 1", "Hall 2", "Plate", "Delay", "Panning Delay",
}

var chorusMacros = []string{
	"Chorus 1", "Chorus 2", "Chorus 3", "Chorus 4", "Feedback Chorus", "Flanger", "Short Delay", "Short Delay (FB)",
}

var rxChannels = []string{
	"Channel 1", "Channel 2", "Channel 3", "Channel 4", "Channel 5", "Channel 6", "Channel 7", "Channel 8",
	"Channel 9", "Channel 10", "Channel 11", "Channel 12", "Channel 13", "Channel 14", "Channel 15", "Channel 16",
	"OFF",
}

var gsSystem = []sysex.Parameter{
	sysex.Range(0x00, "MASTER TUNE", 0x18, 0x7E8).Nibblized(4).Centered(0x400).In(-100, 100, "cents"),
	sysex.Range(0x04, "MASTER VOLUME", 0x00, 0x7F),
	sysex.Range(0x05, "MASTER KEY-SHIFT", 0x28, 0x58).Centered(0x40).In(-24, 24, "semitones"),
	sysex.Range(0x06, "MASTER PAN", 0x01, 0x7F).Centered(0x40),
	sysex.Enum(0x7F, "MODE SET", "GS Reset"),
}

func gsPatchCommon() []sysex.Parameter {
	params := make([]sysex.Parameter, 0, 32)
	for x, part := range partNumbers {
		params = append(params, sysex.Range(sysex.Address(0x10+x), fmt.Sprintf("VOICE RESERVE PART %d", part), 0x00, 0x20))
	}
	return append(params,
		sysex.Enum(0x30, "REVERB MACRO", reverbMacros...),
		sysex.Range(0x31, "REVERB CHARACTER", 0x00, 0x07),
		sysex.Range(0x32, "REVERB PRE-LPF", 0x00, 0x07),
		sysex.Range(0x33, "REVERB LEVEL", 0x00, 0x7F),
		sysex.Range(0x34, "REVERB TIME", 0x00, 0x7F),
		sysex.Range(0x35, "REVERB DELAY FEEDBACK", 0x00, 0x7F),
		sysex.Range(0x36, "REVERB SEND LEVEL TO CHORUS", 0x00, 0x7F),
		sysex.Enum(0x38, "CHORUS MACRO", chorusMacros...),
		sysex.Range(0x39, "CHORUS PRE-LPF", 0x00, 0x07),
		sysex.Range(0x3A, "CHORUS LEVEL", 0x00, 0x7F),
		sysex.Range(0x3B, "CHORUS FEEDBACK", 0x00, 0x7F),
		sysex.Range(0x3C, "CHORUS DELAY", 0x00, 0x7F),
		sysex.Range(0x3D, "CHORUS RATE", 0x00, 0x7F),
		sysex.Range(0x3E, "CHORUS DEPTH", 0x00, 0x7F),
		sysex.Range(0x3F, "CHORUS SEND LEVEL TO REVERB", 0x00, 0x7F),
	)
}

var gsPart = []sysex.Parameter{
	sysex.Range(0x00, "TONE NUMBER CC#00", 0x00, 0x7F),
	sysex.Range(0x01, "TONE NUMBER P.C.", 0x00, 0x7F),
	sysex.Enum(0x02, "RX. CHANNEL", rxChannels...),
	sysex.Switch(0x03, "RX. PITCH BEND"),
	sysex.Switch(0x04, "RX. CH PRESSURE"),
	sysex.Switch(0x05, "RX. PROGRAM CHANGE"),
	sysex.Switch(0x06, "RX. CONTROL CHANGE"),
	sysex.Switch(0x07, "RX. POLY PRESSURE"),
	sysex.Switch(0x08, "RX. NOTE MESSAGE"),
	sysex.Switch(0x09, "RX. RPN"),
	sysex.Switch(0x0A, "RX. NRPN"),
	sysex.Switch(0x0B, "RX. MODULATION"),
	sysex.Switch(0x0C, "RX. VOLUME"),
	sysex.Switch(0x0D, "RX. PANPOT"),
	sysex.Switch(0x0E, "RX. EXPRESSION"),
	sysex.Switch(0x0F, "RX. HOLD1"),
	sysex.Switch(0x10, "RX. PORTAMENTO"),
	sysex.Switch(0x11, "RX. SOSTENUTO"),
	sysex.Switch(0x12, "RX. SOFT"),
	sysex.Enum(0x13, "MONO/POLY MODE", "Mono", "Poly"),
	sysex.Enum(0x14, "ASSIGN MODE", "Single", "Limited-Multi", "Full-Multi"),
	sysex.Enum(0x15, "USE FOR RHYTHM PART", "OFF", "MAP1", "MAP2"),
	sysex.Range(0x16, "PITCH KEY SHIFT", 0x28, 0x58).Centered(0x40).In(-24, 24, "semitones"),
	sysex.Range(0x17, "PITCH OFFSET FINE", 0x08, 0xF8).Nibblized(2).Centered(0x80).In(-12, 12, "Hz"),
	sysex.Range(0x19, "PART LEVEL", 0x00, 0x7F),
	sysex.Range(0x1A, "VELOCITY SENSE DEPTH", 0x00, 0x7F),
	sysex.Range(0x1B, "VELOCITY SENSE OFFSET", 0x00, 0x7F),
	sysex.Range(0x1C, "PART PANPOT", 0x00, 0x7F).Centered(0x40),
	sysex.Range(0x1D, "KEY RANGE LOW", 0x00, 0x7F),
	sysex.Range(0x1E, "KEY RANGE HIGH", 0x00, 0x7F),
	sysex.Range(0x1F, "CC1 CONTROLLER NUMBER", 0x00, 0x5F),
	sysex.Range(0x20, "CC2 CONTROLLER NUMBER", 0x00, 0x5F),
	sysex.Range(0x21, "CHORUS SEND LEVEL", 0x00, 0x7F),
	sysex.Range(0x22, "REVERB SEND LEVEL", 0x00, 0x7F),
	sysex.Switch(0x23, "RX. BANK SELECT"),
	sysex.Range(0x30, "VIBRATO RATE", 0x0E, 0x72).Centered(0x40),
	sysex.Range(0x31, "VIBRATO DEPTH", 0x0E, 0x72).Centered(0x40),
	sysex.Range(0x32, "TVF CUTOFF FREQUENCY", 0x0E, 0x72).Centered(0x40),
	sysex.Range(0x33, "TVF RESONANCE", 0x0E, 0x72).Centered(0x40),
	sysex.Range(0x34, "TVF&TVA ENVELOPE ATTACK", 0x0E, 0x72).Centered(0x40),
	sysex.Range(0x35, "TVF&TVA ENVELOPE DECAY", 0x0E, 0x72).Centered(0x40),
	sysex.Range(0x36, "TVF&TVA ENVELOPE RELEASE", 0x0E, 0x72).Centered(0x40),
	sysex.Range(0x37, "VIBRATO DELAY", 0x0E, 0x72).Centered(0x40),
	scaleTuning(0x40, "C"),
	scaleTuning(0x41, "C#"),
	scaleTuning(0x42, "D"),
	scaleTuning(0x43, "D#"),
	scaleTuning(0x44, "E"),
	scaleTuning(0x45, "F"),
	scaleTuning(0x46, "F#"),
	scaleTuning(0x47, "G"),
	scaleTuning(0x48, "G#"),
	scaleTuning(0x49, "A"),
	scaleTuning(0x4A, "A#"),
	scaleTuning(0x4B, "B"),
}

func scaleTuning(offset sysex.Address, note string) sysex.Parameter {
	return sysex.Range(offset, "SCALE TUNING "+note, 0x00, 0x7F).Centered(0x40).In(-64, 63, "cents")
}

// controllerSources are the sections of a part's controller block, in
// address order.
var controllerSources = []string{"MOD", "BEND", "CAf", "PAf", "CC1", "CC2"}

// gsController lays out the eleven destinations of every controller source,
// one source per 10h bytes.
func gsController() []sysex.Parameter {
	var params []sysex.Parameter
	for i, src := range controllerSources {
		base := sysex.Address(i * 0x10)
		pitch := sysex.Range(base, src+" PITCH CONTROL", 0x28, 0x58).Centered(0x40).In(-24, 24, "semitones")
		if src == "BEND" {
			pitch = sysex.Range(base, src+" PITCH CONTROL", 0x40, 0x58).Centered(0x40).In(0, 24, "semitones")
		}
		params = append(params,
			pitch,
			sysex.Range(base+0x01, src+" TVF CUTOFF CONTROL", 0x00, 0x7F).Centered(0x40).In(-9600, 9600, "cents"),
			sysex.Range(base+0x02, src+" AMPLITUDE CONTROL", 0x00, 0x7F).Centered(0x40).In(-100, 100, "%"),
			sysex.Range(base+0x03, src+" LFO1 RATE CONTROL", 0x00, 0x7F).Centered(0x40).In(-10, 10, "Hz"),
			sysex.Range(base+0x04, src+" LFO1 PITCH DEPTH", 0x00, 0x7F).In(0, 600, "cents"),
			sysex.Range(base+0x05, src+" LFO1 TVF DEPTH", 0x00, 0x7F).In(0, 2400, "cents"),
			sysex.Range(base+0x06, src+" LFO1 TVA DEPTH", 0x00, 0x7F).In(0, 100, "%"),
			sysex.Range(base+0x07, src+" LFO2 RATE CONTROL", 0x00, 0x7F).Centered(0x40).In(-10, 10, "Hz"),
			sysex.Range(base+0x08, src+" LFO2 PITCH DEPTH", 0x00, 0x7F).In(0, 600, "cents"),
			sysex.Range(base+0x09, src+" LFO2 TVF DEPTH", 0x00, 0x7F).In(0, 2400, "cents"),
			sysex.Range(base+0x0A, src+" LFO2 TVA DEPTH", 0x00, 0x7F).In(0, 100, "%"),
		)
	}
	return params
}

func gsBlocks() []sysex.Block {
	blocks := []sysex.Block{
		{Prefix: 0x4000, PrefixSize: 2, Name: "System", Params: gsSystem},
		{Prefix: 0x4001, PrefixSize: 2, Name: "Patch Common", Params: gsPatchCommon()},
	}
	for x, part := range partNumbers {
		blocks = append(blocks, sysex.Block{
			Prefix:     sysex.Address(0x4010 + x),
			PrefixSize: 2,
			Name:       fmt.Sprintf("Patch Part %d", part),
			Params:     gsPart,
		})
	}
	controller := gsController()
	for x, part := range partNumbers {
		blocks = append(blocks, sysex.Block{
			Prefix:     sysex.Address(0x4020 + x),
			PrefixSize: 2,
			Name:       fmt.Sprintf("Controller Part %d", part),
			Params:     controller,
		})
	}
	return blocks
}

// GS is the Roland GS address map shared by the Sound Canvas family.
var GS = &sysex.Profile{
	Key:           "gs",
	Name:          "Roland GS",
	Manufacturer:  sysex.ManufacturerRoland,
	Model:         []byte{GSModelID},
	DefaultDevice: GSDeviceID,
	AddressSize:   GSAddressSize,
	Blocks:        gsBlocks(),
}

// GSReset returns the GS reset message, a DT1 of 00h to MODE SET.
func GSReset(device byte) ([]byte, error) {
	return sysex.EncodeFrame(GS, device, sysex.CommandDT1, AddrGSModeSet, []byte{0x00})
}
