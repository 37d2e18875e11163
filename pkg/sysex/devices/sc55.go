package devices

import (
	"fmt"

	"github.com/james-see/soundpalette/pkg/sysex"
)

// SC-55 model constants. Sound and effect parameters use the GS model ID;
// only the front panel display has its own.
const (
	SC55ModelID        = 0x45
	AddrDisplayLetters = 0x100000
	AddrDisplayDots    = 0x100100
	DisplayLetters     = 32
	DisplayDotRows     = 64
)

func sc55Blocks() []sysex.Block {
	letters := make([]sysex.Parameter, 0, DisplayLetters)
	for i := 0; i < DisplayLetters; i++ {
		letters = append(letters, sysex.Range(sysex.Address(i), fmt.Sprintf("LETTER %d", i+1), 0x20, 0x7F))
	}
	// The 16x16 dot display is sent as four column groups of 16 rows, five
	// dots per byte.
	dots := make([]sysex.Parameter, 0, DisplayDotRows)
	for i := 0; i < DisplayDotRows; i++ {
		dots = append(dots, sysex.Bitmask(sysex.Address(i), fmt.Sprintf("DOTS %d ROW %d", i/16+1, i%16+1), 0x1F))
	}
	return []sysex.Block{
		{Prefix: 0x1000, PrefixSize: 2, Name: "Display Letters", Params: letters},
		{Prefix: 0x1001, PrefixSize: 2, Name: "Display Dot Data", Params: dots},
	}
}

// SC55 is the Roland SC-55 display address map.
var SC55 = &sysex.Profile{
	Key:           "sc55",
	Name:          "Roland SC-55",
	Manufacturer:  sysex.ManufacturerRoland,
	Model:         []byte{SC55ModelID},
	DefaultDevice: GSDeviceID,
	AddressSize:   3,
	Blocks:        sc55Blocks(),
}

// DisplayMessage returns a DT1 message showing text on the SC-55's display.
// Text longer than the display is cut off and bytes outside the display's
// character set are rejected.
func DisplayMessage(device byte, text string) ([]byte, error) {
	if len(text) > DisplayLetters {
		text = text[:DisplayLetters]
	}
	data := []byte(text)
	for i, c := range data {
		if c < 0x20 || c > 0x7F {
			return nil, fmt.Errorf("%w: character %02Xh at %d can't be displayed", sysex.ErrOutOfRange, c, i)
		}
	}
	return sysex.EncodeFrame(SC55, device, sysex.CommandDT1, AddrDisplayLetters, data)
}
