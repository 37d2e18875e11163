package converter

import (
	"errors"
	"fmt"

	"github.com/james-see/soundpalette/pkg/sysex"
)

// ValidateSyx checks that data is a run of complete SysEx messages with no
// status bytes inside them
func ValidateSyx(data []byte) error {
	if len(data) < 2 {
		return errors.New("syx data too short")
	}

	if data[0] != sysex.SysExStart {
		return fmt.Errorf("invalid SysEx: expected start byte 0x%02X, got 0x%02X", sysex.SysExStart, data[0])
	}

	if data[len(data)-1] != sysex.SysExEnd {
		return fmt.Errorf("invalid SysEx: expected end byte 0x%02X, got 0x%02X", sysex.SysExEnd, data[len(data)-1])
	}

	open := false
	for i, v := range data {
		switch {
		case v == sysex.SysExStart:
			if open {
				return fmt.Errorf("invalid SysEx: message before position %d has no end byte", i)
			}
			open = true
		case v == sysex.SysExEnd:
			if !open {
				return fmt.Errorf("invalid SysEx: end byte at position %d outside a message", i)
			}
			open = false
		case v > 127:
			return fmt.Errorf("invalid SysEx: byte at position %d is > 127 (0x%02X)", i, v)
		case !open:
			return fmt.Errorf("invalid SysEx: byte at position %d outside a message", i)
		}
	}

	return nil
}
