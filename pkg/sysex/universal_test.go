package sysex

import (
	"bytes"
	"errors"
	"testing"
)

func TestUniversalMessages(t *testing.T) {
	if got := GMSystemOn(0x10); !bytes.Equal(got, []byte{0xF0, 0x7E, 0x10, 0x09, 0x01, 0xF7}) {
		t.Errorf("GMSystemOn() = % X", got)
	}
	if got := GMSystemOff(0x7F); !bytes.Equal(got, []byte{0xF0, 0x7E, 0x7F, 0x09, 0x02, 0xF7}) {
		t.Errorf("GMSystemOff() = % X", got)
	}

	msg, err := MasterVolume(DeviceBroadcast, 0x3FFF)
	if err != nil {
		t.Fatalf("MasterVolume() error = %v", err)
	}
	if !bytes.Equal(msg, []byte{0xF0, 0x7F, 0x7F, 0x04, 0x01, 0x7F, 0x7F, 0xF7}) {
		t.Errorf("MasterVolume() = % X", msg)
	}
	if _, err := MasterVolume(DeviceBroadcast, 0x4000); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("MasterVolume(4000h) error = %v", err)
	}

	r := newTestRegistry(t)
	msg, _ = MasterVolume(0x10, 0x2000)
	if got, want := r.Inspect(msg).String(), "Universal Real Time: Device 10h, Master Volume = 8192"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	identity := []byte{0xF0, 0x7E, 0x10, 0x06, 0x03, 0x01, 0xF7}
	if got, want := r.Inspect(identity).String(), "Universal Non-Real Time: Device 10h, Sub-ID#1 06h, Sub-ID#2 03h: 01"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
