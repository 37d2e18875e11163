package sysex

import (
	"bytes"
	"errors"
	"testing"
)

var gsReset = []byte{0xF0, 0x41, 0x10, 0x42, 0x12, 0x40, 0x00, 0x7F, 0x00, 0x41, 0xF7}

func TestDecodeFrame(t *testing.T) {
	r := newTestRegistry(t)

	f, err := r.DecodeFrame(gsReset)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if !f.IsRoland() || f.Device != 0x10 || f.Profile != testProfile {
		t.Errorf("header = %s dev %02X profile %v", FormatHex(f.Manufacturer), f.Device, f.Profile)
	}
	if f.Command != CommandDT1 || !bytes.Equal(f.CommandID, []byte{0x12}) {
		t.Errorf("Command = %v (% X)", f.Command, f.CommandID)
	}
	if !f.HasAddress || f.Address != 0x40007F {
		t.Errorf("Address = %s", f.Address)
	}
	if !bytes.Equal(f.Data, []byte{0x00}) {
		t.Errorf("Data = % X", f.Data)
	}
	if !f.HasChecksum || f.Checksum != 0x41 || !f.ChecksumValid {
		t.Errorf("Checksum = %02X valid=%v", f.Checksum, f.ChecksumValid)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrTruncated},
		{"two bytes", []byte{0xF0, 0xF7}, ErrTruncated},
		{"address cut short", []byte{0xF0, 0x41, 0x10, 0x42, 0x12, 0x40, 0xF7}, ErrTruncated},
		{"no command", []byte{0xF0, 0x41, 0x10, 0x42, 0xF7}, ErrTruncated},
		{"only extension prefixes", []byte{0xF0, 0x41, 0x10, 0x00, 0x00, 0xF7}, ErrTruncated},
		{"no start", []byte{0x41, 0x10, 0x42, 0x12, 0xF7}, ErrBadFraming},
		{"no end", []byte{0xF0, 0x41, 0x10, 0x42, 0x12, 0x40, 0x00, 0x7F, 0x00, 0x41}, ErrBadFraming},
		{"status byte inside", []byte{0xF0, 0x41, 0x10, 0x90, 0x12, 0xF7}, ErrBadFraming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := r.DecodeFrame(tt.data)
			if !errors.Is(err, tt.err) {
				t.Fatalf("DecodeFrame() error = %v, want %v", err, tt.err)
			}
			if f != nil {
				t.Errorf("DecodeFrame() returned a frame for bad input")
			}
		})
	}
}

func TestDecodeFrameUnknownManufacturer(t *testing.T) {
	r := newTestRegistry(t)

	yamaha := []byte{0xF0, 0x43, 0x10, 0x4C, 0x00, 0x00, 0x7E, 0x00, 0xF7}
	f, err := r.DecodeFrame(yamaha)
	if !errors.Is(err, ErrUnknownManufacturer) {
		t.Fatalf("DecodeFrame() error = %v, want ErrUnknownManufacturer", err)
	}
	if f == nil || !bytes.Equal(f.Body, yamaha[2:len(yamaha)-1]) {
		t.Fatalf("DecodeFrame() frame = %+v", f)
	}

	behringer := []byte{0xF0, 0x00, 0x20, 0x32, 0x00, 0x01, 0xF7}
	f, err = r.DecodeFrame(behringer)
	if !errors.Is(err, ErrUnknownManufacturer) {
		t.Fatalf("DecodeFrame() error = %v, want ErrUnknownManufacturer", err)
	}
	if !bytes.Equal(f.Manufacturer, []byte{0x00, 0x20, 0x32}) {
		t.Errorf("Manufacturer = % X", f.Manufacturer)
	}
}

func TestDecodeFrameUnknownModel(t *testing.T) {
	r := newTestRegistry(t)

	f, err := r.DecodeFrame([]byte{0xF0, 0x41, 0x10, 0x00, 0x16, 0x12, 0x01, 0x02, 0x03, 0x7A, 0xF7})
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if f.Profile != nil {
		t.Errorf("Profile = %v, want nil", f.Profile)
	}
	if !bytes.Equal(f.Model, []byte{0x00, 0x16}) {
		t.Errorf("Model = % X", f.Model)
	}
	if f.HasAddress {
		t.Error("HasAddress = true without a profile")
	}
	if !f.HasChecksum || !f.ChecksumValid || f.Checksum != 0x7A {
		t.Errorf("Checksum = %02X valid=%v", f.Checksum, f.ChecksumValid)
	}
	if !bytes.Equal(f.Data, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("Data = % X", f.Data)
	}
}

func TestDecodeFrameUniversal(t *testing.T) {
	r := newTestRegistry(t)

	f, err := r.DecodeFrame(GMSystemOn(DeviceBroadcast))
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if f.Universal == nil || f.Universal.RealTime {
		t.Fatalf("Universal = %+v", f.Universal)
	}
	if name, ok := f.Universal.Name(); !ok || name != "GM System On" {
		t.Errorf("Name() = %q, %v", name, ok)
	}

	if _, err := r.DecodeFrame([]byte{0xF0, 0x7E, 0x7F, 0x09, 0xF7}); !errors.Is(err, ErrTruncated) {
		t.Errorf("short universal error = %v, want ErrTruncated", err)
	}
}

func TestEncodeFrame(t *testing.T) {
	msg, err := EncodeFrame(testProfile, 0x10, CommandDT1, 0x40007F, []byte{0x00})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	if !bytes.Equal(msg, gsReset) {
		t.Errorf("EncodeFrame() = % X, want % X", msg, gsReset)
	}

	msg, err = EncodeFrame(testProfile, DeviceBroadcast, CommandDT1, 0x400130, nil)
	if err != nil {
		t.Fatalf("EncodeFrame() with no data error = %v", err)
	}
	if !ChecksumValid(msg[5 : len(msg)-1]) {
		t.Errorf("EncodeFrame() = % X has a bad checksum", msg)
	}

	bad := []struct {
		name   string
		device byte
		addr   Address
		data   []byte
	}{
		{"device", 0x80, 0x400130, nil},
		{"address byte", 0x10, 0x400180, nil},
		{"address width", 0x10, 0x01400130, nil},
		{"data byte", 0x10, 0x400130, []byte{0x80}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := EncodeFrame(testProfile, tt.device, CommandDT1, tt.addr, tt.data)
			if !errors.Is(err, ErrOutOfRange) || msg != nil {
				t.Errorf("EncodeFrame() = % X, %v", msg, err)
			}
		})
	}
}
