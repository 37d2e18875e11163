package sysex

import (
	"fmt"
)

// Frame is a decoded exclusive message. Fields that the message does not
// carry are left zero; HasAddress and HasChecksum tell them apart from real
// zero bytes.
type Frame struct {
	Raw          []byte
	Manufacturer []byte
	Device       byte

	// Roland type IV header. Model and CommandID may carry 00h extension
	// prefixes. Command is set when CommandID is a single byte.
	Model     []byte
	CommandID []byte
	Command   Command
	Profile   *Profile

	Address       Address
	HasAddress    bool
	Data          []byte
	Checksum      byte
	HasChecksum   bool
	ChecksumValid bool

	// Body is everything between the manufacturer ID and F7h.
	Body      []byte
	Universal *Universal
}

// IsRoland reports whether the frame uses Roland's manufacturer ID.
func (f *Frame) IsRoland() bool {
	return len(f.Manufacturer) == 1 && f.Manufacturer[0] == ManufacturerRoland
}

// DecodeFrame splits a single exclusive message into its fields. Framing
// problems return ErrTruncated or ErrBadFraming and no frame. A manufacturer
// other than Roland or the universal IDs returns the frame with its raw body
// together with ErrUnknownManufacturer. A Roland frame with an unknown model
// decodes without error; its Profile is nil and its checksum is checked over
// everything after the command ID.
func (r *Registry) DecodeFrame(b []byte) (*Frame, error) {
	if len(b) < 3 {
		return nil, fmt.Errorf("%w: %d byte(s)", ErrTruncated, len(b))
	}
	if b[0] != SysExStart {
		return nil, fmt.Errorf("%w: starts with %02Xh, not F0h", ErrBadFraming, b[0])
	}
	if b[len(b)-1] != SysExEnd {
		return nil, fmt.Errorf("%w: ends with %02Xh, not F7h", ErrBadFraming, b[len(b)-1])
	}
	for i, v := range b[1 : len(b)-1] {
		if v > 0x7F {
			return nil, fmt.Errorf("%w: status byte %02Xh at offset %d", ErrBadFraming, v, i+1)
		}
	}

	f := &Frame{Raw: b}
	inner := b[1 : len(b)-1]
	mlen := 1
	if inner[0] == 0x00 {
		mlen = 3
	}
	if len(inner) < mlen {
		return nil, fmt.Errorf("%w: manufacturer ID cut short", ErrTruncated)
	}
	f.Manufacturer = inner[:mlen]
	f.Body = inner[mlen:]

	switch {
	case f.IsRoland():
		if err := r.decodeRoland(f); err != nil {
			return nil, err
		}
	case mlen == 1 && (inner[0] == ManufacturerUniversalNonRealTime || inner[0] == ManufacturerUniversalRealTime):
		u, err := parseUniversal(inner[0] == ManufacturerUniversalRealTime, f.Body)
		if err != nil {
			return nil, err
		}
		f.Device = u.Device
		f.Universal = u
	default:
		return f, fmt.Errorf("%w: %s", ErrUnknownManufacturer, FormatHex(f.Manufacturer))
	}
	return f, nil
}

func (r *Registry) decodeRoland(f *Frame) error {
	body := f.Body
	if len(body) < 1 {
		return fmt.Errorf("%w: no device ID", ErrTruncated)
	}
	f.Device = body[0]
	var ok bool
	if f.Model, body, ok = splitVariableID(body[1:]); !ok {
		return fmt.Errorf("%w: model ID cut short", ErrTruncated)
	}
	if f.CommandID, body, ok = splitVariableID(body); !ok {
		return fmt.Errorf("%w: command ID cut short", ErrTruncated)
	}
	if len(f.CommandID) == 1 {
		f.Command = Command(f.CommandID[0])
	}
	f.Profile, _ = r.ProfileByModel(ManufacturerRoland, f.Model)

	known := f.Command == CommandDT1 || f.Command == CommandRQ1
	if f.Profile == nil || !known {
		// Without an address map the best we can do is treat the last byte
		// as the checksum.
		if len(body) > 0 {
			f.Data = body[:len(body)-1]
			f.Checksum = body[len(body)-1]
			f.HasChecksum = true
			f.ChecksumValid = ChecksumValid(body)
		}
		return nil
	}

	size := f.Profile.AddressSize
	if len(body) < size+1 {
		return fmt.Errorf("%w: %s needs a %d-byte address and a checksum, got %d byte(s)",
			ErrTruncated, f.Command, size, len(body))
	}
	f.Address = AddressFromBytes(body[:size])
	f.HasAddress = true
	f.Data = body[size : len(body)-1]
	f.Checksum = body[len(body)-1]
	f.HasChecksum = true
	f.ChecksumValid = ChecksumValid(body)
	return nil
}

// splitVariableID consumes a Roland model or command ID. Each leading 00h
// extends the ID by one byte.
func splitVariableID(b []byte) (id, rest []byte, ok bool) {
	for n := 1; n <= len(b); n++ {
		if b[n-1] != 0x00 {
			return b[:n], b[n:], true
		}
	}
	return nil, b, false
}

// EncodeFrame assembles a Roland exclusive message for profile p. The
// checksum covers address and data, so the result always validates.
func EncodeFrame(p *Profile, device byte, cmd Command, addr Address, data []byte) ([]byte, error) {
	if device > 0x7F {
		return nil, fmt.Errorf("%w: device ID %02Xh", ErrOutOfRange, device)
	}
	if !addr.Valid(p.AddressSize) {
		return nil, fmt.Errorf("%w: address %s does not fit %s (%d bytes)", ErrOutOfRange, addr, p.Name, p.AddressSize)
	}
	for i, v := range data {
		if v > 0x7F {
			return nil, fmt.Errorf("%w: data byte %02Xh at %d", ErrOutOfRange, v, i)
		}
	}

	out := make([]byte, 0, 6+len(p.Model)+p.AddressSize+len(data))
	out = append(out, SysExStart, p.Manufacturer, device)
	out = append(out, p.Model...)
	out = append(out, byte(cmd))
	span := len(out)
	out = append(out, addr.Bytes(p.AddressSize)...)
	out = append(out, data...)
	out = append(out, Checksum(out[span:]))
	out = append(out, SysExEnd)
	return out, nil
}
