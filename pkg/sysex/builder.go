package sysex

import "fmt"

// Build returns a DT1 message setting param to value on the given device.
// The value is validated first; an invalid value returns an error and no
// bytes.
func Build(p *Profile, device byte, param *Parameter, value int) ([]byte, error) {
	if err := Validate(param, value); err != nil {
		return nil, err
	}
	msg, err := EncodeFrame(p, device, CommandDT1, param.Address, param.Pack(value))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", param.Path(), err)
	}
	return msg, nil
}

// BuildRequest returns an RQ1 message asking the device for param's current
// value. The size field is as wide as the profile's addresses.
func BuildRequest(p *Profile, device byte, param *Parameter) ([]byte, error) {
	size := make([]byte, p.AddressSize)
	n := param.Size
	for i := len(size) - 1; i >= 0; i-- {
		size[i] = byte(n & 0x7F)
		n >>= 7
	}
	msg, err := EncodeFrame(p, device, CommandRQ1, param.Address, size)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", param.Path(), err)
	}
	return msg, nil
}
