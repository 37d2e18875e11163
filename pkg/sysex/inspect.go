package sysex

import (
	"errors"
	"fmt"
	"strings"
)

// Status classifies an inspected message. Higher values are more severe;
// an Inspection reports the most severe status that applies.
type Status int

const (
	StatusValid Status = iota
	StatusPartialMatch
	StatusUnknownAddress
	StatusUnknownCommand
	StatusChecksumInvalid
	StatusUnknownProfile
	StatusTruncated
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusPartialMatch:
		return "partial match"
	case StatusUnknownAddress:
		return "unknown address"
	case StatusUnknownCommand:
		return "unknown command"
	case StatusChecksumInvalid:
		return "checksum invalid"
	case StatusUnknownProfile:
		return "unknown profile"
	case StatusTruncated:
		return "truncated"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Match is how well a slice of data lines up with a parameter.
type Match int

const (
	MatchNone    Match = iota // no parameter at this address
	MatchFull                 // the whole parameter
	MatchPartial              // only part of a multi-byte parameter
)

// ParameterValue is one parameter's worth of a DT1 message's data.
type ParameterValue struct {
	Match   Match
	Address Address
	Param   *Parameter // nil for MatchNone
	Offset  int        // byte position within Param where Data starts
	Data    []byte
	// Value and OutOfRange are only meaningful for MatchFull.
	Value      int
	OutOfRange bool
}

// Inspection is the best-effort interpretation of arbitrary bytes.
type Inspection struct {
	Raw    []byte
	Status Status
	// Err is the framing error for StatusTruncated and the manufacturer
	// error for foreign messages.
	Err   error
	Frame *Frame

	Block           string
	BlockPrefixSize int
	Values          []ParameterValue

	// RequestSize is the size field of an RQ1 message.
	RequestSize int
}

// Inspect interprets b as a single exclusive message. It never fails: every
// problem with the input is reflected in the returned Status.
func (r *Registry) Inspect(b []byte) *Inspection {
	in := &Inspection{Raw: b}
	f, err := r.DecodeFrame(b)
	in.Frame = f
	if err != nil {
		in.Err = err
		if errors.Is(err, ErrUnknownManufacturer) {
			in.Status = StatusUnknownProfile
		} else {
			in.Status = StatusTruncated
		}
		return in
	}
	if f.Universal != nil {
		return in
	}
	if f.Profile == nil {
		in.Status = StatusUnknownProfile
		return in
	}

	content := r.interpret(in, f)
	if !f.ChecksumValid {
		in.Status = StatusChecksumInvalid
	}
	if content > in.Status {
		in.Status = content
	}
	return in
}

func (r *Registry) interpret(in *Inspection, f *Frame) Status {
	p := f.Profile
	if f.Command != CommandDT1 && f.Command != CommandRQ1 {
		return StatusUnknownCommand
	}
	in.Block, in.BlockPrefixSize, _ = r.Block(p, f.Address)

	if f.Command == CommandRQ1 {
		for _, v := range f.Data {
			in.RequestSize = in.RequestSize<<7 | int(v)
		}
		param, offset, ok := r.Lookup(p, f.Address)
		if !ok {
			in.Values = []ParameterValue{{Match: MatchNone, Address: f.Address}}
			return StatusUnknownAddress
		}
		m := MatchFull
		if offset != 0 {
			m = MatchPartial
		}
		in.Values = []ParameterValue{{Match: m, Address: f.Address, Param: param, Offset: offset}}
		return StatusValid
	}

	if len(f.Data) == 0 {
		param, offset, ok := r.Lookup(p, f.Address)
		if !ok {
			in.Values = []ParameterValue{{Match: MatchNone, Address: f.Address}}
			return StatusUnknownAddress
		}
		in.Values = []ParameterValue{{Match: MatchPartial, Address: f.Address, Param: param, Offset: offset}}
		return StatusPartialMatch
	}

	in.Values = r.walk(p, f.Address, f.Data)
	known, complete := 0, true
	for _, v := range in.Values {
		if v.Match != MatchNone {
			known++
		}
		if v.Match != MatchFull {
			complete = false
		}
	}
	switch {
	case known == 0:
		return StatusUnknownAddress
	case !complete:
		return StatusPartialMatch
	}
	return StatusValid
}

// walk splits DT1 data into per-parameter values, starting at addr. Runs of
// bytes that belong to no parameter are grouped into one MatchNone value.
func (r *Registry) walk(p *Profile, addr Address, data []byte) []ParameterValue {
	var values []ParameterValue
	for len(data) > 0 {
		param, offset, ok := r.Lookup(p, addr)
		if !ok {
			n := 1
			for n < len(data) {
				if _, _, ok := r.Lookup(p, addr.Add(n)); ok {
					break
				}
				n++
			}
			values = append(values, ParameterValue{Match: MatchNone, Address: addr, Data: data[:n]})
			addr, data = addr.Add(n), data[n:]
			continue
		}

		n := param.Size - offset
		if n > len(data) {
			n = len(data)
		}
		v := ParameterValue{Address: addr, Param: param, Offset: offset, Data: data[:n]}
		if offset == 0 && n == param.Size {
			v.Match = MatchFull
			v.Value = param.Unpack(v.Data)
			v.OutOfRange = Validate(param, v.Value) != nil || !packed(param, v.Data)
		} else {
			v.Match = MatchPartial
		}
		values = append(values, v)
		addr, data = addr.Add(n), data[n:]
	}
	return values
}

// packed reports whether every data byte uses only the bits the packing
// allows; a nibblized byte above 0Fh can't be a valid value.
func packed(p *Parameter, data []byte) bool {
	limit := byte(1<<p.Packing.bits() - 1)
	for _, b := range data {
		if b > limit {
			return false
		}
	}
	return true
}

// OutOfRange reports whether any fully matched value is outside its
// parameter's range.
func (in *Inspection) OutOfRange() bool {
	for _, v := range in.Values {
		if v.OutOfRange {
			return true
		}
	}
	return false
}

// String renders the inspection on one line, for example
//
//	Roland: Device 10h, Roland GS: Data set 1: Patch Common § REVERB MACRO => 03 = 3 [Hall 1]
func (in *Inspection) String() string {
	if in.Frame == nil {
		return fmt.Sprintf("(invalid) %s: %v", FormatHex(in.Raw), in.Err)
	}
	f := in.Frame
	var sb strings.Builder
	sb.WriteString(ManufacturerName(f.Manufacturer))
	sb.WriteString(": ")

	switch {
	case f.Universal != nil:
		sb.WriteString(f.Universal.String())
		return sb.String()
	case !f.IsRoland():
		fmt.Fprintf(&sb, "(unknown) %s", FormatHex(f.Body))
		return sb.String()
	}

	fmt.Fprintf(&sb, "Device %02Xh, ", f.Device)
	if f.Profile != nil {
		sb.WriteString(f.Profile.Name)
	} else {
		fmt.Fprintf(&sb, "Model %s", FormatHex(f.Model))
	}
	if f.Profile == nil || (f.Command != CommandDT1 && f.Command != CommandRQ1) {
		fmt.Fprintf(&sb, ", Command %s: (unknown) %s", FormatHex(f.CommandID), FormatHex(f.Body[1+len(f.Model)+len(f.CommandID):]))
		in.writeFlags(&sb)
		return sb.String()
	}

	fmt.Fprintf(&sb, ": %s: ", f.Command)
	size := f.Profile.AddressSize
	block := ""
	for i, v := range in.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		if v.Param != nil && v.Param.Block != block {
			block = v.Param.Block
			fmt.Fprintf(&sb, "%s § ", block)
		}
		switch v.Match {
		case MatchNone:
			addr := v.Address.Bytes(size)
			if name, prefix, ok := in.blockOf(v.Address); ok {
				if name != block {
					block = name
					fmt.Fprintf(&sb, "%s § ", block)
				}
				addr = addr[prefix:]
			}
			fmt.Fprintf(&sb, "(unknown) %s", FormatHex(addr))
		case MatchPartial:
			fmt.Fprintf(&sb, "%s (PARTIAL)", v.Param.Name)
		default:
			sb.WriteString(v.Param.Name)
		}
		if f.Command == CommandRQ1 {
			fmt.Fprintf(&sb, ", size %d", in.RequestSize)
			continue
		}
		if len(v.Data) > 0 {
			fmt.Fprintf(&sb, " => %s", FormatHex(v.Data))
		}
		if v.Match == MatchFull {
			sb.WriteString(v.Param.Describe(v.Value))
		}
	}
	in.writeFlags(&sb)
	return sb.String()
}

func (in *Inspection) blockOf(addr Address) (string, int, bool) {
	if addr == in.Frame.Address && in.Block != "" {
		return in.Block, in.BlockPrefixSize, true
	}
	return in.Frame.Profile.block(addr)
}

func (in *Inspection) writeFlags(sb *strings.Builder) {
	if in.OutOfRange() {
		sb.WriteString(" (out of range)")
	}
	if in.Frame.HasChecksum && !in.Frame.ChecksumValid {
		sb.WriteString(" (WRONG CHECKSUM)")
	}
}
