package sysex

// ValueKind tags how a parameter's data is interpreted.
type ValueKind int

const (
	KindRange   ValueKind = iota // integer in [Min, Max]
	KindEnum                     // one of Labels
	KindBitmask                  // flags within Mask
)

func (k ValueKind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindBitmask:
		return "bitmask"
	default:
		return "range"
	}
}

// Packing is the layout of a multi-byte value in the data field. Both are
// most significant byte first.
type Packing int

const (
	Pack7Bit   Packing = iota // 7 bits per data byte
	PackNibble                // 4 bits per data byte ("nibblized" in Roland manuals)
)

func (p Packing) bits() uint {
	if p == PackNibble {
		return 4
	}
	return 7
}

// Unit maps a parameter's value range onto a physical unit. The manuals
// rarely say how the mapping works, so it is treated as linear around the
// parameter's zero point and displayed as approximate.
type Unit struct {
	Min, Max float64
	Name     string
}

// Label names one value of an enumerated parameter.
type Label struct {
	Value int
	Name  string
}

// Parameter is one row of a parameter address map.
//
// Address is relative to the owning Block while a profile is being declared,
// and absolute once the profile is loaded into a Registry.
type Parameter struct {
	Address Address
	Size    int
	Name    string
	Block   string
	Kind    ValueKind
	Min     int
	Max     int
	// Zero is the biased zero point for signed values, e.g. 40h for a
	// -64..+63 pan. Zero with Min == 0 means the value is unsigned.
	Zero    int
	Unit    *Unit
	Labels  []Label
	Mask    int
	Packing Packing
}

// Range declares a single-byte integer parameter.
func Range(offset Address, name string, min, max int) Parameter {
	return Parameter{Address: offset, Size: 1, Name: name, Kind: KindRange, Min: min, Max: max}
}

// Enum declares a single-byte parameter whose values are labelled. Labels are
// numbered from 0 in order.
func Enum(offset Address, name string, labels ...string) Parameter {
	p := Parameter{Address: offset, Size: 1, Name: name, Kind: KindEnum, Max: len(labels) - 1}
	for i, l := range labels {
		p.Labels = append(p.Labels, Label{Value: i, Name: l})
	}
	return p
}

// Switch declares an OFF/ON parameter.
func Switch(offset Address, name string) Parameter {
	return Enum(offset, name, "OFF", "ON")
}

// Bitmask declares a single-byte parameter made of independent flags.
func Bitmask(offset Address, name string, mask int) Parameter {
	return Parameter{Address: offset, Size: 1, Name: name, Kind: KindBitmask, Max: mask, Mask: mask}
}

// Centered sets the biased zero point.
func (p Parameter) Centered(zero int) Parameter {
	p.Zero = zero
	return p
}

// In attaches a unit range.
func (p Parameter) In(min, max float64, unit string) Parameter {
	p.Unit = &Unit{Min: min, Max: max, Name: unit}
	return p
}

// Nibblized makes the parameter a size-byte value packed 4 bits per byte.
func (p Parameter) Nibblized(size int) Parameter {
	p.Size = size
	p.Packing = PackNibble
	return p
}

// Wide makes the parameter a size-byte value packed 7 bits per byte.
func (p Parameter) Wide(size int) Parameter {
	p.Size = size
	p.Packing = Pack7Bit
	return p
}

// Signed reports whether values are shown relative to a zero point inside
// the range.
func (p *Parameter) Signed() bool {
	return p.Kind == KindRange && p.Zero != p.Min && p.Zero != p.Max && p.Zero != 0
}

// Label returns the label for value, if the parameter is an enum and has one.
func (p *Parameter) Label(value int) (string, bool) {
	for _, l := range p.Labels {
		if l.Value == value {
			return l.Name, true
		}
	}
	return "", false
}

// Path is the parameter's qualified name, "Block / NAME".
func (p *Parameter) Path() string {
	if p.Block == "" {
		return p.Name
	}
	return p.Block + " / " + p.Name
}

// Block is a group of parameters sharing an address prefix, the "Address
// Block Map" of a Roland manual.
type Block struct {
	Prefix     Address
	PrefixSize int
	Name       string
	Params     []Parameter
}

// Profile describes a device family: its identifiers and address map.
type Profile struct {
	Key           string
	Name          string
	Manufacturer  byte
	Model         []byte
	DefaultDevice byte
	AddressSize   int
	Blocks        []Block
}

func (p *Profile) String() string {
	return p.Name
}

func (p *Profile) block(addr Address) (string, int, bool) {
	for _, b := range p.Blocks {
		if addr>>(8*uint(p.AddressSize-b.PrefixSize)) == b.Prefix {
			return b.Name, b.PrefixSize, true
		}
	}
	return "", 0, false
}
