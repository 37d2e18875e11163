package sysex

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate checks value against the parameter's declared kind. Values are
// never clamped.
func Validate(p *Parameter, value int) error {
	switch p.Kind {
	case KindEnum:
		if _, ok := p.Label(value); !ok {
			return fmt.Errorf("%w: %d is not a value of %s", ErrInvalidEnum, value, p.Name)
		}
	case KindBitmask:
		if value < 0 || value&^p.Mask != 0 {
			return fmt.Errorf("%w: %s accepts only bits %Xh, got %Xh", ErrOutOfRange, p.Name, p.Mask, value)
		}
	default:
		if value < p.Min || value > p.Max {
			return fmt.Errorf("%w: %s must be %d..%d, got %d", ErrOutOfRange, p.Name, p.Min, p.Max, value)
		}
	}
	return nil
}

// Pack lays value out in the parameter's data field.
func (p *Parameter) Pack(value int) []byte {
	bits := p.Packing.bits()
	mask := 1<<bits - 1
	out := make([]byte, p.Size)
	for i := p.Size - 1; i >= 0; i-- {
		out[i] = byte(value & mask)
		value >>= bits
	}
	return out
}

// Unpack reads a value from a data field of the parameter's size.
func (p *Parameter) Unpack(data []byte) int {
	bits := p.Packing.bits()
	mask := 1<<bits - 1
	v := 0
	for _, b := range data {
		v = v<<bits | int(b)&mask
	}
	return v
}

// fits reports whether every value in the declared range can be packed.
func (p *Parameter) fits() bool {
	max := p.Max
	if p.Kind == KindBitmask {
		max = p.Mask
	}
	return p.Size > 0 && p.Size*int(p.Packing.bits()) < 32 && max < 1<<(uint(p.Size)*p.Packing.bits())
}

// ParseValue reads a value for p from user input. It accepts a decimal or hex
// ("0x40", "40h") raw value, an enum label, or for signed parameters a value
// with an explicit sign that is taken relative to the zero point ("+5").
func ParseValue(p *Parameter, s string) (int, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, fmt.Errorf("empty value for %s", p.Name)
	}
	for _, l := range p.Labels {
		if strings.EqualFold(l.Name, t) {
			return l.Value, nil
		}
	}
	lower := strings.ToLower(t)
	switch {
	case strings.HasPrefix(lower, "0x"):
		v, err := strconv.ParseInt(lower[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q for %s", s, p.Name)
		}
		return int(v), nil
	case strings.HasSuffix(lower, "h"):
		v, err := strconv.ParseInt(strings.TrimSuffix(lower, "h"), 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q for %s", s, p.Name)
		}
		return int(v), nil
	}
	v, err := strconv.Atoi(t)
	if err != nil {
		if p.Kind == KindEnum {
			return 0, fmt.Errorf("%w: %q is not a value of %s", ErrInvalidEnum, s, p.Name)
		}
		return 0, fmt.Errorf("invalid value %q for %s", s, p.Name)
	}
	if p.Signed() && (t[0] == '+' || t[0] == '-') {
		return p.Zero + v, nil
	}
	return v, nil
}

// Describe renders value as " = 3 [Hall 1]", " = +12 [≈ +1.9 Hz]" and so on.
// The result starts with a space.
func (p *Parameter) Describe(value int) string {
	var sb strings.Builder
	switch p.Kind {
	case KindBitmask:
		width := 0
		for m := p.Mask; m != 0; m >>= 1 {
			width++
		}
		fmt.Fprintf(&sb, " = %02Xh [%0*b]", value, width, value)
		return sb.String()
	case KindEnum:
		fmt.Fprintf(&sb, " = %d", value)
		if name, ok := p.Label(value); ok {
			fmt.Fprintf(&sb, " [%s]", name)
		}
		return sb.String()
	}

	if p.Signed() {
		fmt.Fprintf(&sb, " = %+d", value-p.Zero)
	} else {
		fmt.Fprintf(&sb, " = %d", value-p.Zero)
	}
	if p.Unit != nil && p.Max > p.Min && p.Unit.Max > p.Unit.Min {
		sb.WriteString(p.describeUnit(value))
	}
	return sb.String()
}

func (p *Parameter) describeUnit(value int) string {
	span := float64(p.Max - p.Min)
	unitSpan := p.Unit.Max - p.Unit.Min
	// The zero point must map to exactly zero so symmetric units read
	// naturally, e.g. -10 Hz..+10 Hz over 00h..7Fh with zero at 40h.
	scaled := float64(value-p.Zero) * (unitSpan / span)

	approx := "≈"
	if unitSpan == span {
		approx = "="
	}
	// Show only as many decimals as needed to tell neighbouring steps apart.
	precision := int(math.Max(0, math.Ceil(math.Log10(span/unitSpan)-1e-9)))
	var num string
	switch {
	case scaled == 0:
		num = "0"
	case p.Unit.Min < 0 && p.Unit.Max > 0:
		num = strconv.FormatFloat(scaled, 'f', precision, 64)
		if scaled > 0 {
			num = "+" + num
		}
	default:
		num = strconv.FormatFloat(scaled, 'f', precision, 64)
	}
	return fmt.Sprintf(" [%s %s %s]", approx, num, p.Unit.Name)
}
