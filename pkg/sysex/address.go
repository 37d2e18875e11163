package sysex

import (
	"fmt"
	"strings"
)

// Address is a Roland parameter address. Each byte of the address is a MIDI
// data byte (0-127) and the most significant byte comes first, so 40 01 30
// is stored as 0x400130.
type Address uint32

// AddressFromBytes packs up to four address bytes, most significant first.
func AddressFromBytes(b []byte) Address {
	var a Address
	for _, v := range b {
		a = a<<8 | Address(v)
	}
	return a
}

// Bytes returns the address as size bytes, most significant first.
func (a Address) Bytes(size int) []byte {
	b := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		b[i] = byte(a)
		a >>= 8
	}
	return b
}

// Valid reports whether the address fits in size bytes and every byte is a
// data byte.
func (a Address) Valid(size int) bool {
	if size < 4 && a>>(8*uint(size)) != 0 {
		return false
	}
	for ; a != 0; a >>= 8 {
		if a&0x80 != 0 {
			return false
		}
	}
	return true
}

// linear collapses the 7-bit address bytes into a contiguous integer so that
// byte offsets carry across address byte boundaries (40 00 7F + 1 = 40 01 00).
func (a Address) linear() int {
	n := 0
	for shift := 24; shift >= 0; shift -= 8 {
		n = n<<7 | int(a>>uint(shift)&0x7F)
	}
	return n
}

func addressFromLinear(n int) Address {
	var a Address
	for shift := 0; shift < 32; shift += 8 {
		a |= Address(n&0x7F) << uint(shift)
		n >>= 7
	}
	return a
}

// Add returns the address n data bytes further on.
func (a Address) Add(n int) Address {
	return addressFromLinear(a.linear() + n)
}

// Format renders the address as size space-separated hex bytes.
func (a Address) Format(size int) string {
	return FormatHex(a.Bytes(size))
}

func (a Address) String() string {
	size := 3
	if a > 0xFFFFFF {
		size = 4
	}
	return a.Format(size)
}

// ParseAddress parses an address written as hex bytes ("40 01 30") or as a
// single hex number ("400130", "0x400130", "400130h").
func ParseAddress(s string) (Address, error) {
	text := s
	if fields := strings.Fields(strings.ReplaceAll(s, ",", " ")); len(fields) == 1 {
		t := strings.ToLower(fields[0])
		t = strings.TrimSuffix(strings.TrimPrefix(t, "0x"), "h")
		if len(t)%2 == 1 {
			t = "0" + t
		}
		text = t
	}
	b, err := ParseHex(text)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(b) == 0 || len(b) > 4 {
		return 0, fmt.Errorf("invalid address %q: need 1 to 4 bytes", s)
	}
	for _, v := range b {
		if v > 0x7F {
			return 0, fmt.Errorf("invalid address %q: byte %02Xh is not a data byte", s, v)
		}
	}
	return AddressFromBytes(b), nil
}
