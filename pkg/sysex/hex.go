package sysex

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatHex renders bytes the way MIDI manuals do: "F0 41 10 42 12".
func FormatHex(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String()
}

// ParseHex parses whitespace or comma separated hex bytes. Each byte may be
// written with a 0x prefix or an h suffix, and text after '#' or ';' on a line
// is ignored. Runs of hex digits without separators ("F04110") are split into
// pairs.
func ParseHex(s string) ([]byte, error) {
	var out []byte
	for lineNo, line := range strings.Split(s, "\n") {
		if i := strings.IndexAny(line, "#;"); i >= 0 {
			line = line[:i]
		}
		for _, tok := range strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ',' || r == '\r'
		}) {
			t := strings.ToLower(tok)
			t = strings.TrimPrefix(t, "0x")
			if len(t) <= 3 {
				t = strings.TrimSuffix(t, "h")
			}
			if len(t) == 0 {
				return nil, fmt.Errorf("line %d: empty byte in %q", lineNo+1, tok)
			}
			if len(t) > 2 {
				if len(t)%2 == 1 {
					return nil, fmt.Errorf("line %d: odd number of hex digits in %q", lineNo+1, tok)
				}
			}
			for i := 0; i < len(t); i += 2 {
				end := i + 2
				if end > len(t) {
					end = len(t)
				}
				v, err := strconv.ParseUint(t[i:end], 16, 8)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid hex byte %q", lineNo+1, tok)
				}
				out = append(out, byte(v))
			}
		}
	}
	return out, nil
}
