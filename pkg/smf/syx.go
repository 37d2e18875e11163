package smf

import (
	"github.com/pkg/errors"
)

// ReadSyx splits a raw .syx stream of back-to-back messages into a
// collection, placing spacing ticks between consecutive messages. Bytes
// outside any F0h…F7h message and a message left open at the end are
// reported and skipped.
func ReadSyx(b []byte, spacing uint32) (*Collection, []*ChunkError) {
	c := NewCollection()
	var warnings []*ChunkError
	warn := func(offset int, err error) {
		warnings = append(warnings, &ChunkError{Chunk: "syx", Index: c.Len(), Offset: offset, Err: err})
	}

	start := -1
	stray := -1
	for i, v := range b {
		switch {
		case v == StatusSysEx:
			if start >= 0 {
				warn(start, errors.Errorf("message of %d bytes never terminated", i-start))
			}
			if stray >= 0 {
				warn(stray, errors.Errorf("%d bytes outside any message", i-stray))
				stray = -1
			}
			start = i
		case v == 0xF7 && start >= 0:
			var delta uint32
			if c.Len() > 0 {
				delta = spacing
			}
			c.Add(delta, append([]byte(nil), b[start:i+1]...))
			start = -1
		case start < 0 && stray < 0:
			stray = i
		}
	}
	if start >= 0 {
		warn(start, errors.Errorf("message of %d bytes never terminated", len(b)-start))
	}
	if stray >= 0 {
		warn(stray, errors.Errorf("%d bytes outside any message", len(b)-stray))
	}
	return c, warnings
}

// WriteSyx concatenates the messages of c. Timing is lost.
func WriteSyx(c *Collection) []byte {
	var out []byte
	for _, e := range c.Entries {
		out = append(out, e.Data...)
	}
	return out
}
