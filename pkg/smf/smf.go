// Package smf reads and writes Standard MIDI Files carrying SysEx messages.
//
// Writing always produces a format 0 file with a single track. Reading is
// tolerant: only a missing or unreadable header chunk is fatal, and every
// other problem is recorded as a warning while the rest of the file is still
// read.
package smf

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Chunk signatures
const (
	SignatureHeader = 'M'<<24 | 'T'<<16 | 'h'<<8 | 'd' // MThd
	SignatureTrack  = 'M'<<24 | 'T'<<16 | 'r'<<8 | 'k' // MTrk
)

// Event status bytes with a meaning of their own in a track.
const (
	StatusSysEx  = 0xF0
	StatusEscape = 0xF7
	StatusMeta   = 0xFF

	MetaTrackName  = 0x03
	MetaEndOfTrack = 0x2F
	MetaTempo      = 0x51
)

// DefaultDivision is the ticks per quarter note used when none is given.
const DefaultDivision = 480

// ErrNotSMF is returned when the data does not start with an MThd chunk.
var ErrNotSMF = errors.New("not a Standard MIDI File")

// chunkHeader is the eight bytes in front of every chunk.
type chunkHeader struct {
	Signature uint32
	Size      uint32
}

func (hdr chunkHeader) String() string {
	return signatureString(hdr.Signature)
}

func signatureString(s uint32) string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, s)
	for i, c := range b {
		if c < 0x20 || c > 0x7E {
			b[i] = '?'
		}
	}
	return string(b)
}

// Header is the content of the MThd chunk.
type Header struct {
	Format   uint16
	Tracks   uint16
	Division uint16
}

// SMPTE reports whether the division is in SMPTE frames rather than ticks
// per quarter note.
func (h Header) SMPTE() bool {
	return h.Division&0x8000 != 0
}

// Timecode splits an SMPTE division into frames per second and ticks per
// frame. ok is false for metric divisions, for rates other than 24, 25,
// 29 (drop frame) and 30, and for zero ticks per frame.
func (h Header) Timecode() (fps, ticksPerFrame int, ok bool) {
	if !h.SMPTE() {
		return 0, 0, false
	}
	fps = -int(int8(h.Division >> 8))
	ticksPerFrame = int(h.Division & 0xFF)
	switch fps {
	case 24, 25, 29, 30:
		return fps, ticksPerFrame, ticksPerFrame > 0
	}
	return fps, ticksPerFrame, false
}

// Chunk is a chunk the reader does not interpret, kept as it was found.
type Chunk struct {
	Signature string
	Offset    int
	Data      []byte
}

// ChunkError describes a problem in one chunk of a file. The reader reports
// these as warnings and carries on.
type ChunkError struct {
	Chunk  string // signature, e.g. "MTrk"
	Index  int    // position among the file's chunks
	Offset int    // byte offset of the problem in the file
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%s) at 0x%X: %v", e.Index, e.Chunk, e.Offset, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
