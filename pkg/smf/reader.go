package smf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/james-see/soundpalette/pkg/log"
)

// File is the result of reading a Standard MIDI File.
type File struct {
	Header Header
	// Collection holds every SysEx message of every track, merged in time
	// order.
	Collection *Collection
	// Events holds all other track events, merged the same way.
	Events []Event
	// Unknown holds chunks other than MThd and MTrk.
	Unknown []Chunk
	// Warnings lists the problems found while reading.
	Warnings []*ChunkError
}

// Read reads a Standard MIDI File from r.
func Read(r io.Reader) (*File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Import(b)
}

// Import reads a Standard MIDI File held in memory. It fails only when
// the header chunk is missing or unreadable. Other problems are returned in
// File.Warnings and left to the caller to report. Import keeps no state
// between calls and is safe to call from several goroutines.
func Import(b []byte) (*File, error) {
	rd := bytes.NewReader(b)
	var hdr chunkHeader
	if err := binary.Read(rd, binary.BigEndian, &hdr); err != nil {
		return nil, errors.Wrap(ErrNotSMF, "file too short")
	}
	if hdr.Signature != SignatureHeader {
		return nil, errors.Wrapf(ErrNotSMF, "file starts with %q", hdr)
	}
	if hdr.Size < 6 {
		return nil, errors.Wrapf(ErrNotSMF, "header chunk has %d bytes", hdr.Size)
	}
	imp := &File{Collection: NewCollection()}
	if err := binary.Read(rd, binary.BigEndian, &imp.Header); err != nil {
		return nil, errors.Wrap(ErrNotSMF, "header chunk cut short")
	}
	log.Debugf("MThd format %d, %d tracks, division %d", imp.Header.Format, imp.Header.Tracks, imp.Header.Division)

	warn := func(index, offset int, name string, err error) {
		w := &ChunkError{Chunk: name, Index: index, Offset: offset, Err: err}
		log.Nestedf(1, "warning: %v", w)
		imp.Warnings = append(imp.Warnings, w)
	}
	if imp.Header.Format > 2 {
		warn(0, 8, "MThd", errors.Errorf("unknown format %d", imp.Header.Format))
	}
	if imp.Header.SMPTE() {
		if fps, tpf, ok := imp.Header.Timecode(); ok {
			log.Nestedf(1, "SMPTE timing, %d fps, %d ticks per frame", fps, tpf)
		} else {
			warn(0, 12, "MThd", errors.Errorf("SMPTE division %04Xh has no valid frame rate", imp.Header.Division))
		}
	}

	pos := 8 + int(hdr.Size)
	if pos > len(b) {
		pos = len(b)
	}

	var (
		entries []Event
		events  []Event
		tracks  int
	)
	for index := 1; pos < len(b); index++ {
		start := pos
		rd := bytes.NewReader(b[pos:])
		if err := binary.Read(rd, binary.BigEndian, &hdr); err != nil {
			warn(index, start, "?", errors.Errorf("%d stray bytes at end of file", len(b)-pos))
			break
		}
		pos += 8
		end := pos + int(hdr.Size)
		if end > len(b) || end < pos {
			warn(index, start, hdr.String(), errors.Errorf("chunk claims %d bytes, %d left", hdr.Size, len(b)-pos))
			end = len(b)
		}
		data := b[pos:end]
		pos = end

		if hdr.Signature != SignatureTrack {
			log.Debugf("%s chunk with %d bytes kept as is", hdr, len(data))
			imp.Unknown = append(imp.Unknown, Chunk{Signature: hdr.String(), Offset: start, Data: data})
			continue
		}

		log.Debugf("MTrk %d with %d bytes", tracks, len(data))
		tr := &trackReader{data: data, offset: start + 8, track: tracks}
		for _, err := range tr.read() {
			warn(index, err.offset, "MTrk", err.err)
		}
		entries = append(entries, tr.sysex...)
		events = append(events, tr.events...)
		tracks++
	}

	if tracks != int(imp.Header.Tracks) {
		warn(0, 10, "MThd", errors.Errorf("header lists %d tracks, found %d", imp.Header.Tracks, tracks))
	}

	sortEvents(entries)
	for _, e := range entries {
		imp.Collection.AddAt(e.Tick, e.Data)
	}
	sortEvents(events)
	imp.Events = events
	return imp, nil
}

type trackError struct {
	offset int
	err    error
}

type trackReader struct {
	data   []byte
	offset int // file offset of data
	track  int
	pos    int
	tick   uint32

	sysex  []Event
	events []Event
	errs   []trackError

	// an F0h message still waiting for its F7h continuation packets
	pending     []byte
	pendingTick uint32
}

func (tr *trackReader) fail(format string, args ...interface{}) {
	tr.errs = append(tr.errs, trackError{offset: tr.offset + tr.pos, err: errors.Errorf(format, args...)})
}

func (tr *trackReader) vlq() (uint32, bool) {
	v, n, err := ReadVLQ(tr.data[tr.pos:])
	if err != nil {
		tr.fail("%v", err)
		return 0, false
	}
	tr.pos += n
	return v, true
}

// body reads a length-prefixed event body.
func (tr *trackReader) body() ([]byte, bool) {
	n, ok := tr.vlq()
	if !ok {
		return nil, false
	}
	if int(n) > len(tr.data)-tr.pos {
		tr.fail("event of %d bytes with %d left in track", n, len(tr.data)-tr.pos)
		return nil, false
	}
	b := tr.data[tr.pos : tr.pos+int(n)]
	tr.pos += int(n)
	return b, true
}

func (tr *trackReader) read() []trackError {
	var running byte
	ended := false
	for tr.pos < len(tr.data) && !ended {
		delta, ok := tr.vlq()
		if !ok {
			break
		}
		tr.tick += delta
		if tr.pos >= len(tr.data) {
			tr.fail("delta time without an event")
			break
		}

		status := tr.data[tr.pos]
		switch {
		case status == StatusMeta:
			tr.pos++
			if tr.pos >= len(tr.data) {
				tr.fail("meta event without a type")
				return tr.finish(false)
			}
			typ := tr.data[tr.pos]
			tr.pos++
			body, ok := tr.body()
			if !ok {
				return tr.finish(false)
			}
			if typ == MetaEndOfTrack {
				ended = true
				continue
			}
			tr.event(append([]byte{StatusMeta, typ}, body...))
			running = 0

		case status == StatusSysEx:
			tr.pos++
			body, ok := tr.body()
			if !ok {
				return tr.finish(false)
			}
			tr.startSysEx(body)
			running = 0

		case status == StatusEscape:
			tr.pos++
			body, ok := tr.body()
			if !ok {
				return tr.finish(false)
			}
			tr.escape(body)
			running = 0

		case status >= 0xF1:
			tr.fail("status %02Xh is not allowed in a track", status)
			return tr.finish(false)

		default:
			if status&0x80 != 0 {
				running = status
				tr.pos++
			} else if running == 0 {
				tr.fail("data byte %02Xh without running status", status)
				return tr.finish(false)
			}
			n := channelDataLength(running)
			if tr.pos+n > len(tr.data) {
				tr.fail("channel event cut short")
				return tr.finish(false)
			}
			msg := append([]byte{running}, tr.data[tr.pos:tr.pos+n]...)
			tr.pos += n
			tr.event(msg)
		}
	}
	if ended && tr.pos < len(tr.data) {
		tr.fail("%d bytes after end of track", len(tr.data)-tr.pos)
	}
	return tr.finish(ended)
}

func (tr *trackReader) finish(ended bool) []trackError {
	if tr.pending != nil {
		tr.fail("SysEx message at tick %d never terminated", tr.pendingTick)
		tr.pending = nil
	}
	if !ended {
		tr.fail("missing end of track")
	}
	return tr.errs
}

func (tr *trackReader) event(data []byte) {
	tr.events = append(tr.events, Event{Tick: tr.tick, Track: tr.track, Data: data})
}

func (tr *trackReader) emit(tick uint32, msg []byte) {
	if log.Enabled(log.LevelDebug) {
		log.Nestedf(1, "SysEx at tick %d: % X", tick, msg)
	}
	tr.sysex = append(tr.sysex, Event{Tick: tick, Track: tr.track, Data: msg})
}

// startSysEx handles the body of an F0h event. Some writers repeat the F0h
// inside the body.
func (tr *trackReader) startSysEx(body []byte) {
	if tr.pending != nil {
		tr.fail("SysEx message at tick %d never terminated", tr.pendingTick)
	}
	if len(body) > 0 && body[0] == StatusSysEx {
		body = body[1:]
	}
	msg := append([]byte{StatusSysEx}, body...)
	if len(body) > 0 && body[len(body)-1] == 0xF7 {
		tr.pending = nil
		tr.emit(tr.tick, msg)
		return
	}
	tr.pending, tr.pendingTick = msg, tr.tick
}

// escape handles the body of an F7h event: either the next packet of a
// divided SysEx message, a complete message sent raw, or other raw bytes.
func (tr *trackReader) escape(body []byte) {
	if tr.pending != nil {
		tr.pending = append(tr.pending, body...)
		if len(body) > 0 && body[len(body)-1] == 0xF7 {
			tr.emit(tr.pendingTick, tr.pending)
			tr.pending = nil
		}
		return
	}
	if len(body) >= 2 && body[0] == StatusSysEx && body[len(body)-1] == 0xF7 {
		tr.emit(tr.tick, append([]byte(nil), body...))
		return
	}
	tr.event(append([]byte{StatusEscape}, body...))
}

func channelDataLength(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	default:
		return 2
	}
}

// Summary returns a short description of the file for logs and listings.
func (imp *File) Summary() string {
	return fmt.Sprintf("format %d, %d tracks, division %d: %d SysEx, %d other events, %d unknown chunks, %d warnings",
		imp.Header.Format, imp.Header.Tracks, imp.Header.Division,
		imp.Collection.Len(), len(imp.Events), len(imp.Unknown), len(imp.Warnings))
}
