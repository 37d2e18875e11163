package smf

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ExportOptions control how a collection is written.
type ExportOptions struct {
	// Division is the number of ticks per quarter note, or an SMPTE
	// division with the top bit set, as carried over from an imported file.
	// Zero means DefaultDivision.
	Division uint16
	// Tempo in beats per minute. Zero leaves the tempo out, which players
	// take as 120.
	Tempo float64
	// TrackName is written as a meta event when set.
	TrackName string
	// Events are written along with the collection, for instance those
	// preserved by Import. At equal ticks meta events go before the
	// collection's entries and channel events after them.
	Events []Event
}

// Export writes c as a format 0 Standard MIDI File.
func Export(c *Collection, opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes c to w as a format 0 Standard MIDI File. The track is built in
// memory first so that its length is known before the chunk header goes out.
func Write(w io.Writer, c *Collection, opts ExportOptions) error {
	division := opts.Division
	if division == 0 {
		division = DefaultDivision
	}
	header := Header{Format: 0, Tracks: 1, Division: division}
	if header.SMPTE() {
		if _, _, ok := header.Timecode(); !ok {
			return errors.Errorf("division 0x%04X is not a valid SMPTE time division", division)
		}
	}

	track, err := encodeTrack(c, opts)
	if err != nil {
		return err
	}
	if uint64(len(track)) > 0xFFFFFFFF {
		return errors.Errorf("track too long (%d bytes)", len(track))
	}

	bw := bufio.NewWriter(w)
	err = binary.Write(bw, binary.BigEndian, chunkHeader{Signature: SignatureHeader, Size: 6})
	if err == nil {
		err = binary.Write(bw, binary.BigEndian, header)
	}
	if err == nil {
		err = binary.Write(bw, binary.BigEndian, chunkHeader{Signature: SignatureTrack, Size: uint32(len(track))})
	}
	if err == nil {
		_, err = bw.Write(track)
	}
	if err == nil {
		err = bw.Flush()
	}
	return errors.WithStack(err)
}

type trackWriter struct {
	buf  []byte
	tick uint32
}

func (t *trackWriter) event(tick uint32, data ...byte) error {
	if tick < t.tick {
		return errors.Errorf("event at tick %d after tick %d", tick, t.tick)
	}
	var err error
	t.buf, err = AppendVLQ(t.buf, tick-t.tick)
	if err != nil {
		return errors.Wrapf(err, "delta time at tick %d", tick)
	}
	t.tick = tick
	t.buf = append(t.buf, data...)
	return nil
}

// sized writes an event whose body is preceded by its length: status,
// [meta type,] length, body.
func (t *trackWriter) sized(tick uint32, prefix []byte, body []byte) error {
	if err := t.event(tick, prefix...); err != nil {
		return err
	}
	var err error
	t.buf, err = AppendVLQ(t.buf, uint32(len(body)))
	if err != nil {
		return errors.Wrapf(err, "event length at tick %d", tick)
	}
	t.buf = append(t.buf, body...)
	return nil
}

func encodeTrack(c *Collection, opts ExportOptions) ([]byte, error) {
	t := &trackWriter{}
	if opts.TrackName != "" {
		if err := t.sized(0, []byte{StatusMeta, MetaTrackName}, []byte(opts.TrackName)); err != nil {
			return nil, err
		}
	}
	if opts.Tempo > 0 {
		usec := uint32(60000000/opts.Tempo + 0.5)
		if usec == 0 || usec > 0xFFFFFF {
			return nil, errors.Errorf("tempo %.2f BPM out of range", opts.Tempo)
		}
		if err := t.sized(0, []byte{StatusMeta, MetaTempo}, []byte{byte(usec >> 16), byte(usec >> 8), byte(usec)}); err != nil {
			return nil, err
		}
	}

	events := append([]Event(nil), opts.Events...)
	sortEvents(events)
	next := 0
	flush := func(before uint32, inclusive bool) error {
		for ; next < len(events); next++ {
			e := events[next]
			if e.Tick > before || (e.Tick == before && !inclusive && !e.IsMeta()) {
				return nil
			}
			if err := writeEvent(t, e); err != nil {
				return err
			}
		}
		return nil
	}

	if c != nil {
		var tick uint64
		for i, e := range c.Entries {
			tick += uint64(e.Delta)
			if tick > 0xFFFFFFFF {
				return nil, errors.Errorf("entry %d lies past tick 0xFFFFFFFF", i)
			}
			e.Tick = uint32(tick)
			if err := flush(e.Tick, false); err != nil {
				return nil, err
			}
			if len(e.Data) < 2 || e.Data[0] != StatusSysEx || e.Data[len(e.Data)-1] != 0xF7 {
				return nil, errors.Errorf("entry %d is not a complete SysEx message: % X", i, e.Data)
			}
			// F0 <length> <everything after F0, including F7>
			if err := t.sized(e.Tick, []byte{StatusSysEx}, e.Data[1:]); err != nil {
				return nil, errors.Wrapf(err, "entry %d", i)
			}
		}
	}
	if err := flush(^uint32(0), true); err != nil {
		return nil, err
	}

	if err := t.event(t.tick, StatusMeta, MetaEndOfTrack, 0x00); err != nil {
		return nil, err
	}
	return t.buf, nil
}

func writeEvent(t *trackWriter, e Event) error {
	if len(e.Data) == 0 {
		return nil
	}
	switch e.Data[0] {
	case StatusMeta:
		if len(e.Data) < 2 {
			return errors.Errorf("meta event at tick %d has no type", e.Tick)
		}
		if e.Data[1] == MetaEndOfTrack {
			return nil
		}
		return t.sized(e.Tick, e.Data[:2], e.Data[2:])
	case StatusSysEx, StatusEscape:
		return t.sized(e.Tick, e.Data[:1], e.Data[1:])
	default:
		return t.event(e.Tick, e.Data...)
	}
}
