package converter

import (
	"bytes"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

// TrackInfo summarises one track of a MIDI file
type TrackInfo struct {
	Name   string
	Events int
	SysEx  int
	Ticks  int64 // length of the track
}

// MIDIInfo summarises a MIDI file as a general purpose reader sees it
type MIDIInfo struct {
	Resolution uint16 // 0 for SMPTE timing
	Tempo      float64
	Tracks     []TrackInfo
}

// ParseMIDI summarises MIDI data. It reads the file with gomidi, which is
// stricter than the SysEx importer, so a file may import with warnings and
// still fail here.
func ParseMIDI(data []byte) (*MIDIInfo, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	// 120 BPM until a tempo event says otherwise
	info := &MIDIInfo{Tempo: 120}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		info.Resolution = mt.Resolution()
	}

	for _, track := range s.Tracks {
		var ti TrackInfo
		for _, ev := range track {
			ti.Ticks += int64(ev.Delta)
			msg := ev.Message
			if len(msg) == 0 {
				continue
			}
			ti.Events++

			switch {
			// Track name meta message (FF 03 len text)
			case len(msg) >= 3 && msg[0] == 0xFF && msg[1] == 0x03 && ti.Name == "":
				ti.Name = metaText(msg)
			// Tempo meta message (FF 51 03 tt tt tt)
			case len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03:
				microsecondsPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if microsecondsPerBeat > 0 {
					info.Tempo = 60000000.0 / float64(microsecondsPerBeat)
				}
			case msg[0] == 0xF0 || msg[0] == 0xF7:
				ti.SysEx++
			}
		}
		info.Tracks = append(info.Tracks, ti)
	}
	return info, nil
}

// metaText returns the text of a meta message, skipping its length.
func metaText(msg []byte) string {
	body := msg[2:]
	for i, b := range body {
		if b&0x80 == 0 {
			return string(body[i+1:])
		}
	}
	return ""
}

func (info *MIDIInfo) String() string {
	var sb strings.Builder
	if info.Resolution > 0 {
		fmt.Fprintf(&sb, "%d ticks per quarter note, %.2f BPM, %d tracks", info.Resolution, info.Tempo, len(info.Tracks))
	} else {
		fmt.Fprintf(&sb, "SMPTE timing, %d tracks", len(info.Tracks))
	}
	for i, t := range info.Tracks {
		fmt.Fprintf(&sb, "\n  track %d", i)
		if t.Name != "" {
			fmt.Fprintf(&sb, " %q", t.Name)
		}
		fmt.Fprintf(&sb, ": %d events, %d SysEx, %d ticks", t.Events, t.SysEx, t.Ticks)
	}
	return sb.String()
}
