package converter

import (
	"fmt"
	"io"

	"github.com/james-see/soundpalette/pkg/log"
	"github.com/james-see/soundpalette/pkg/sysex"
)

// Message is one inspected message of a file.
type Message struct {
	Index      int
	Tick       uint32
	Inspection *sysex.Inspection
}

// Report is the inspection of every message in a file.
type Report struct {
	Format   Format
	Messages []Message
	// Events describes the non-SysEx events of a MIDI file.
	Events   []string
	Warnings []string
	Summary  string
}

// Inspect interprets every message in data. Hex text or .syx data that does
// not split into complete messages is inspected as a single message, so that
// the reason it is broken shows up in the report.
func (c *Converter) Inspect(data []byte, format Format) (*Report, error) {
	if format == FormatUnknown {
		format = DetectFormatFromContent(data)
	}
	l, err := c.Load(data, format)
	if err != nil {
		return nil, err
	}

	r := &Report{Format: format, Warnings: l.Warnings}
	if l.Collection.Len() == 0 && format != FormatMIDI {
		raw := data
		if format == FormatHex {
			raw, _ = sysex.ParseHex(string(data))
		}
		log.Debugf("no complete message, inspecting % X as one", raw)
		r.Messages = append(r.Messages, Message{Inspection: c.registry.Inspect(raw)})
		r.Warnings = nil
	} else {
		for i, e := range l.Collection.Entries {
			r.Messages = append(r.Messages, Message{Index: i, Tick: e.Tick, Inspection: c.registry.Inspect(e.Data)})
		}
	}
	for _, e := range l.Events {
		r.Events = append(r.Events, fmt.Sprintf("%d: %s", e.Tick, e))
	}

	if format == FormatMIDI {
		if info, err := ParseMIDI(data); err == nil {
			r.Summary = info.String()
		} else {
			log.Debugf("summary unavailable: %v", err)
		}
	}
	if r.Summary == "" {
		r.Summary = fmt.Sprintf("%d messages", len(r.Messages))
	}
	return r, nil
}

// Counts returns the number of messages with each status.
func (r *Report) Counts() map[sysex.Status]int {
	counts := make(map[sysex.Status]int)
	for _, m := range r.Messages {
		counts[m.Inspection.Status]++
	}
	return counts
}

// Write prints the report one message per line.
func (r *Report) Write(w io.Writer, showTicks bool) error {
	for _, m := range r.Messages {
		var err error
		if showTicks {
			_, err = fmt.Fprintf(w, "%6d  %s\n", m.Tick, m.Inspection)
		} else {
			_, err = fmt.Fprintln(w, m.Inspection)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
