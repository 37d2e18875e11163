package smf

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	gosmf "gitlab.com/gomidi/midi/v2/smf"
)

// Entry is one SysEx message and the time it is sent at. Delta is what
// Export writes; Tick is the running total of deltas, filled in by Add and
// AddAt for display.
type Entry struct {
	Delta uint32 // ticks since the previous entry
	Tick  uint32 // ticks since the start
	Data  []byte // the complete message, F0h through F7h
}

// Collection is an ordered list of timed SysEx messages. Entries are written
// in the order they were added.
type Collection struct {
	Entries []Entry
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends msg delta ticks after the last entry.
func (c *Collection) Add(delta uint32, msg []byte) {
	var tick uint32
	if n := len(c.Entries); n > 0 {
		tick = c.Entries[n-1].Tick
	}
	c.Entries = append(c.Entries, Entry{Delta: delta, Tick: tick + delta, Data: msg})
}

// AddAt appends msg at an absolute tick. Ticks before the last entry are
// moved up to it so that deltas never go negative.
func (c *Collection) AddAt(tick uint32, msg []byte) {
	var last uint32
	if n := len(c.Entries); n > 0 {
		last = c.Entries[n-1].Tick
	}
	if tick < last {
		tick = last
	}
	c.Add(tick-last, msg)
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	return len(c.Entries)
}

// Messages returns the messages without their timing.
func (c *Collection) Messages() [][]byte {
	out := make([][]byte, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Data
	}
	return out
}

// Event is a track event other than a SysEx message, kept so that files can
// be read and written again without losing it. Data is the event as it
// appears in the track minus the delta time, with running status expanded.
type Event struct {
	Tick  uint32
	Track int
	Data  []byte
}

// IsMeta reports whether the event is a meta event.
func (e Event) IsMeta() bool {
	return len(e.Data) > 0 && e.Data[0] == StatusMeta
}

func (e Event) String() string {
	switch {
	case e.IsMeta():
		return gosmf.Message(e.Data).String()
	case len(e.Data) > 0 && e.Data[0] == StatusEscape:
		return fmt.Sprintf("Escape % X", e.Data[1:])
	default:
		return midi.Message(e.Data).String()
	}
}

// sortEvents orders events by tick, keeping the relative order of events at
// the same tick.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Tick < events[j].Tick
	})
}
