package smf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	gosmf "gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/soundpalette/pkg/log"
)

var (
	gsReset   = []byte{0xF0, 0x41, 0x10, 0x42, 0x12, 0x40, 0x00, 0x7F, 0x00, 0x41, 0xF7}
	reverb    = []byte{0xF0, 0x41, 0x10, 0x42, 0x12, 0x40, 0x01, 0x30, 0x03, 0x0C, 0xF7}
	gmSystem  = []byte{0xF0, 0x7E, 0x7F, 0x09, 0x01, 0xF7}
	endTrack  = []byte{0x00, 0xFF, 0x2F, 0x00}
	noteOnOff = []byte{0x00, 0x90, 0x3C, 0x64, 0x60, 0x3C, 0x00} // running status
)

// file assembles a Standard MIDI File from raw track bodies.
func file(format, ntrks, division uint16, tracks ...[]byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, chunkHeader{SignatureHeader, 6})
	binary.Write(&buf, binary.BigEndian, Header{format, ntrks, division})
	for _, tr := range tracks {
		binary.Write(&buf, binary.BigEndian, chunkHeader{SignatureTrack, uint32(len(tr))})
		buf.Write(tr)
	}
	return buf.Bytes()
}

func join(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestExportBytes(t *testing.T) {
	c := NewCollection()
	c.Add(0, gsReset)
	got, err := Export(c, ExportOptions{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	want := file(0, 1, DefaultDivision, join(
		[]byte{0x00, 0xF0, 0x0A}, gsReset[1:],
		endTrack,
	))
	if !bytes.Equal(got, want) {
		t.Errorf("Export() =\n% X\nwant\n% X", got, want)
	}
	if !bytes.HasPrefix(got, []byte("MThd\x00\x00\x00\x06\x00\x00\x00\x01\x01\xE0MTrk")) {
		t.Errorf("Export() header = % X", got[:18])
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	c := NewCollection()
	c.Add(0, gsReset)
	c.Add(120, reverb)
	c.Add(0, gmSystem)
	c.Add(200, reverb)

	b, err := Export(c, ExportOptions{Division: 96, Tempo: 100, TrackName: "setup"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	f, err := Import(b)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(f.Warnings) != 0 {
		t.Errorf("Import() warnings = %v", f.Warnings)
	}
	if f.Header != (Header{Format: 0, Tracks: 1, Division: 96}) {
		t.Errorf("Header = %+v", f.Header)
	}
	if f.Collection.Len() != c.Len() {
		t.Fatalf("Import() got %d messages, want %d", f.Collection.Len(), c.Len())
	}
	for i, e := range c.Entries {
		got := f.Collection.Entries[i]
		if got.Tick != e.Tick || got.Delta != e.Delta || !bytes.Equal(got.Data, e.Data) {
			t.Errorf("entry %d = %+v, want %+v", i, got, e)
		}
	}
	if c.Entries[3].Tick != 320 {
		t.Errorf("cumulative tick = %d, want 320", c.Entries[3].Tick)
	}

	// track name and tempo come back as preserved events
	if len(f.Events) != 2 {
		t.Fatalf("Events = %v", f.Events)
	}
	if e := f.Events[0]; !e.IsMeta() || e.Data[1] != MetaTrackName || string(e.Data[2:]) != "setup" {
		t.Errorf("Events[0] = % X", e.Data)
	}
	if e := f.Events[1]; !bytes.Equal(e.Data, []byte{StatusMeta, MetaTempo, 0x09, 0x27, 0xC0}) {
		t.Errorf("Events[1] = % X", e.Data)
	}

	// writing the preserved events back gives the same file
	again, err := Export(f.Collection, ExportOptions{Division: 96, Events: f.Events})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.Equal(again, b) {
		t.Errorf("re-export differs:\n% X\n% X", again, b)
	}
}

func TestExportReadByGomidi(t *testing.T) {
	c := NewCollection()
	c.Add(10, gsReset)
	c.Add(470, reverb)

	b, err := Export(c, ExportOptions{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	s, err := gosmf.ReadFrom(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("gomidi ReadFrom() error = %v", err)
	}
	ticks, ok := s.TimeFormat.(gosmf.MetricTicks)
	if !ok || ticks.Resolution() != DefaultDivision {
		t.Errorf("TimeFormat = %v", s.TimeFormat)
	}
	if len(s.Tracks) != 1 {
		t.Fatalf("gomidi read %d tracks", len(s.Tracks))
	}
	var total uint32
	for _, ev := range s.Tracks[0] {
		total += ev.Delta
	}
	if total != 480 {
		t.Errorf("sum of deltas = %d, want 480", total)
	}
}

func TestExportRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		opts ExportOptions
	}{
		{"no F0", []byte{0x41, 0x10, 0xF7}, ExportOptions{}},
		{"no F7", []byte{0xF0, 0x41, 0x10}, ExportOptions{}},
		{"SMPTE frame rate", gsReset, ExportOptions{Division: 0xF028}},
		{"SMPTE ticks per frame", gsReset, ExportOptions{Division: 0xE700}},
		{"tempo", gsReset, ExportOptions{Tempo: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollection()
			c.Add(0, tt.data)
			if b, err := Export(c, tt.opts); err == nil {
				t.Errorf("Export() = % X, want error", b)
			}
		})
	}
}

func TestImportTolerance(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		messages int
		events   int
		unknown  int
		warning  string
		warnings int
	}{
		{
			name:     "format 1 merged by tick",
			data:     file(1, 2, 480, join([]byte{0x64, 0xF0, 0x0A}, reverb[1:], endTrack), join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:], endTrack)),
			messages: 2,
		},
		{
			name:     "unknown chunk kept",
			data:     append(file(0, 1, 480, join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:], endTrack)), 'X', 'F', 'I', 'H', 0, 0, 0, 2, 1, 2),
			messages: 1,
			unknown:  1,
		},
		{
			name:     "leading F0 inside the event",
			data:     file(0, 1, 480, join([]byte{0x00, 0xF0, 0x0B}, gsReset, endTrack)),
			messages: 1,
		},
		{
			name:     "channel events with running status",
			data:     file(0, 1, 480, join(noteOnOff, []byte{0x00, 0xF0, 0x0A}, gsReset[1:], endTrack)),
			messages: 1,
			events:   2,
		},
		{
			name:     "missing end of track",
			data:     file(0, 1, 480, join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:])),
			messages: 1,
			warning:  "missing end of track",
		},
		{
			name:     "chunk overruns the file",
			data:     file(0, 1, 480, join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:], endTrack))[:14+8+13],
			messages: 1,
			warning:  "chunk claims",
		},
		{
			name:     "malformed event stops the track",
			data:     file(0, 1, 480, join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:], []byte{0x00, 0x40, 0x00}, []byte{0x00, 0xF0, 0x0A}, reverb[1:], endTrack)),
			messages: 1,
			warning:  "without running status",
		},
		{
			name:     "track count mismatch",
			data:     file(0, 2, 480, join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:], endTrack)),
			messages: 1,
			warning:  "header lists 2 tracks, found 1",
		},
		{
			name: "corrupt first track, second still read",
			data: file(1, 2, 480,
				join([]byte{0x00, 0x40, 0x00}, endTrack),
				join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:], endTrack),
			),
			messages: 1,
			warning:  "without running status",
			warnings: 2,
		},
		{
			name:     "SMPTE division with no valid frame rate",
			data:     file(0, 1, 0xF028, join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:], endTrack)),
			messages: 1,
			warning:  "no valid frame rate",
		},
		{
			name:    "event length past the end",
			data:    file(0, 1, 480, []byte{0x00, 0xF0, 0x20, 0x41, 0x10}),
			warning: "event of 32 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Import(tt.data)
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if f.Collection.Len() != tt.messages || len(f.Events) != tt.events || len(f.Unknown) != tt.unknown {
				t.Errorf("Import() = %s", f.Summary())
			}
			if tt.warning == "" && len(f.Warnings) > 0 {
				t.Errorf("unexpected warnings %v", f.Warnings)
			}
			if tt.warning != "" && !hasWarning(f, tt.warning) {
				t.Errorf("warnings %v lack %q", f.Warnings, tt.warning)
			}
			if tt.warnings > 0 && len(f.Warnings) != tt.warnings {
				t.Errorf("got %d warnings %v, want %d", len(f.Warnings), f.Warnings, tt.warnings)
			}
		})
	}
}

func TestExportSMPTE(t *testing.T) {
	c := NewCollection()
	c.Add(40, gsReset)
	b, err := Export(c, ExportOptions{Division: 0xE728})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.HasPrefix(b, []byte("MThd\x00\x00\x00\x06\x00\x00\x00\x01\xE7\x28")) {
		t.Errorf("Export() header = % X", b[:14])
	}
	f, err := Import(b)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(f.Warnings) != 0 {
		t.Errorf("Import() warnings = %v", f.Warnings)
	}
	fps, tpf, ok := f.Header.Timecode()
	if !ok || fps != 25 || tpf != 40 {
		t.Errorf("Timecode() = %d, %d, %v, want 25, 40, true", fps, tpf, ok)
	}
	if e := f.Collection.Entries[0]; e.Tick != 40 {
		t.Errorf("tick = %d, want 40", e.Tick)
	}
}

func TestTimecode(t *testing.T) {
	tests := []struct {
		division uint16
		fps, tpf int
		ok       bool
	}{
		{0x01E0, 0, 0, false},
		{0xE828, 24, 40, true},
		{0xE728, 25, 40, true},
		{0xE350, 29, 80, true},
		{0xE204, 30, 4, true},
		{0xE200, 30, 0, false},
		{0xF028, 16, 40, false},
	}
	for _, tt := range tests {
		fps, tpf, ok := Header{Division: tt.division}.Timecode()
		if fps != tt.fps || tpf != tt.tpf || ok != tt.ok {
			t.Errorf("Timecode(%04X) = %d, %d, %v, want %d, %d, %v", tt.division, fps, tpf, ok, tt.fps, tt.tpf, tt.ok)
		}
	}
}

// Entries filled in directly carry only deltas.
func TestExportUsesDeltas(t *testing.T) {
	c := &Collection{Entries: []Entry{
		{Delta: 10, Data: gsReset},
		{Delta: 20, Data: reverb},
		{Delta: 0, Data: gmSystem},
	}}
	b, err := Export(c, ExportOptions{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	f, err := Import(b)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	want := []uint32{10, 30, 30}
	if f.Collection.Len() != len(want) {
		t.Fatalf("Import() = %s", f.Summary())
	}
	for i, tick := range want {
		if got := f.Collection.Entries[i].Tick; got != tick {
			t.Errorf("entry %d tick = %d, want %d", i, got, tick)
		}
	}
}

func TestImportConcurrent(t *testing.T) {
	saved, savedLevel := log.Output, log.Level
	defer func() { log.Output, log.Level = saved, savedLevel }()
	log.Output, log.Level = io.Discard, log.LevelDebug

	c := NewCollection()
	c.Add(0, reverb)
	clean, err := Export(c, ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	damaged := file(0, 2, 480, join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:]))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				data := clean
				if (g+i)%2 == 1 {
					data = damaged
				}
				f, err := Import(data)
				if err != nil {
					errs <- err
					return
				}
				if f.Collection.Len() != 1 {
					errs <- fmt.Errorf("goroutine %d: %s", g, f.Summary())
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestImportMergeOrder(t *testing.T) {
	b := file(1, 2, 480,
		join([]byte{0x64, 0xF0, 0x0A}, reverb[1:], endTrack),
		join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:], []byte{0x64, 0xF0, 0x05}, gmSystem[1:], endTrack),
	)
	f, err := Import(b)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{gsReset, reverb, gmSystem}
	for i, w := range want {
		if !bytes.Equal(f.Collection.Entries[i].Data, w) {
			t.Errorf("entry %d = % X, want % X", i, f.Collection.Entries[i].Data, w)
		}
	}
	if e := f.Collection.Entries[2]; e.Tick != 100 || e.Delta != 0 {
		t.Errorf("entry 2 tick %d delta %d", e.Tick, e.Delta)
	}
}

func TestImportPackets(t *testing.T) {
	tests := []struct {
		name  string
		track []byte
		want  []byte
		tick  uint32
	}{
		{
			name:  "F0 then F7 continuation",
			track: join([]byte{0x10, 0xF0, 0x05}, reverb[1:6], []byte{0x20, 0xF7, 0x05}, reverb[6:], endTrack),
			want:  reverb,
			tick:  0x10,
		},
		{
			name:  "escape with complete message",
			track: join([]byte{0x05, 0xF7, 0x06}, gmSystem, endTrack),
			want:  gmSystem,
			tick:  5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Import(file(0, 1, 480, tt.track))
			if err != nil {
				t.Fatal(err)
			}
			if len(f.Warnings) != 0 || f.Collection.Len() != 1 {
				t.Fatalf("Import() = %s: %v", f.Summary(), f.Warnings)
			}
			if e := f.Collection.Entries[0]; !bytes.Equal(e.Data, tt.want) || e.Tick != tt.tick {
				t.Errorf("entry = % X at %d, want % X at %d", e.Data, e.Tick, tt.want, tt.tick)
			}
		})
	}

	// raw escape bytes are not SysEx
	f, err := Import(file(0, 1, 480, join([]byte{0x00, 0xF7, 0x02, 0xF8, 0xFA}, endTrack)))
	if err != nil {
		t.Fatal(err)
	}
	if f.Collection.Len() != 0 || len(f.Events) != 1 || f.Events[0].String() != "Escape F8 FA" {
		t.Errorf("Import() = %s: %v", f.Summary(), f.Events)
	}
}

func TestImportFatal(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a midi file", []byte("RIFF\x00\x00\x00\x04WAVE")},
		{"short header", []byte("MThd\x00\x00\x00\x06\x00\x00")},
		{"header size", []byte("MThd\x00\x00\x00\x02\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Import(tt.data); !errors.Is(err, ErrNotSMF) {
				t.Errorf("Import() error = %v, want %v", err, ErrNotSMF)
			}
		})
	}
}

func TestReadSyx(t *testing.T) {
	c, warnings := ReadSyx(join(gsReset, []byte{0x00, 0x01}, reverb, reverb[:4]), 24)
	if c.Len() != 2 {
		t.Fatalf("ReadSyx() got %d messages", c.Len())
	}
	if c.Entries[0].Tick != 0 || c.Entries[1].Tick != 24 {
		t.Errorf("ticks = %d, %d", c.Entries[0].Tick, c.Entries[1].Tick)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v", warnings)
	}
	if got := WriteSyx(c); !bytes.Equal(got, join(gsReset, reverb)) {
		t.Errorf("WriteSyx() = % X", got)
	}
}

func hasWarning(f *File, s string) bool {
	for _, w := range f.Warnings {
		if strings.Contains(w.Error(), s) {
			return true
		}
	}
	return false
}

// Warnings are returned to the caller; at the default level nothing is printed.
func TestImportLeavesWarningsToCaller(t *testing.T) {
	saved, savedLevel := log.Output, log.Level
	defer func() { log.Output, log.Level = saved, savedLevel }()
	var buf bytes.Buffer
	log.Output, log.Level = &buf, log.LevelInfo

	f, err := Import(file(0, 2, 480, join([]byte{0x00, 0xF0, 0x0A}, gsReset[1:])))
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Warnings) != 2 {
		t.Errorf("Import() warnings = %v", f.Warnings)
	}
	if buf.Len() != 0 {
		t.Errorf("Import() printed %q", buf.String())
	}
}
