package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/james-see/soundpalette/pkg/log"
	"github.com/james-see/soundpalette/pkg/smf"
	"github.com/james-see/soundpalette/pkg/sysex"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatSyx     Format = "syx"
	FormatHex     Format = "hex"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi", ".smf":
		return FormatMIDI
	case ".syx":
		return FormatSyx
	case ".txt", ".hex":
		return FormatHex
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 2 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if len(data) >= 4 && string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	// Check for SysEx (starts with F0)
	if data[0] == sysex.SysExStart {
		return FormatSyx
	}

	if utf8.Valid(data) {
		if b, err := sysex.ParseHex(string(data)); err == nil && len(b) > 0 {
			return FormatHex
		}
	}
	return FormatUnknown
}

// Load reads the messages in data. Problems that leave part of the file
// readable are returned as warnings.
func (c *Converter) Load(data []byte, format Format) (*Loaded, error) {
	l := &Loaded{Format: format}
	switch format {
	case FormatMIDI:
		f, err := smf.Import(data)
		if err != nil {
			return nil, err
		}
		l.Collection, l.Events, l.Header = f.Collection, f.Events, &f.Header
		for _, w := range f.Warnings {
			l.Warnings = append(l.Warnings, w.Error())
		}
		log.Debugf("loaded MIDI file: %s", f.Summary())
		return l, nil

	case FormatHex:
		b, err := sysex.ParseHex(string(data))
		if err != nil {
			return nil, err
		}
		data = b
		fallthrough

	case FormatSyx:
		var warnings []*smf.ChunkError
		l.Collection, warnings = smf.ReadSyx(data, c.opts.Spacing)
		for _, w := range warnings {
			l.Warnings = append(l.Warnings, w.Error())
		}
		// ReadSyx only splits on F0h/F7h; status bytes inside a message
		// still need flagging.
		if len(warnings) == 0 && l.Collection.Len() > 0 {
			if err := ValidateSyx(data); err != nil {
				l.Warnings = append(l.Warnings, err.Error())
			}
		}
		log.Debugf("loaded %d messages from %s data", l.Collection.Len(), format)
		return l, nil

	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// Encode writes the loaded messages in format.
func (c *Converter) Encode(l *Loaded, format Format) ([]byte, error) {
	switch format {
	case FormatMIDI:
		opts := smf.ExportOptions{
			Division:  c.opts.Division,
			Tempo:     c.opts.Tempo,
			TrackName: c.opts.TrackName,
			Events:    l.Events,
		}
		// keep the source's timing, SMPTE included, and its meta events
		if l.Header != nil {
			opts.Division = l.Header.Division
			opts.Tempo = 0
			opts.TrackName = ""
		}
		return smf.Export(l.Collection, opts)
	case FormatSyx:
		return smf.WriteSyx(l.Collection), nil
	case FormatHex:
		return []byte(FormatHexText(l.Collection)), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Convert converts data between formats.
func (c *Converter) Convert(data []byte, from, to Format) ([]byte, []string, error) {
	l, err := c.Load(data, from)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s data: %w", from, err)
	}
	if l.Collection.Len() == 0 {
		return nil, l.Warnings, errors.New("no SysEx messages found")
	}
	out, err := c.Encode(l, to)
	if err != nil {
		return nil, l.Warnings, fmt.Errorf("conversion failed: %w", err)
	}
	return out, l.Warnings, nil
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) ([]string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		// Try to detect from content
		inputFormat = DetectFormatFromContent(data)
	}
	if inputFormat == FormatUnknown {
		return nil, errors.New("cannot determine input format")
	}

	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return nil, errors.New("cannot determine output format from filename")
	}

	out, warnings, err := c.Convert(data, inputFormat, outputFormat)
	if err != nil {
		return warnings, err
	}

	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return warnings, fmt.Errorf("failed to write output file: %w", err)
	}
	log.Infof("%s: %s -> %s, %d bytes", outputPath, inputFormat, outputFormat, len(out))
	return warnings, nil
}

// SyxToMIDI converts .syx data to a Standard MIDI File
func (c *Converter) SyxToMIDI(syxData []byte) ([]byte, []string, error) {
	return c.Convert(syxData, FormatSyx, FormatMIDI)
}

// MIDIToSyx extracts the SysEx messages of a Standard MIDI File
func (c *Converter) MIDIToSyx(midiData []byte) ([]byte, []string, error) {
	return c.Convert(midiData, FormatMIDI, FormatSyx)
}

// FormatHexText writes one message per line, with its tick as a comment.
func FormatHexText(coll *smf.Collection) string {
	var sb strings.Builder
	for _, e := range coll.Entries {
		fmt.Fprintf(&sb, "%s ; tick %d\n", sysex.FormatHex(e.Data), e.Tick)
	}
	return sb.String()
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"midi -> syx",
		"midi -> hex",
		"syx -> midi",
		"syx -> hex",
		"hex -> midi",
		"hex -> syx",
	}
}
