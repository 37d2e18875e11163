// Package converter moves SysEx messages between .syx files, Standard MIDI
// Files and hex text, and inspects whole files.
package converter

import (
	"github.com/james-see/soundpalette/pkg/smf"
	"github.com/james-see/soundpalette/pkg/sysex"
)

// Options control the timing written to and read from files.
type Options struct {
	Division  uint16  // ticks per quarter note for new MIDI files
	Spacing   uint32  // ticks between messages read from .syx or hex text
	Tempo     float64 // BPM written to new MIDI files, 0 for none
	TrackName string
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		Division: smf.DefaultDivision,
	}
}

// Loaded holds the messages read from a file of any format.
type Loaded struct {
	Format     Format
	Collection *smf.Collection
	// Events and Header are only set for MIDI files.
	Events   []smf.Event
	Header   *smf.Header
	Warnings []string
}

// Converter handles format conversions
type Converter struct {
	registry *sysex.Registry
	opts     Options
}

// New creates a new Converter that inspects with registry
func New(registry *sysex.Registry, opts Options) *Converter {
	if opts.Division == 0 {
		opts.Division = smf.DefaultDivision
	}
	return &Converter{registry: registry, opts: opts}
}

// GetRegistry returns the registry used for inspection
func (c *Converter) GetRegistry() *sysex.Registry {
	return c.registry
}

// Options returns the current options
func (c *Converter) Options() Options {
	return c.opts
}

// SetOptions replaces the options
func (c *Converter) SetOptions(opts Options) {
	if opts.Division == 0 {
		opts.Division = smf.DefaultDivision
	}
	c.opts = opts
}
