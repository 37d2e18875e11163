// Package devices provides the address maps of the supported Roland tone
// generators.
package devices

import (
	"sync"

	"github.com/james-see/soundpalette/pkg/sysex"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *sysex.Registry
)

// All returns every built-in profile.
func All() []*sysex.Profile {
	return []*sysex.Profile{GS, SC55, SC7}
}

// Default returns the process-wide registry of built-in profiles. The tables
// are checked on first use; a bad table panics.
func Default() *sysex.Registry {
	defaultOnce.Do(func() {
		defaultRegistry = sysex.MustRegistry(All()...)
	})
	return defaultRegistry
}
