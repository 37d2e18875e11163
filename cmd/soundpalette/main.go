// Package main is the entry point for the soundpalette CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/james-see/soundpalette/pkg/config"
	"github.com/james-see/soundpalette/pkg/converter"
	"github.com/james-see/soundpalette/pkg/log"
	"github.com/james-see/soundpalette/pkg/sysex"
	"github.com/james-see/soundpalette/pkg/sysex/devices"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile  string
	profileName string
	deviceID    int
	division    int
	spacing     int
	tempo       float64
	serverPort  int

	debug  bool
	quiet  bool
	silent bool

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "soundpalette",
	Short: "Build, inspect and package Roland SysEx messages",
	Long: `soundpalette builds and decodes System Exclusive messages for Roland GS,
SC-55 and SC-7 tone generators, and moves them between .syx dumps, Standard
MIDI Files and hex text.

Examples:
  soundpalette inspect F0 41 10 42 12 40 01 30 03 0C F7
  soundpalette inspect -f setup.mid
  soundpalette build "Reverb Macro" "Hall 1"
  soundpalette list gs --block "Patch Part 1"
  soundpalette export setup.syx -o setup.mid --spacing 24
  soundpalette import song.mid -o song.syx
  soundpalette message gs-reset
  soundpalette tui
  soundpalette serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// setup applies the log level, loads the config and lets flags override it.
func setup(cmd *cobra.Command, args []string) error {
	if debug {
		log.Level = log.LevelDebug
	} else if silent {
		log.Level = log.LevelNone
	} else if quiet {
		log.Level = log.LevelWarn
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Warnf("ignoring config: %v", err)
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = profileName
	}
	if flags.Changed("device") {
		cfg.DeviceID = deviceID
	}
	if flags.Changed("division") {
		cfg.Division = division
	}
	if flags.Changed("spacing") {
		cfg.Spacing = spacing
	}
	if flags.Changed("tempo") {
		cfg.Tempo = tempo
	}
	if flags.Changed("port") {
		cfg.Server.Port = serverPort
	}
	return cfg.Validate()
}

func init() {
	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&profileName, "profile", "p", "gs", "Device profile (gs, sc55, sc7)")
	pf.IntVarP(&deviceID, "device", "d", 0x10, "Device ID (0-127, 127 = broadcast)")
	pf.BoolVarP(&debug, "debug", "D", false, "Show debug messages")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress information messages")
	pf.BoolVarP(&silent, "silent", "Q", false, "Do not output any messages")

	// Timing flags for commands that write MIDI files
	for _, c := range []*cobra.Command{exportCmd, convertCmd, serveCmd, tuiCmd} {
		c.Flags().IntVar(&division, "division", 480, "Ticks per quarter note")
		c.Flags().IntVar(&spacing, "spacing", 0, "Ticks between messages read from .syx or hex text")
		c.Flags().Float64Var(&tempo, "tempo", 120, "Tempo in BPM (0 to leave out)")
	}

	serveCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func currentProfile() (*sysex.Profile, error) {
	p, ok := devices.Default().Profile(cfg.Profile)
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", cfg.Profile)
	}
	return p, nil
}

func converterOptions() converter.Options {
	return converter.Options{
		Division: uint16(cfg.Division),
		Spacing:  uint32(cfg.Spacing),
		Tempo:    cfg.Tempo,
	}
}

func newConverter() *converter.Converter {
	return converter.New(devices.Default(), converterOptions())
}

// writeOutput writes data to outputFile, or prints it as hex when no file
// was given.
func writeOutput(data []byte) error {
	if outputFile == "" {
		fmt.Println(sysex.FormatHex(data))
		return nil
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return err
	}
	log.Infof("wrote %d bytes to %s", len(data), outputFile)
	return nil
}
