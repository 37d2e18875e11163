package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/james-see/soundpalette/pkg/api"
	"github.com/james-see/soundpalette/pkg/config"
	"github.com/james-see/soundpalette/pkg/converter"
	"github.com/james-see/soundpalette/pkg/log"
	"github.com/james-see/soundpalette/pkg/sysex"
	"github.com/james-see/soundpalette/pkg/sysex/devices"
	"github.com/james-see/soundpalette/pkg/tui"
)

var (
	inputFile  string
	request    bool
	blockName  string
	showTicks  bool
	showEvents bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [hex...]",
	Short: "Describe SysEx messages given as hex or in a file",
	Long: `Interprets pasted hex bytes, or every message in a .syx, .mid or hex text
file given with -f. The exit status is non-zero when a message is not valid.`,
	RunE: runInspect,
}

var buildCmd = &cobra.Command{
	Use:   "build <parameter> [value]",
	Short: "Build a message that sets a parameter",
	Long: `Builds a DT1 message setting one parameter. The parameter is a name
("Reverb Macro"), a qualified name ("Patch Part 1 / PART LEVEL") or an address
("40 11 19"). The value may be a number, hex ("40h", "0x40"), an enum label or,
for centred parameters, a signed offset ("+5"). With --request an RQ1 message
asking for the parameter is built instead and no value is needed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBuild,
}

var messageCmd = &cobra.Command{
	Use:   "message <gs-reset|gm-on|gm-off|master-volume|display> [arg]",
	Short: "Build a well-known message",
	Long: `Builds messages that are not a single parameter:
  gs-reset               GS reset (GS MODE SET = 0)
  gm-on, gm-off          General MIDI System On/Off
  master-volume <0-16383>  universal Master Volume
  display <text>         SC-55 display text`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMessage,
}

var listCmd = &cobra.Command{
	Use:   "list [profile]",
	Short: "List profiles, or the parameters of a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

var exportCmd = &cobra.Command{
	Use:   "export <input.syx|input.txt>",
	Short: "Pack SysEx messages into a Standard MIDI File",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <input.mid>",
	Short: "Extract the SysEx messages of a Standard MIDI File",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Automatically detects input format and converts to the output format based on file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the configuration, or save the given flags as defaults",
	RunE:  runConfig,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

var saveConfig bool

func init() {
	inspectCmd.Flags().StringVarP(&inputFile, "file", "f", "", "File to inspect (.syx, .mid or hex text)")
	inspectCmd.Flags().BoolVarP(&showTicks, "ticks", "t", false, "Show the tick of each message")
	inspectCmd.Flags().BoolVarP(&showEvents, "events", "e", false, "Also list the other events of a MIDI file")

	buildCmd.Flags().BoolVarP(&request, "request", "r", false, "Build an RQ1 request instead")
	buildCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write a .syx file instead of printing hex")
	messageCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write a .syx file instead of printing hex")

	listCmd.Flags().StringVarP(&blockName, "block", "b", "", "Only list the parameters of this block")

	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	importCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .syx file path")

	// Convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	configCmd.Flags().BoolVarP(&saveConfig, "save", "s", false, "Save the current settings")
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runInspect(cmd *cobra.Command, args []string) error {
	var (
		data   []byte
		format converter.Format
	)
	switch {
	case inputFile != "":
		var err error
		if data, err = os.ReadFile(inputFile); err != nil {
			return err
		}
		if format = converter.DetectFormat(inputFile); format == converter.FormatUnknown {
			format = converter.DetectFormatFromContent(data)
		}
	case len(args) > 0:
		data, format = []byte(strings.Join(args, " ")), converter.FormatHex
	default:
		return errors.New("give hex bytes or a file with -f")
	}

	report, err := newConverter().Inspect(data, format)
	if err != nil {
		return err
	}
	log.Infof("%s: %s", report.Format, report.Summary)
	for _, w := range report.Warnings {
		log.Warnf("%s", w)
	}
	if err := report.Write(os.Stdout, showTicks); err != nil {
		return err
	}
	if showEvents {
		for _, e := range report.Events {
			fmt.Println(e)
		}
	}

	invalid := 0
	for status, n := range report.Counts() {
		if status != sysex.StatusValid {
			invalid += n
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d messages are not valid", invalid, len(report.Messages))
	}
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := currentProfile()
	if err != nil {
		return err
	}
	r := devices.Default()
	param, err := r.Find(p, args[0])
	if err != nil {
		return err
	}

	var msg []byte
	if request {
		msg, err = sysex.BuildRequest(p, byte(cfg.DeviceID), param)
	} else {
		if len(args) < 2 {
			return fmt.Errorf("%s needs a value", param.Path())
		}
		var value int
		if value, err = sysex.ParseValue(param, args[1]); err != nil {
			return err
		}
		msg, err = sysex.Build(p, byte(cfg.DeviceID), param, value)
	}
	if err != nil {
		return err
	}
	log.Infof("%s", r.Inspect(msg))
	return writeOutput(msg)
}

func runMessage(cmd *cobra.Command, args []string) error {
	device := byte(cfg.DeviceID)
	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}

	var (
		msg []byte
		err error
	)
	switch strings.ToLower(args[0]) {
	case "gs-reset":
		msg, err = devices.GSReset(device)
	case "gm-on":
		msg = sysex.GMSystemOn(device)
	case "gm-off":
		msg = sysex.GMSystemOff(device)
	case "master-volume":
		var v int
		if v, err = strconv.Atoi(arg); err != nil {
			return fmt.Errorf("master volume must be a number: %q", arg)
		}
		msg, err = sysex.MasterVolume(device, v)
	case "display":
		msg, err = devices.DisplayMessage(device, arg)
	default:
		return fmt.Errorf("unknown message %q", args[0])
	}
	if err != nil {
		return err
	}
	log.Infof("%s", devices.Default().Inspect(msg))
	return writeOutput(msg)
}

func runList(cmd *cobra.Command, args []string) error {
	r := devices.Default()
	if len(args) == 0 {
		for _, p := range r.Profiles() {
			fmt.Printf("%-6s %-14s model %s, %d parameters\n", p.Key, p.Name, sysex.FormatHex(p.Model), len(r.Parameters(p)))
		}
		return nil
	}

	p, ok := r.Profile(args[0])
	if !ok {
		return fmt.Errorf("unknown profile %q", args[0])
	}
	found := false
	for _, param := range r.Parameters(p) {
		if blockName != "" && !strings.EqualFold(param.Block, blockName) {
			continue
		}
		found = true
		fmt.Printf("%s  %-40s %s\n", param.Address.Format(p.AddressSize), param.Path(), valueRange(param))
	}
	if !found {
		return fmt.Errorf("no parameters in block %q", blockName)
	}
	return nil
}

func valueRange(p *sysex.Parameter) string {
	switch p.Kind {
	case sysex.KindEnum:
		names := make([]string, len(p.Labels))
		for i, l := range p.Labels {
			names[i] = l.Name
		}
		return strings.Join(names, "|")
	case sysex.KindBitmask:
		return fmt.Sprintf("bits %02Xh", p.Mask)
	}
	s := fmt.Sprintf("%02Xh..%02Xh", p.Min, p.Max)
	if p.Signed() {
		s += fmt.Sprintf(" (%+d..%+d)", p.Min-p.Zero, p.Max-p.Zero)
	}
	if p.Unit != nil {
		s += fmt.Sprintf(" %g..%g %s", p.Unit.Min, p.Unit.Max, p.Unit.Name)
	}
	return s
}

func runExport(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".mid")
	if converter.DetectFormat(output) != converter.FormatMIDI {
		return fmt.Errorf("%s is not a .mid file name", output)
	}
	return convertFile(input, output)
}

func runImport(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".syx")
	return convertFile(input, output)
}

func runConvert(cmd *cobra.Command, args []string) error {
	log.Infof("Converting %s -> %s", args[0], outputFile)
	return convertFile(args[0], outputFile)
}

func convertFile(input, output string) error {
	warnings, err := newConverter().ConvertFile(input, output)
	for _, w := range warnings {
		log.Warnf("%s", w)
	}
	return err
}

func runConfig(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if saveConfig {
		if err := cfg.Save(); err != nil {
			return err
		}
		log.Infof("saved %s", path)
	}
	fmt.Printf("%s\n  profile  %s\n  device   %02Xh\n  division %d\n  spacing  %d\n  tempo    %g\n  port     %d\n",
		path, cfg.Profile, cfg.DeviceID, cfg.Division, cfg.Spacing, cfg.Tempo, cfg.Server.Port)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(devices.Default(), converterOptions())
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Infof("Starting API server on port %d...", cfg.Server.Port)
	return api.StartServer(cfg.Server.Port, converterOptions())
}
