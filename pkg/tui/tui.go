// Package tui provides a terminal user interface for soundpalette
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/soundpalette/pkg/converter"
	"github.com/james-see/soundpalette/pkg/sysex"
)

// Sound Canvas panel colors: amber LCD on charcoal
var (
	lcdAmber  = lipgloss.Color("#FFB000")
	lcdOrange = lipgloss.Color("#FF6A00")
	panelGray = lipgloss.Color("#C0C0C0")
	darkGray  = lipgloss.Color("#2B2B2B")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lcdAmber).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(panelGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lcdAmber).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(lcdOrange).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lcdAmber).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lcdAmber).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateProfile
	StateBlock
	StateParameter
	StateValue
	StateInspect
	StateFilePicker
	StateConverting
	StateResult
)

// Action is what a main menu item does
type Action int

const (
	ActionBuild Action = iota
	ActionInspect
	ActionConvert
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
	FromFormat  converter.Format
	ToFormat    converter.Format
}

var menuItems = []MenuItem{
	{Title: "Build message", Description: "Pick a profile, block and parameter and set a value", Action: ActionBuild},
	{Title: "Inspect hex", Description: "Paste a SysEx message and see what it does", Action: ActionInspect},
	{Title: "SYX → MIDI", Description: "Pack a SysEx dump into a Standard MIDI File", Action: ActionConvert, FromFormat: converter.FormatSyx, ToFormat: converter.FormatMIDI},
	{Title: "MIDI → SYX", Description: "Extract the SysEx messages of a MIDI file", Action: ActionConvert, FromFormat: converter.FormatMIDI, ToFormat: converter.FormatSyx},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// visibleRows is how many list entries fit on screen before scrolling
const visibleRows = 12

// Model represents the TUI model
type Model struct {
	registry *sysex.Registry
	opts     converter.Options

	state     State
	menuIndex int

	profiles     []*sysex.Profile
	profileIndex int
	blockIndex   int
	params       []*sysex.Parameter
	paramIndex   int
	value        int
	input        textinput.Model

	built      []byte
	inspection *sysex.Inspection

	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	outputFile   string
	conversion   MenuItem
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	outputFile string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(registry *sysex.Registry, opts converter.Options) Model {
	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi", ".syx"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lcdAmber)

	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = 60

	return Model{
		registry:   registry,
		opts:       opts,
		state:      StateMenu,
		profiles:   registry.Profiles(),
		input:      ti,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if file was selected
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performConversion())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.Height = msg.Height - 10
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateProfile, StateBlock, StateParameter:
			return m.updateList(msg)
		case StateValue:
			return m.updateValue(msg)
		case StateInspect:
			return m.updateInspect(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		item := menuItems[m.menuIndex]
		m.conversion = item
		switch item.Action {
		case ActionExit:
			return m, tea.Quit
		case ActionBuild:
			m.state = StateProfile
			return m, nil
		case ActionInspect:
			m.state = StateInspect
			m.input.SetValue("")
			m.input.Placeholder = "F0 41 10 42 12 40 00 7F 00 41 F7"
			return m, m.input.Focus()
		}
		m.state = StateFilePicker

		// Set file picker filter based on input format
		switch item.FromFormat {
		case converter.FormatMIDI:
			m.filePicker.AllowedTypes = []string{".mid", ".midi"}
		case converter.FormatSyx:
			m.filePicker.AllowedTypes = []string{".syx"}
		}

		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// updateList moves through the profile, block and parameter lists.
func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	index, count := m.listPosition()
	switch msg.String() {
	case "up", "k":
		if index > 0 {
			index--
		}
	case "down", "j":
		if index < count-1 {
			index++
		}
	case "pgup":
		index -= visibleRows
		if index < 0 {
			index = 0
		}
	case "pgdown":
		index += visibleRows
		if index > count-1 {
			index = count - 1
		}
	case "esc", "backspace":
		m.state--
		return m, nil
	case "enter":
		if count == 0 {
			return m, nil
		}
		return m.enterList()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	m.setListPosition(index)
	return m, nil
}

func (m Model) listPosition() (int, int) {
	switch m.state {
	case StateProfile:
		return m.profileIndex, len(m.profiles)
	case StateBlock:
		return m.blockIndex, len(m.profile().Blocks)
	default:
		return m.paramIndex, len(m.params)
	}
}

func (m *Model) setListPosition(i int) {
	switch m.state {
	case StateProfile:
		m.profileIndex = i
	case StateBlock:
		m.blockIndex = i
	default:
		m.paramIndex = i
	}
}

func (m Model) enterList() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateProfile:
		m.blockIndex = 0
		m.state = StateBlock
	case StateBlock:
		block := m.profile().Blocks[m.blockIndex].Name
		m.params = m.params[:0:0]
		for _, p := range m.registry.Parameters(m.profile()) {
			if p.Block == block {
				m.params = append(m.params, p)
			}
		}
		m.paramIndex = 0
		m.state = StateParameter
	case StateParameter:
		p := m.param()
		m.value = p.Zero
		if p.Kind == sysex.KindEnum && len(p.Labels) > 0 {
			m.value = p.Labels[0].Value
		} else if m.value < p.Min {
			m.value = p.Min
		}
		m.input.SetValue(strconv.Itoa(m.value))
		m.input.Placeholder = ""
		m.err = nil
		m.state = StateValue
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) profile() *sysex.Profile {
	return m.profiles[m.profileIndex]
}

func (m Model) param() *sysex.Parameter {
	return m.params[m.paramIndex]
}

// updateValue edits the value: up and down step through the range, anything
// else goes to the text input.
func (m Model) updateValue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.param()
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.state = StateParameter
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "up", "down":
		if v, err := sysex.ParseValue(p, m.input.Value()); err == nil {
			m.value = v
		}
		m.value = step(p, m.value, msg.String() == "up")
		m.input.SetValue(strconv.Itoa(m.value))
		return m, nil
	case "enter":
		v, err := sysex.ParseValue(p, m.input.Value())
		if err == nil {
			m.value = v
			m.built, err = sysex.Build(m.profile(), m.profile().DefaultDevice, p, v)
		}
		if err != nil {
			m.err = err
			return m, nil
		}
		m.input.Blur()
		m.err = nil
		m.inspection = m.registry.Inspect(m.built)
		m.state = StateResult
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// step moves to the next valid value, following labels for enums.
func step(p *sysex.Parameter, v int, up bool) int {
	if p.Kind == sysex.KindEnum && len(p.Labels) > 0 {
		for i, l := range p.Labels {
			if l.Value == v {
				if up && i < len(p.Labels)-1 {
					return p.Labels[i+1].Value
				}
				if !up && i > 0 {
					return p.Labels[i-1].Value
				}
				return v
			}
		}
		return p.Labels[0].Value
	}
	if up && v < p.Max {
		v++
	} else if !up && v > p.Min {
		v--
	}
	return v
}

func (m Model) updateInspect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.state = StateMenu
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		b, err := sysex.ParseHex(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.input.Blur()
		m.err = nil
		m.built = b
		m.inspection = m.registry.Inspect(b)
		m.state = StateResult
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		if m.conversion.Action == ActionBuild {
			m.state = StateParameter
		}
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.inspection = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performConversion() tea.Cmd {
	return func() tea.Msg {
		conv := converter.New(m.registry, m.opts)

		data, err := os.ReadFile(m.selectedFile)
		if err != nil {
			return conversionDoneMsg{err: err}
		}

		result, _, err := conv.Convert(data, m.conversion.FromFormat, m.conversion.ToFormat)
		if err != nil {
			return conversionDoneMsg{err: err}
		}

		outputExt := ".syx"
		if m.conversion.ToFormat == converter.FormatMIDI {
			outputExt = ".mid"
		}

		// Generate output filename
		base := strings.TrimSuffix(m.selectedFile, filepath.Ext(m.selectedFile))
		outputFile := base + outputExt

		err = os.WriteFile(outputFile, result, 0644)
		if err != nil {
			return conversionDoneMsg{err: err}
		}

		return conversionDoneMsg{outputFile: outputFile}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	s.WriteString(logo())
	s.WriteString("\n")

	help := "↑/↓: navigate • enter: select • esc: back • q: quit"
	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateProfile:
		var items []string
		for _, p := range m.profiles {
			items = append(items, fmt.Sprintf("%-14s model %s", p.Name, sysex.FormatHex(p.Model)))
		}
		s.WriteString(viewList(" SELECT PROFILE ", items, m.profileIndex))
	case StateBlock:
		var items []string
		for _, b := range m.profile().Blocks {
			items = append(items, fmt.Sprintf("%s  %s", sysex.FormatHex(b.Prefix.Bytes(m.profile().AddressSize)[:b.PrefixSize]), b.Name))
		}
		s.WriteString(viewList(" "+strings.ToUpper(m.profile().Name)+" ", items, m.blockIndex))
	case StateParameter:
		var items []string
		for _, p := range m.params {
			items = append(items, fmt.Sprintf("%s  %s", p.Address.Format(m.profile().AddressSize), p.Name))
		}
		s.WriteString(viewList(" "+strings.ToUpper(m.profile().Blocks[m.blockIndex].Name)+" ", items, m.paramIndex))
	case StateValue:
		s.WriteString(m.viewValue())
		help = "↑/↓: step value • enter: build • esc: back"
	case StateInspect:
		s.WriteString(m.viewInspect())
		help = "enter: inspect • esc: back"
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(help))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(lcdOrange).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

// viewList renders a scrolling window of items around the selection.
func viewList(title string, items []string, index int) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	start := index - visibleRows/2
	if start > len(items)-visibleRows {
		start = len(items) - visibleRows
	}
	if start < 0 {
		start = 0
	}
	end := start + visibleRows
	if end > len(items) {
		end = len(items)
	}
	if start > 0 {
		s.WriteString(menuStyle.Render("  ↑"))
		s.WriteString("\n")
	}
	for i := start; i < end; i++ {
		if i == index {
			s.WriteString(selectedStyle.Render("▸ " + items[i]))
		} else {
			s.WriteString(menuStyle.Render("  " + items[i]))
		}
		s.WriteString("\n")
	}
	if end < len(items) {
		s.WriteString(menuStyle.Render("  ↓"))
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewValue() string {
	var s strings.Builder
	p := m.param()

	s.WriteString(titleStyle.Render(" " + p.Path() + " "))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")
	if v, err := sysex.ParseValue(p, m.input.Value()); err == nil {
		s.WriteString(statusStyle.Render(strings.TrimSpace(p.Describe(v))))
	}
	s.WriteString("\n")
	switch p.Kind {
	case sysex.KindEnum:
		var labels []string
		for _, l := range p.Labels {
			labels = append(labels, fmt.Sprintf("%d %s", l.Value, l.Name))
		}
		s.WriteString(menuStyle.Render(strings.Join(labels, ", ")))
	case sysex.KindBitmask:
		s.WriteString(menuStyle.Render(fmt.Sprintf("bits %02Xh", p.Mask)))
	default:
		s.WriteString(menuStyle.Render(fmt.Sprintf("%d..%d", p.Min, p.Max)))
	}
	if m.err != nil {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewInspect() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" INSPECT "))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	if m.err != nil {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT %s FILE ", strings.ToUpper(string(m.conversion.FromFormat)))))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Converting %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s → %s", m.conversion.FromFormat, m.conversion.ToFormat)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.err != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
	case m.inspection != nil:
		s.WriteString(titleStyle.Render(" " + strings.ToUpper(m.inspection.Status.String()) + " "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render(sysex.FormatHex(m.built)))
		s.WriteString("\n\n")
		s.WriteString(m.inspection.String())
	default:
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func logo() string {
	logo := `
  ┌─────────────────────────────────────┐
  │  S O U N D   P A L E T T E          │
  │  Roland SysEx builder & inspector   │
  └─────────────────────────────────────┘
`
	return lipgloss.NewStyle().Foreground(lcdAmber).Render(logo)
}

// Run starts the TUI application
func Run(registry *sysex.Registry, opts converter.Options) error {
	p := tea.NewProgram(New(registry, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
