package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/edaniels/golog"

	"github.com/al1y3vk/go1dash/pkg/input"
	"github.com/al1y3vk/go1dash/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	restPhase    = 2 * time.Second
	stickPoll    = 50 * time.Millisecond
	driftMargin  = 0.02
	maxDeadband  = 0.5
	goodRange    = 0.9
	setupLogFile = "go1dash-setup.log"
)

type SetupCommand struct {
	Config string `long:"config" default:"go1dash.json" description:"Configuration file to write"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("go1dash Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := robot.LoadConfigFrom(c.Config)
	if err != nil {
		cfg = robot.Defaults()
	} else {
		fmt.Printf("Updating %s\n\n", c.Config)
	}

	// Step 1: gamepad
	if scanForGamepads(cfg) {
		fmt.Println()
		fmt.Println(subHeaderStyle.Render("━━━ Checking Sticks ━━━"))
		fmt.Println()
		checkSticks(cfg)
	}

	// Step 2: lidar view
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Lidar View ━━━"))
	fmt.Println()
	chooseView(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.SaveTo(c.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", c.Config)
	fmt.Println()
	fmt.Println("Start teleoperation with: " + headerStyle.Render("go1dash teleoperate"))

	return nil
}

// scanForGamepads lists joystick devices and asks for their layout.
// It returns false when there is nothing to check.
func scanForGamepads(cfg *robot.Config) bool {
	fmt.Printf("Scanning %s for gamepads...\n\n", cfg.Gamepad.DeviceDir)

	devices := input.DevicePaths(cfg.Gamepad.DeviceDir)
	if len(devices) == 0 {
		fmt.Println("No gamepad found.")
		fmt.Println("The keyboard still drives the robot; plug a gamepad in and rerun setup to use one.")
		return false
	}
	for _, d := range devices {
		fmt.Printf("  Found %s\n", d)
	}
	fmt.Println()
	if len(devices) > 1 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("Only %s drives the robot.", devices[0])))
		fmt.Println()
	}

	mapping := cfg.Gamepad.Mapping
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which layout does the gamepad report?").
				Description("xpad: Xbox pads on Linux. standard: already in browser layout").
				Options(
					huh.NewOption("Xbox / xpad driver", robot.MappingXpad),
					huh.NewOption("Standard layout", robot.MappingStandard),
				).
				Value(&mapping),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	cfg.Gamepad.Mapping = mapping
	return true
}

func checkSticks(cfg *robot.Config) {
	mapping, err := input.MappingByName(cfg.Gamepad.Mapping)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newFileLogger(setupLogFile, false)
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pads := input.NewJoystickSource(cfg.Gamepad.DeviceDir, mapping, logger)
	pads.Start(ctx)
	defer pads.Close()

	fmt.Println("Leave the sticks centred for two seconds, then move them")
	fmt.Println("through their full range and try every button.")
	fmt.Println()

	p := tea.NewProgram(newStickModel(input.NewSampler(pads), logger))
	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running stick check: %v\n", err)
		os.Exit(1)
	}

	sm := finalModel.(stickModel)
	if !sm.seen {
		fmt.Println("No input received from the gamepad; keeping the current deadband.")
		return
	}

	suggested := suggestDeadband(sm.drift[:])
	apply := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Use a deadband of %.2f?", suggested)).
				Description(fmt.Sprintf("Largest drift at rest: %.3f. Current deadband: %.2f", maxOf(sm.drift[:]), cfg.Teleop.Deadband)).
				Value(&apply),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	if apply {
		cfg.Teleop.Deadband = suggested
	}
	fmt.Printf("Deadband %.2f\n", cfg.Teleop.Deadband)
}

func chooseView(cfg *robot.Config) {
	zoom := strconv.FormatFloat(cfg.Lidar.ZoomMeters, 'f', 1, 64)
	showFill := cfg.Lidar.ShowFill

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Lidar range shown on start").
				Options(zoomOptions()...).
				Value(&zoom),
			huh.NewConfirm().
				Title("Fill the scan outline?").
				Value(&showFill),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	if z, err := strconv.ParseFloat(zoom, 64); err == nil {
		cfg.Lidar.ZoomMeters = z
	}
	cfg.Lidar.ShowFill = showFill
}

// zoomOptions lists every zoom the lidar view accepts.
func zoomOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for i := 0; ; i++ {
		z := robot.MinZoom + float64(i)*robot.ZoomStep
		if z > robot.MaxZoom {
			break
		}
		v := strconv.FormatFloat(z, 'f', 1, 64)
		opts = append(opts, huh.NewOption(v+" m", v))
	}
	return opts
}

// suggestDeadband returns a deadband just above the worst resting drift,
// rounded up to a hundredth, never below the stock 0.08.
func suggestDeadband(drift []float64) float64 {
	db := math.Ceil((maxOf(drift)+driftMargin)*100-1e-9) / 100
	return math.Min(maxDeadband, math.Max(robot.Defaults().Teleop.Deadband, db))
}

func maxOf(values []float64) float64 {
	var m float64
	for _, v := range values {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// Stick check TUI model
type stickModel struct {
	sampler  *input.Sampler
	logger   golog.Logger
	now      time.Time
	rested   time.Time // first tick with the gamepad responding
	snap     input.DeviceSnapshot
	seen     bool
	drift    [input.StandardAxes]float64
	minAxes  [input.StandardAxes]float64
	maxAxes  [input.StandardAxes]float64
	pressed  map[string]bool
	quitting bool
}

type stickTickMsg time.Time

func newStickModel(sampler *input.Sampler, logger golog.Logger) stickModel {
	return stickModel{
		sampler: sampler,
		logger:  logger,
		now:     time.Now(),
		pressed: map[string]bool{},
	}
}

func stickTick() tea.Cmd {
	return tea.Tick(stickPoll, func(t time.Time) tea.Msg {
		return stickTickMsg(t)
	})
}

func (m stickModel) Init() tea.Cmd {
	return stickTick()
}

// resting reports whether drift is still being measured. The rest phase
// starts when the gamepad first responds, not when the check opens.
func (m stickModel) resting() bool {
	return m.seen && m.now.Sub(m.rested) < restPhase
}

func (m stickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stickTickMsg:
		m.now = time.Time(msg)
		m.sampler.Poll()
		m.snap = m.sampler.Latest()
		if !m.snap.Connected {
			return m, stickTick()
		}
		if !m.seen {
			m.logger.Infow("gamepad responding", "axes", len(m.snap.Axes), "buttons", len(m.snap.Buttons))
			m.seen = true
			m.rested = m.now
		}
		for i := 0; i < input.StandardAxes; i++ {
			v := m.snap.Axis(i)
			if m.resting() {
				m.drift[i] = math.Max(m.drift[i], math.Abs(v))
			}
			m.minAxes[i] = math.Min(m.minAxes[i], v)
			m.maxAxes[i] = math.Max(m.maxAxes[i], v)
		}
		for _, name := range m.snap.PressedNames() {
			m.pressed[name] = true
		}
		return m, stickTick()
	}

	return m, nil
}

func (m stickModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	if !m.snap.Connected {
		sb.WriteString(dimStyle.Render("Waiting for the gamepad in slot 0..."))
		sb.WriteString("\n\n")
		sb.WriteString(dimStyle.Render("Press Enter to skip"))
		return sb.String()
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableAxisStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableRangeGoodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableRangeLowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rows := make([][]string, 0, input.StandardAxes)
	covered := make([]bool, 0, input.StandardAxes)
	for i := 0; i < input.StandardAxes; i++ {
		covered = append(covered, m.minAxes[i] < -goodRange && m.maxAxes[i] > goodRange)
		rows = append(rows, []string{
			input.AxisName(i),
			fmt.Sprintf("%+.2f", m.snap.Axis(i)),
			fmt.Sprintf("%.3f", m.drift[i]),
			fmt.Sprintf("%+.2f", m.minAxes[i]),
			fmt.Sprintf("%+.2f", m.maxAxes[i]),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Axis", "Current", "Drift", "Min", "Max").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableAxisStyle
			case 1:
				return tableCurrentStyle
			case 3, 4:
				if row >= 0 && row < len(covered) && covered[row] {
					return tableRangeGoodStyle
				}
				return tableRangeLowStyle
			default:
				return tableCellStyle
			}
		})

	if m.resting() {
		sb.WriteString(subHeaderStyle.Render("Hands off: measuring drift"))
	} else {
		sb.WriteString(subHeaderStyle.Render("Move the sticks, press every button"))
	}
	sb.WriteString("\n")
	sb.WriteString(t.Render())
	sb.WriteString("\n")

	var buttons []string
	for i := 0; i < input.StandardButtons; i++ {
		name := input.ButtonName(i)
		switch {
		case m.snap.Button(i):
			buttons = append(buttons, successStyle.Bold(true).Render(name))
		case m.pressed[name]:
			buttons = append(buttons, successStyle.Render(name))
		default:
			buttons = append(buttons, dimStyle.Render(name))
		}
	}
	sb.WriteString(strings.Join(buttons, " "))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Press Enter when done"))

	return sb.String()
}
