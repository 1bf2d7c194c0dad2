package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bep/debounce"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/edaniels/golog"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/al1y3vk/go1dash/pkg/input"
	"github.com/al1y3vk/go1dash/pkg/padview"
	"github.com/al1y3vk/go1dash/pkg/robot"
	"github.com/al1y3vk/go1dash/pkg/scan"
	"github.com/al1y3vk/go1dash/pkg/teleop"
)

type TeleoperateCommand struct {
	Config      string `long:"config" default:"go1dash.json" description:"Configuration file"`
	LogFile     string `long:"log-file" default:"go1dash.log" description:"Log file"`
	Debug       bool   `long:"debug" description:"Log every published command"`
	SnapshotDir string `long:"snapshot-dir" default:"." description:"Where 'x' saves lidar PNGs"`
}

const (
	headerHeight = 2 // title + blank line
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2
	statusHeight = 5
	statsHeight  = 1
	saveDelay    = 500 * time.Millisecond
)

// Series colors, one per velocity component
var seriesColors = map[string]string{
	"fwd":    "46",  // green
	"strafe": "51",  // cyan
	"yaw":    "201", // magenta
}

var seriesOrder = []string{"fwd", "strafe", "yaw"}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type teleopModel struct {
	ctrl     *teleop.Controller
	sampler  *input.Sampler
	hold     *input.HoldKeys
	buffer   *scan.Buffer
	link     linkToggler // nil when the session cannot be cut by hand
	logger   golog.Logger
	cfg      robot.Config
	cfgPath  string
	snapDir  string
	interval time.Duration

	view     scan.RenderState
	lidar    *scan.Renderer
	pad      *gg.Context
	chart    *streamlinechart.Model
	save     func(f func())
	unsaved  bool
	state    teleop.State
	lidarStr string
	padStr   string

	width    int // terminal width
	height   int // terminal height
	logs     []string
	quitting bool
}

// Messages from the controller and the frame clock
type stateMsg teleop.State
type logMsg string
type frameMsg time.Time

func waitForState(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

func nextFrame(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *teleopModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// panelSizes splits the terminal: lidar on the left, status, gamepad and chart on the right.
func (m *teleopModel) panelSizes() (lidarW, lidarH, sideW, padH, chartH int) {
	width, height := m.width, m.height
	if width == 0 || height == 0 {
		width, height = 120, 40 // default size before we know terminal size
	}
	body := height - headerHeight - footerHeight - statsHeight - borderSize
	if body < 10 {
		body = 10
	}
	lidarW = width/2 - borderSize
	lidarH = body
	sideW = width - width/2 - borderSize
	if sideW < 20 {
		sideW = 20
	}

	// the diagram is 580x410 with two pixels per cell row
	padH = int(float64(sideW) * padview.Height / padview.Width / 2)
	rest := body - statusHeight - borderSize - padH - borderSize - borderSize
	if rest < 5 {
		padH = max(3, padH-(5-rest))
		rest = 5
	}
	chartH = rest
	return
}

func (m *teleopModel) resize() {
	lidarW, lidarH, sideW, padH, chartH := m.panelSizes()
	m.lidar.Resize(lidarW, lidarH*2, m.cfg.Display.PixelRatio)
	m.pad = gg.NewContext(sideW, padH*2)
	m.chart.Resize(sideW, chartH)
	m.chart.DrawAll()
	m.drawPad()
}

func newTeleopModel(
	ctrl *teleop.Controller,
	sampler *input.Sampler,
	hold *input.HoldKeys,
	buffer *scan.Buffer,
	link linkToggler,
	cfg robot.Config,
	cfgPath, snapDir string,
	logger golog.Logger,
) teleopModel {
	chart := streamlinechart.New(60, 10,
		streamlinechart.WithYRange(-2, 2),
	)
	for _, name := range seriesOrder {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}

	m := teleopModel{
		ctrl:     ctrl,
		sampler:  sampler,
		hold:     hold,
		buffer:   buffer,
		link:     link,
		logger:   logger,
		cfg:      cfg,
		cfgPath:  cfgPath,
		snapDir:  snapDir,
		interval: cfg.Display.FrameInterval(),
		view:     scan.NewRenderState(cfg.Lidar),
		lidar:    scan.NewRenderer(),
		chart:    &chart,
		save:     debounce.New(saveDelay),
		state:    teleop.State{Status: teleop.StatusIdle},
	}
	m.resize()
	return m
}

func (m teleopModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
		nextFrame(m.interval),
	)
}

func (m teleopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case frameMsg:
		m.sampler.Poll()
		lidarW, lidarH, _, _, _ := m.panelSizes()
		m.lidarStr = halfBlocks(m.lidar.Draw(m.buffer.Latest(), m.view), lidarW, lidarH)
		return m, nextFrame(m.interval)

	case stateMsg:
		m.state = teleop.State(msg)
		if m.state.Connected && (m.state.Transmitted || !m.state.Command.IsZero()) {
			m.chart.PushDataSet("fwd", m.state.Command.Forward())
			m.chart.PushDataSet("strafe", m.state.Command.Strafe())
			m.chart.PushDataSet("yaw", m.state.Command.Yaw())
			m.chart.DrawAll()
		}
		m.drawPad()
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m teleopModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.flushView()
		return m, tea.Quit
	case "+", "=":
		m.view.ZoomIn()
		m.persistView()
	case "-", "_":
		m.view.ZoomOut()
		m.persistView()
	case "p":
		m.view.TogglePoints()
		m.persistView()
	case "f":
		m.view.ToggleFill()
		m.persistView()
	case "c":
		if m.link != nil {
			m.link.SetConnected(!m.state.Connected)
		}
	case "x":
		path := filepath.Join(m.snapDir, fmt.Sprintf("lidar-%s.png", time.Now().Format("20060102-150405")))
		if err := m.lidar.SavePNG(path); err != nil {
			m.addLog(fmt.Sprintf("Snapshot failed: %v", err))
		} else {
			m.addLog("Saved " + path)
		}
	default:
		m.hold.Press(input.TerminalKey(key))
	}
	return m, nil
}

// persistView saves the view settings once the user stops adjusting them.
func (m *teleopModel) persistView() {
	cfg := m.cfg
	cfg.Lidar = m.view.Config()
	m.cfg = cfg
	m.unsaved = true
	path, logger := m.cfgPath, m.logger
	m.save(func() {
		if err := cfg.SaveTo(path); err != nil {
			logger.Warnw("saving view settings", "error", err)
		}
	})
}

// flushView writes view settings a pending debounced save has not written yet.
func (m *teleopModel) flushView() {
	if !m.unsaved {
		return
	}
	m.unsaved = false
	if err := m.cfg.SaveTo(m.cfgPath); err != nil {
		m.logger.Warnw("saving view settings", "error", err)
	}
}

func (m *teleopModel) drawPad() {
	if m.pad == nil {
		return
	}
	m.pad.SetHexColor("#0a0a1a")
	m.pad.Clear()
	d, ok := padview.Map(m.state.Gamepad)
	if !ok {
		m.padStr = ""
		return
	}
	padview.Paint(m.pad, d)
	m.padStr = halfBlocks(m.pad.Image(), m.pad.Width(), m.pad.Height()/2)
}

func (m teleopModel) View() string {
	if m.quitting {
		return "Teleoperation stopped.\n"
	}
	lidarW, lidarH, sideW, padH, _ := m.panelSizes()

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("go1dash teleoperate"))
	sb.WriteString(fmt.Sprintf(" - %v", m.ctrl.Period()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	lidar := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(lidarW).Height(lidarH).Render(m.lidarStr),
		m.renderStats(),
	)

	pad := statusStyle.Render("No gamepad")
	if m.padStr != "" {
		pad = m.padStr
	}
	side := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(sideW).Height(statusHeight).Render(m.renderStatus()),
		panelStyle.Width(sideW).Height(padH).Render(pad),
		panelStyle.Width(sideW).Render(m.chart.View()+"\n"+renderLegend()),
	)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lidar, side))
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(20, m.width-4)).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("+/- zoom, p points, f fill, c link, x snapshot, q quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m teleopModel) renderStatus() string {
	var lines []string
	switch {
	case !m.state.Connected:
		lines = append(lines, warningStyle.Render("Robot not connected"))
	case m.state.Status == teleop.StatusIdle:
		lines = append(lines, statusStyle.Render(m.state.Status))
	default:
		lines = append(lines, activeStyle.Render(m.state.Status))
	}
	if m.state.Gamepad.Connected {
		lines = append(lines, activeStyle.Render("Gamepad connected"))
	}
	lines = append(lines,
		statusStyle.Render("W/S fwd/back, A/D strafe, J/L turn, Space stop"),
		statusStyle.Render("Gamepad: hold LB to enable, RB turbo"),
	)
	return strings.Join(lines, "\n")
}

func (m teleopModel) renderStats() string {
	points, hz := m.buffer.Stats()
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	return statusStyle.Render(fmt.Sprintf(" %d points | %.1f Hz | zoom %.1f m | points %s | fill %s",
		points, hz, m.view.ZoomMeters, onOff(m.view.ShowPoints), onOff(m.view.ShowFill)))
}

func renderLegend() string {
	var items []string
	for _, name := range seriesOrder {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name)
	}
	return strings.Join(items, "  ")
}

func loadTeleopConfig(path string) (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "No configuration found at %s, using defaults. Run 'go1dash setup' to configure.\n", path)
		cfg, err = robot.Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *TeleoperateCommand) Execute(args []string) error {
	cfg, err := loadTeleopConfig(c.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newFileLogger(c.LogFile, c.Debug)
	restore := golog.ReplaceGloabl(logger)
	defer restore()

	if err := c.run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = closeLog()
		os.Exit(1)
	}
	return closeLog()
}

func (c *TeleoperateCommand) run(cfg *robot.Config, logger golog.Logger) (err error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := newSession(cfg.Session, logger)
	if err != nil {
		return err
	}
	if err := sess.Start(ctx); err != nil {
		return errors.Wrap(err, "start session")
	}
	defer func() { err = multierr.Combine(err, sess.Close()) }()

	buffer := scan.NewBuffer(clock.New())
	unsubscribe := sess.SubscribeScan(buffer.Update)
	defer unsubscribe()

	mapping, err := input.MappingByName(cfg.Gamepad.Mapping)
	if err != nil {
		return err
	}
	pads := input.NewJoystickSource(cfg.Gamepad.DeviceDir, mapping, logger.Named("gamepad"))
	pads.Start(ctx)
	defer func() { err = multierr.Combine(err, pads.Close()) }()
	sampler := input.NewSampler(pads)

	keys := input.NewKeyState()
	hold := input.NewHoldKeys(keys, clock.New(), cfg.Teleop.KeyHold())
	defer hold.Close()

	ctrl, err := teleop.NewController(teleop.Config{
		Gamepad:   sampler,
		Keys:      keys,
		Publisher: sess,
		Link:      sess,
		Limits:    cfg.Teleop.Limits,
		Deadband:  cfg.Teleop.Deadband,
		Period:    cfg.Teleop.Period(),
		Logger:    logger.Named("teleop"),
	})
	if err != nil {
		return errors.Wrap(err, "create controller")
	}

	ctrlCtx, stopCtrl := context.WithCancel(ctx)
	runDone := make(chan struct{})
	goutils.PanicCapturingGo(func() {
		defer close(runDone)
		if err := ctrl.Run(ctrlCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorw("controller stopped", "error", err)
		}
	})

	link, _ := sess.(linkToggler)
	model := newTeleopModel(ctrl, sampler, hold, buffer, link, *cfg, c.Config, c.SnapshotDir, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()

	// stop the controller first so its final stop command reaches the robot
	stopCtrl()
	<-runDone
	return errors.Wrap(runErr, "run program")
}
