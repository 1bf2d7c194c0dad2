// gamepad-info prints what the gamepad in slot 0 reports, after mapping to
// the standard layout. Useful for checking a pad before driving with it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/edaniels/golog"
	"github.com/jessevdk/go-flags"
	goutils "go.viam.com/utils"

	"github.com/al1y3vk/go1dash/pkg/input"
	"github.com/al1y3vk/go1dash/pkg/robot"
)

type options struct {
	Dir      string        `long:"dir" description:"Joystick device directory (default from config)"`
	Mapping  string        `long:"mapping" choice:"xpad" choice:"standard" description:"Gamepad layout (default from config)"`
	Config   string        `long:"config" default:"go1dash.json" description:"Configuration file"`
	Interval time.Duration `long:"interval" default:"100ms" description:"Refresh interval"`
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	onStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg, err := robot.LoadConfigFrom(opts.Config)
	if err != nil {
		cfg = robot.Defaults()
	}
	if opts.Dir == "" {
		opts.Dir = cfg.Gamepad.DeviceDir
	}
	if opts.Mapping == "" {
		opts.Mapping = cfg.Gamepad.Mapping
	}

	mapping, err := input.MappingByName(opts.Mapping)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render("🎮 Gamepad Info"))
	fmt.Println("━━━━━━━━━━━━━━━")
	devices := input.DevicePaths(opts.Dir)
	if len(devices) == 0 {
		fmt.Printf("No devices in %s yet, waiting...\n", opts.Dir)
	}
	for _, d := range devices {
		fmt.Printf("  %s\n", d)
	}
	fmt.Printf("Mapping: %s. Ctrl+C to stop.\n\n", opts.Mapping)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := golog.NewDevelopmentLogger("gamepad-info")
	pads := input.NewJoystickSource(opts.Dir, mapping, logger)
	pads.Start(ctx)
	defer pads.Close()

	sampler := input.NewSampler(pads)
	for goutils.SelectContextOrWait(ctx, opts.Interval) {
		sampler.Poll()
		fmt.Printf("\r\033[K%s", readout(sampler.Latest()))
	}
	fmt.Println()
}

func readout(snap input.DeviceSnapshot) string {
	if !snap.Connected {
		return dimStyle.Render("not connected")
	}
	parts := make([]string, 0, len(snap.Axes)+1)
	for i := range snap.Axes {
		parts = append(parts, fmt.Sprintf("%s %+.2f", input.AxisName(i), snap.Axis(i)))
	}
	pressed := snap.PressedNames()
	if len(pressed) == 0 {
		parts = append(parts, dimStyle.Render("no buttons"))
	} else {
		parts = append(parts, onStyle.Render(strings.Join(pressed, " ")))
	}
	return strings.Join(parts, "  ")
}
