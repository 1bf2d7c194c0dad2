package main

import (
	"fmt"
	"os"

	"github.com/al1y3vk/go1dash/pkg/robot"
	"github.com/al1y3vk/go1dash/pkg/scan"
)

type SnapshotCommand struct {
	Output     string  `short:"o" long:"output" default:"scan.png" description:"PNG file to write"`
	Width      int     `long:"width" default:"800" description:"Image width"`
	Height     int     `long:"height" default:"800" description:"Image height"`
	PixelRatio float64 `long:"pixel-ratio" default:"1" description:"Device pixel ratio"`
	Zoom       float64 `long:"zoom" description:"Outer ring radius in meters (default from config)"`
	Fill       bool    `long:"fill" description:"Draw the filled scan outline"`
	NoPoints   bool    `long:"no-points" description:"Hide the scan points"`

	Args struct {
		Scan string `positional-arg-name:"scan.json" required:"yes"`
	} `positional-args:"yes"`
}

func (c *SnapshotCommand) Execute(args []string) error {
	reading, err := scan.LoadReading(c.Args.Scan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scan: %v\n", err)
		os.Exit(1)
	}

	view := scan.NewRenderState(robot.Defaults().Lidar)
	if cfg, err := robot.LoadConfig(); err == nil {
		view = scan.NewRenderState(cfg.Lidar)
	}
	if c.Zoom > 0 {
		view.ZoomMeters = c.Zoom
	}
	if c.Fill {
		view.ShowFill = true
	}
	if c.NoPoints {
		view.ShowPoints = false
	}

	r := scan.NewRenderer()
	r.Resize(c.Width, c.Height, c.PixelRatio)
	if r.Draw(reading, view) == nil {
		fmt.Fprintf(os.Stderr, "Nothing to draw at %dx%d\n", c.Width, c.Height)
		os.Exit(1)
	}
	if err := r.SavePNG(c.Output); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving snapshot: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d beams, zoom %.1f m -> %s\n", len(reading.Ranges), view.ZoomMeters, c.Output)
	return nil
}
