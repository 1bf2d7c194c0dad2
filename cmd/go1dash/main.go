package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Setup       SetupCommand       `command:"setup" description:"Detect the gamepad, check its sticks and write go1dash.json"`
	Teleoperate TeleoperateCommand `command:"teleoperate" alias:"teleop" description:"Drive the robot and watch its lidar"`
	Snapshot    SnapshotCommand    `command:"snapshot" description:"Render a LaserScan JSON file to PNG"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "go1dash - operator console for a teleoperated ground robot"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
