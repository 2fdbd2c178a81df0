package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/DarkAce65/raytracer/cmd"
)

func init() {
	// The interactive window requires the OpenGL context to live on the
	// main OS thread
	runtime.LockOSThread()
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raytrace"
	app.Usage = "render scenes described in JSON using ray tracing"
	app.ArgsUsage = "SCENE_JSON"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.BoolFlag{
			Name:  "no-progress",
			Usage: "disable progress reporting",
		},
		cli.StringFlag{
			Name:  "o, output",
			Usage: "write the render to `FILE` (.png, .jpg or .jpeg); omit to display in a window",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "seed for the per-pixel sample generator",
		},
		cli.IntFlag{
			Name:  "spp",
			Usage: "override the scene's samples per pixel",
		},
	}
	app.Action = cmd.Render

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
