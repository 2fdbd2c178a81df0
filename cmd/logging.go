package cmd

import (
	"github.com/DarkAce65/raytracer/pkg/log"
	"github.com/urfave/cli"
)

var logger = log.New("raytrace")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
