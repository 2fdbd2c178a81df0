package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/DarkAce65/raytracer/pkg/renderer"
	"github.com/DarkAce65/raytracer/pkg/scene"
)

// JPEG encode quality for .jpg/.jpeg outputs
const jpegQuality = 95

// Render loads the scene file argument and renders it to the output image,
// or into an interactive window when no output is given.
func Render(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return cli.NewExitError("missing scene file argument", 1)
	}
	scenePath := ctx.Args().First()

	sc, err := scene.Load(scenePath)
	if err != nil {
		var configErr *scene.ConfigError
		var assetErr *scene.AssetError
		switch {
		case errors.As(err, &configErr):
			return cli.NewExitError(fmt.Sprintf("invalid scene: %v", err), 1)
		case errors.As(err, &assetErr):
			return cli.NewExitError(fmt.Sprintf("failed to load asset: %v", err), 1)
		}
		return cli.NewExitError(err.Error(), 1)
	}

	if sc.SkipDenoisePass {
		logger.Info("denoise pass disabled by scene")
	}

	options := renderer.Options{
		Seed:            ctx.Int64("seed"),
		SamplesPerPixel: ctx.Int("spp"),
	}
	if !ctx.Bool("no-progress") {
		options.OnProgress = newProgressLogger(sc.Width * sc.Height)
	}

	output := ctx.String("output")
	if output == "" {
		return renderToWindow(sc, options, scenePath)
	}
	return renderToFile(sc, options, output)
}

func renderToFile(sc *scene.Scene, options renderer.Options, output string) error {
	if err := checkOutputFormat(output); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	img := image.NewRGBA(image.Rect(0, 0, sc.Width, sc.Height))
	stats := renderer.NewRenderer(sc, options).Render(img)
	displayRenderStats(stats)

	if err := encodeImage(img, output); err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to write output: %v", err), 1)
	}

	logger.Noticef("render saved as %s", output)
	return nil
}

func renderToWindow(sc *scene.Scene, options renderer.Options, scenePath string) error {
	img := image.NewRGBA(image.Rect(0, 0, sc.Width, sc.Height))

	window, err := renderer.NewWindow(img, "raytracer - "+filepath.Base(scenePath))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to open window: %v", err), 1)
	}

	// Fill tiles in shuffled order so the image resolves evenly on screen,
	// and share the window's lock so the display reads whole tiles
	options.ShuffleTiles = true
	options.FrameLock = window

	done := make(chan struct{})
	go func() {
		defer close(done)
		stats := renderer.NewRenderer(sc, options).Render(img)
		displayRenderStats(stats)
	}()

	if err := window.Run(done); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

// checkOutputFormat validates the output extension before spending render time
func checkOutputFormat(output string) error {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".png", ".jpg", ".jpeg":
		return nil
	}
	return fmt.Errorf("unsupported output format %q (use .png, .jpg or .jpeg)", filepath.Ext(output))
}

func encodeImage(img *image.RGBA, output string) error {
	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(output)) {
	case ".png":
		return png.Encode(file, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality})
	}
	return fmt.Errorf("unsupported output format %q", filepath.Ext(output))
}

// newProgressLogger reports render progress in 10% steps; it is called from
// multiple render workers
func newProgressLogger(totalPixels int) func(completed, total int) {
	step := int64(totalPixels / 10)
	if step == 0 {
		step = 1
	}
	var lastReported atomic.Int64

	return func(completed, total int) {
		last := lastReported.Load()
		if int64(completed) < last+step && completed != total {
			return
		}
		if lastReported.CompareAndSwap(last, int64(completed)) {
			logger.Noticef("rendered %d/%d pixels (%.0f%%)",
				completed, total, 100.0*float64(completed)/float64(total))
		}
	}
}

func displayRenderStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Resolution", "Samples", "Rays", "Rays/sec", "Workers", "Render time"})
	table.Append([]string{
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", stats.TotalSamples),
		fmt.Sprintf("%d", stats.TotalRays),
		fmt.Sprintf("%.0f", stats.RaysPerSecond()),
		fmt.Sprintf("%d", stats.Workers),
		stats.RenderTime.Round(time.Millisecond).String(),
	})
	table.Render()

	logger.Noticef("frame statistics\n%s", buf.String())
}
