package renderer

import (
	"image"
	"image/color"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DarkAce65/raytracer/pkg/core"
	"github.com/DarkAce65/raytracer/pkg/log"
	"github.com/DarkAce65/raytracer/pkg/scene"
)

var logger = log.New("renderer")

// Tile edge length in pixels; small tiles balance load between dense and
// sparse image regions
const tileSize = 16

// Options configures a render
type Options struct {
	Seed            int64
	NumWorkers      int  // defaults to the number of CPUs
	SamplesPerPixel int  // overrides the scene's value when positive
	ShuffleTiles    bool // randomize tile order (window mode fills evenly)

	// OnProgress, if set, is called as pixels complete
	OnProgress func(completed, total int)
	// FrameLock, if set, is held while a tile's pixels are written, so a
	// concurrent display can read the framebuffer between tiles
	FrameLock sync.Locker
}

// Renderer drives the parallel per-pixel rendering of a scene
type Renderer struct {
	scene   *scene.Scene
	options Options
}

// NewRenderer creates a renderer for the given scene
func NewRenderer(sc *scene.Scene, options Options) *Renderer {
	if options.NumWorkers <= 0 {
		options.NumWorkers = runtime.NumCPU()
	}
	return &Renderer{scene: sc, options: options}
}

// Render traces every pixel and writes the tonemapped result into img, which
// must be at least scene width × height. Pixels are deterministic per seed
// regardless of worker count: each pixel's sampler is seeded from
// (x, y, seed).
func (r *Renderer) Render(img *image.RGBA) RenderStats {
	width, height := r.scene.Width, r.scene.Height
	spp := r.scene.SamplesPerPixel
	if r.options.SamplesPerPixel > 0 {
		spp = r.options.SamplesPerPixel
	}

	tiles := makeTiles(width, height)
	if r.options.ShuffleTiles {
		shuffleRand := rand.New(rand.NewSource(r.options.Seed))
		shuffleRand.Shuffle(len(tiles), func(i, j int) {
			tiles[i], tiles[j] = tiles[j], tiles[i]
		})
	}

	logger.Infof("rendering %dx%d, %d spp, %d primitives, %d workers",
		width, height, spp, r.scene.NumShapes(), r.options.NumWorkers)

	start := time.Now()
	totalPixels := width * height
	var completedPixels atomic.Int64
	var totalRays atomic.Uint64
	var nanSeen atomic.Bool

	tileQueue := make(chan image.Rectangle, len(tiles))
	for _, tile := range tiles {
		tileQueue <- tile
	}
	close(tileQueue)

	var wg sync.WaitGroup
	for worker := 0; worker < r.options.NumWorkers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			integrator := NewIntegrator(r.scene, &nanSeen)

			for bounds := range tileQueue {
				r.renderTile(integrator, img, bounds, spp)

				completed := completedPixels.Add(int64(bounds.Dx() * bounds.Dy()))
				if r.options.OnProgress != nil {
					r.options.OnProgress(int(completed), totalPixels)
				}
			}

			totalRays.Add(integrator.RayCount())
		}()
	}
	wg.Wait()

	return RenderStats{
		Width:        width,
		Height:       height,
		TotalPixels:  totalPixels,
		TotalSamples: totalPixels * spp,
		TotalRays:    totalRays.Load(),
		Workers:      r.options.NumWorkers,
		RenderTime:   time.Since(start),
	}
}

// renderTile renders the pixels of one tile into a scratch buffer, then
// writes them out in one locked pass. Tiles never overlap, so writes from
// different workers never touch the same pixels.
func (r *Renderer) renderTile(integrator *Integrator, img *image.RGBA, bounds image.Rectangle, spp int) {
	width, height := r.scene.Width, r.scene.Height
	camera := r.scene.Camera

	colors := make([]color.RGBA, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sampler := core.NewRandomSampler(rand.New(rand.NewSource(pixelSeed(x, y, r.options.Seed))))

			var accum core.Vec3
			for sample := 0; sample < spp; sample++ {
				jitter := sampler.Get2D()
				s := (float64(x) + jitter.X) / float64(width)
				t := (float64(y) + jitter.Y) / float64(height)

				ray := camera.Ray(s, t, width, height)
				accum = accum.Add(integrator.RayColor(ray, sampler))
			}

			mean := accum.Multiply(1.0 / float64(spp))
			colors = append(colors, r.tonemap(mean))
		}
	}

	if r.options.FrameLock != nil {
		r.options.FrameLock.Lock()
		defer r.options.FrameLock.Unlock()
	}
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, colors[i])
			i++
		}
	}
}

// pixelSeed derives a per-pixel RNG seed from the pixel position and the
// global seed so results do not depend on scheduling
func pixelSeed(x, y int, seed int64) int64 {
	h := uint64(seed)
	h ^= uint64(x) * 0x9e3779b97f4a7c15
	h ^= uint64(y) * 0xbf58476d1ce4e5b9
	h ^= h >> 31
	h *= 0x94d049bb133111eb
	h ^= h >> 29
	return int64(h)
}

// tonemap clamps a linear color to [0, 1] and applies gamma correction
func (r *Renderer) tonemap(linear core.Vec3) color.RGBA {
	c := linear.Clamp(0, 1).GammaCorrect(r.scene.Gamma)
	return color.RGBA{
		R: uint8(255 * c.X),
		G: uint8(255 * c.Y),
		B: uint8(255 * c.Z),
		A: 255,
	}
}

// makeTiles splits the image into row-major tiles
func makeTiles(width, height int) []image.Rectangle {
	var tiles []image.Rectangle
	for y := 0; y < height; y += tileSize {
		for x := 0; x < width; x += tileSize {
			tiles = append(tiles, image.Rect(
				x, y,
				min(x+tileSize, width),
				min(y+tileSize, height),
			))
		}
	}
	return tiles
}
