package renderer

import "time"

// RenderStats summarizes a completed render
type RenderStats struct {
	Width        int
	Height       int
	TotalPixels  int           // Number of pixels rendered
	TotalSamples int           // Number of camera samples taken
	TotalRays    uint64        // Rays cast, including shadow and bounce rays
	Workers      int           // Worker goroutines used
	RenderTime   time.Duration // Wall-clock render duration
}

// RaysPerSecond returns the ray throughput of the render
func (s RenderStats) RaysPerSecond() float64 {
	seconds := s.RenderTime.Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(s.TotalRays) / seconds
}
