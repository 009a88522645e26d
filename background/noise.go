/*
DESCRIPTION
  noise.go implements the sparse-pixel noise estimator: a stride-sampled
  subset of pixels is tracked across a buffer cycle and averaged into a
  single noise-level figure used to scale the motion detector's thresholds.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package background

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// noiseStride is the fixed pixel-index stride used to keep noise estimation
// cheap: only every 499th pixel of the analysis plane is tracked, grounded
// on tools.c's estimate_noise_level.
const noiseStride = 499

// NoiseEstimator accumulates, across one ring-buffer cycle, the brightness
// samples of a sparse set of pixels, then reduces them to a single
// noise-level figure: the mean, over sampled pixels, of that pixel's
// standard deviation across the cycle.
type NoiseEstimator struct {
	planeSize int
	offsets   []int
	samples   [][]float64
}

// NewNoiseEstimator allocates a NoiseEstimator for a plane of the given
// size (geom.PlaneSize()).
func NewNoiseEstimator(planeSize int) (*NoiseEstimator, error) {
	if planeSize < 1 {
		return nil, fmt.Errorf("background: invalid plane size %d", planeSize)
	}
	var offsets []int
	for o := 0; o < planeSize; o += noiseStride {
		offsets = append(offsets, o)
	}
	return &NoiseEstimator{
		planeSize: planeSize,
		offsets:   offsets,
		samples:   make([][]float64, len(offsets)),
	}, nil
}

// Reset discards accumulated samples, starting a new cycle.
func (n *NoiseEstimator) Reset() {
	for i := range n.samples {
		n.samples[i] = n.samples[i][:0]
	}
}

// Observe records one frame's contribution: plane must be planeSize bytes.
func (n *NoiseEstimator) Observe(plane []byte) {
	for i, o := range n.offsets {
		n.samples[i] = append(n.samples[i], float64(plane[o]))
	}
}

// Estimate reduces the accumulated samples to a single noise-level figure,
// the mean standard deviation across sampled pixel positions. It returns 0
// if no samples have been observed.
func (n *NoiseEstimator) Estimate() float64 {
	var sum float64
	var count int
	for _, vals := range n.samples {
		if len(vals) < 2 {
			continue
		}
		_, std := stat.MeanStdDev(vals, nil)
		sum += std
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
