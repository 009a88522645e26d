/*
DESCRIPTION
  background.go implements the per-pixel histogram background model: frames
  are folded into a 256-bin histogram per pixel, and periodically reduced,
  a few pixels per frame, into a background map via a 5-tap weighted mode
  extraction.

AUTHORS
  Priya Natarajan <priya@ausocean.org>
  Reuben Ostrander <reuben@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package background implements the Background Model (spec.md component D)
// and the Noise Estimator (component F). The model accumulates a per-pixel
// brightness histogram over BackgroundMapFrames frames, then spreads the
// work of reducing that histogram to a background map across the frames
// that follow so no single frame pays the full reduction cost.
package background

import (
	"fmt"

	"github.com/ausocean/pigazing/frame"
)

// tapWeights are the 5-tap weights applied to histogram bins f-4..f when
// hunting for the weighted mode, grounded on tools.c's background_calculate.
var tapWeights = [5]uint32{4, 8, 10, 8, 4}

const histBins = 256

// Model is the per-pixel histogram background estimator. Callers feed it
// one channel-plane per frame via Observe, and periodically call ReduceStep
// to progress the amortised reduction of the most recently closed
// histogram window into a background map.
type Model struct {
	geom frame.Geometry

	framesPerMap    int
	reductionCycles int
	samples         int

	hist       []uint32 // planeSize*histBins
	frameCount int

	reducing     bool
	reduceCursor int
	pending      []byte

	maps      [][]byte // ring of background maps, most recent at nextSlot-1
	mapsFull  bool
	nextSlot  int
}

// New allocates a Model for the given geometry. framesPerMap is the
// accumulation window (BackgroundMapFrames), reductionCycles is how many
// ReduceStep calls one window's reduction is spread across
// (BackgroundMapReductionCycles), and samples is how many past background
// maps are retained (BackgroundMapSamples).
func New(geom frame.Geometry, framesPerMap, reductionCycles, samples int) (*Model, error) {
	if framesPerMap < 1 || reductionCycles < 1 || samples < 1 {
		return nil, fmt.Errorf("background: invalid parameters framesPerMap=%d reductionCycles=%d samples=%d",
			framesPerMap, reductionCycles, samples)
	}
	plane := geom.PlaneSize()
	return &Model{
		geom:            geom,
		framesPerMap:    framesPerMap,
		reductionCycles: reductionCycles,
		samples:         samples,
		hist:            make([]uint32, plane*histBins),
		maps:            make([][]byte, samples),
	}, nil
}

// Observe folds one channel-plane (length geom.PlaneSize()) into the
// histogram. When framesPerMap frames have been observed since the last
// window closed, the current window closes and amortised reduction of it
// begins via ReduceStep; closing a window never blocks Observe.
func (m *Model) Observe(plane []byte) {
	base := 0
	for _, bin := range plane {
		m.hist[base+int(bin)]++
		base += histBins
	}
	m.frameCount++
	if m.frameCount >= m.framesPerMap && !m.reducing {
		m.reducing = true
		m.reduceCursor = 0
		m.pending = make([]byte, len(plane))
		m.frameCount = 0
	}
}

// Reducing reports whether a reduction pass is currently in progress.
func (m *Model) Reducing() bool { return m.reducing }

// ReduceStep advances the in-progress reduction by one chunk
// (PlaneSize/reductionCycles pixels, the last chunk absorbing any
// remainder). It reports whether this call completed the reduction and
// produced a new background map (retrievable via Latest/Average). It is a
// no-op returning false if no reduction is in progress.
func (m *Model) ReduceStep() bool {
	if !m.reducing {
		return false
	}
	plane := len(m.pending)
	chunk := plane / m.reductionCycles
	if chunk < 1 {
		chunk = 1
	}
	end := m.reduceCursor + chunk
	if end > plane || plane-end < chunk {
		// Last chunk absorbs the remainder.
		end = plane
	}
	for px := m.reduceCursor; px < end; px++ {
		hist := m.hist[px*histBins : px*histBins+histBins]
		m.pending[px] = weightedMode(hist)
		for b := range hist {
			hist[b] = 0
		}
	}
	m.reduceCursor = end
	if m.reduceCursor >= plane {
		m.maps[m.nextSlot] = m.pending
		m.nextSlot = (m.nextSlot + 1) % len(m.maps)
		if m.nextSlot == 0 {
			m.mapsFull = true
		}
		m.pending = nil
		m.reducing = false
		return true
	}
	return false
}

// weightedMode finds, for a single pixel's 256-bin histogram, the bin f
// maximising the 5-tap weighted sum hist[f-4]*4 + hist[f-3]*8 + hist[f-2]*10
// + hist[f-1]*8 + hist[f]*4, then returns max(f-1, 0): a clipped-darker
// estimate of the pixel's steady background level, grounded on tools.c's
// background_calculate.
func weightedMode(hist []uint32) byte {
	var bestBin int
	var bestWeight uint64
	for f := 4; f < histBins; f++ {
		var w uint64
		for t := 0; t < 5; t++ {
			w += uint64(hist[f-4+t]) * uint64(tapWeights[t])
		}
		if w > bestWeight {
			bestWeight = w
			bestBin = f
		}
	}
	if bestBin == 0 {
		return 0
	}
	return byte(bestBin - 1)
}

// Latest returns the most recently completed background map, or nil if no
// reduction has yet completed.
func (m *Model) Latest() []byte {
	i := m.nextSlot - 1
	if i < 0 {
		i = len(m.maps) - 1
	}
	return m.maps[i]
}

// Average returns the element-wise mean of every completed background map
// currently retained, giving a more stable estimate than any single map.
// It returns nil if no reduction has yet completed.
func (m *Model) Average() []byte {
	n := len(m.maps)
	if !m.mapsFull {
		n = m.nextSlot
	}
	if n == 0 {
		return nil
	}
	plane := m.geom.PlaneSize()
	sums := make([]int, plane)
	count := 0
	for _, mp := range m.maps {
		if mp == nil {
			continue
		}
		for i, v := range mp {
			sums[i] += int(v)
		}
		count++
	}
	if count == 0 {
		return nil
	}
	out := make([]byte, plane)
	for i, s := range sums {
		out[i] = byte(s / count)
	}
	return out
}
