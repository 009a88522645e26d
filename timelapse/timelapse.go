/*
DESCRIPTION
  timelapse.go implements the time-lapse stacker: an int32 per-pixel
  accumulator that integrates a configured exposure window of frames, then
  emits a gain-normalised still, either as a straight brightness stack or as
  a background-subtracted difference image.

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

// Package timelapse implements the Time-lapse Stacker (spec.md component
// E): frames are summed per pixel over an exposure window, then emitted as
// a single gain-normalised still once the window closes.
package timelapse

import "fmt"

// gainMin and gainMax bound the brightness gain applied at emission time,
// grounded on tools.c's dump_frame_from_ints gain search.
const (
	gainMin = 1.0
	gainMax = 30.0
)

// Stacker accumulates one exposure window's worth of frames.
type Stacker struct {
	planeSize      int
	exposureFrames int
	sums           []int32
	frameCount     int
}

// New allocates a Stacker for a plane of planeSize bytes, integrating
// exposureFrames frames per output still.
func New(planeSize, exposureFrames int) (*Stacker, error) {
	if planeSize < 1 || exposureFrames < 1 {
		return nil, fmt.Errorf("timelapse: invalid parameters planeSize=%d exposureFrames=%d", planeSize, exposureFrames)
	}
	return &Stacker{
		planeSize:      planeSize,
		exposureFrames: exposureFrames,
		sums:           make([]int32, planeSize),
	}, nil
}

// Add folds one channel-plane into the accumulator.
func (s *Stacker) Add(plane []byte) {
	for i, v := range plane {
		s.sums[i] += int32(v)
	}
	s.frameCount++
}

// Ready reports whether the exposure window has closed and Emit/EmitSubtracted
// may be called.
func (s *Stacker) Ready() bool { return s.frameCount >= s.exposureFrames }

// FrameCount returns how many frames have been accumulated since the last
// Reset.
func (s *Stacker) FrameCount() int { return s.frameCount }

// Reset clears the accumulator, starting a new exposure window.
func (s *Stacker) Reset() {
	for i := range s.sums {
		s.sums[i] = 0
	}
	s.frameCount = 0
}

// Emit produces a gain-normalised still from the accumulated sums: each
// pixel's mean brightness (sum/frameCount) is scaled by a single gain
// factor chosen so the plane's overall mean brightness reaches
// targetBrightness, clamped to [gainMin, gainMax], matching tools.c's
// dump_frame_from_ints.
func (s *Stacker) Emit(targetBrightness int) []byte {
	gain := s.gainFor(targetBrightness)
	out := make([]byte, s.planeSize)
	for i, sum := range s.sums {
		mean := float64(sum) / float64(s.frameCount)
		out[i] = clip8(mean * gain)
	}
	return out
}

// EmitSubtracted produces a gain-normalised difference still: each pixel's
// mean brightness minus the corresponding background map value, rescaled
// around the mid-grey point 128 so that negative and positive excursions
// both remain visible, matching tools.c's dump_frame_from_int_subtraction.
func (s *Stacker) EmitSubtracted(background []byte, targetBrightness int) []byte {
	gain := s.gainFor(targetBrightness)
	out := make([]byte, s.planeSize)
	for i, sum := range s.sums {
		mean := float64(sum) / float64(s.frameCount)
		diff := mean - float64(background[i])
		out[i] = clip8(128 + diff*gain)
	}
	return out
}

func (s *Stacker) gainFor(targetBrightness int) float64 {
	if s.frameCount == 0 {
		return gainMin
	}
	var total int64
	for _, sum := range s.sums {
		total += int64(sum)
	}
	mean := float64(total) / float64(s.frameCount) / float64(s.planeSize)
	if mean <= 0 {
		return gainMax
	}
	gain := float64(targetBrightness) / mean
	if gain < gainMin {
		return gainMin
	}
	if gain > gainMax {
		return gainMax
	}
	return gain
}

func clip8(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
