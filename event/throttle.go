/*
DESCRIPTION
  throttle.go implements the rolling-window throttle that caps how many
  confirmed events may emit clip/still products within a configured
  period, so a chronically noisy scene cannot flood storage.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package event

import "math"

// Throttle limits confirmed-event emission to at most maxEvents per
// periodFrames, resetting its counter once the window elapses.
type Throttle struct {
	periodFrames int64
	maxEvents    int

	windowStart int64
	count       int
}

// NewThrottle constructs a Throttle. periodMinutes and fps determine the
// window length in frames as ceil(periodMinutes*60*fps), per spec.md's
// instruction on how TRIGGER_THROTTLE_PERIOD is to be interpreted.
func NewThrottle(periodMinutes float64, fps float64, maxEvents int) *Throttle {
	period := int64(math.Ceil(periodMinutes * 60 * fps))
	if period < 1 {
		period = 1
	}
	return &Throttle{periodFrames: period, maxEvents: maxEvents}
}

// Allow reports whether a confirmed event closing at frameIndex may emit
// its products, and records the emission if so. Once maxEvents have been
// allowed within the current window, further events are suppressed until
// the window rolls over.
func (t *Throttle) Allow(frameIndex int64) bool {
	t.roll(frameIndex)
	if t.count >= t.maxEvents {
		return false
	}
	t.count++
	return true
}

// Ready reports whether the throttle currently has headroom to accept
// another confirmed event, without consuming it. Grounded on spec.md
// §4.1 step 8's triggering_allowed = ... ∧ (throttle_count < THROTTLE_MAX):
// the observer loop consults this before running the motion detector at
// all, so a throttled period stops new candidate events from forming
// rather than merely suppressing their emission once confirmed.
func (t *Throttle) Ready(frameIndex int64) bool {
	t.roll(frameIndex)
	return t.count < t.maxEvents
}

// roll resets the rolling window if periodFrames have elapsed since it
// started.
func (t *Throttle) roll(frameIndex int64) {
	if frameIndex-t.windowStart >= t.periodFrames {
		t.windowStart = frameIndex
		t.count = 0
	}
}
