/*
DESCRIPTION
  event.go defines the Event and Detection types and the per-event pixel
  accumulators (stacked sum and running maximum) used to build the still
  products emitted when an event closes.

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

// Package event implements the Event Tracker (spec.md component J), Clip
// Emitter (K), Still Emitter (L) and Throttle (M). A Tracker consumes the
// trigger blocks a trigger.Scanner produces each frame, associates them
// into Events spanning multiple frames, confirms events that show a real
// moving path, and emits clip and still file products for events that are
// confirmed before they close.
package event

import "math"

// Status is the lifecycle stage of an Event.
type Status int

const (
	// Candidate events have not yet accumulated enough detections to be
	// confirmed as a real moving object.
	Candidate Status = iota
	// Confirmed events have met MinDetectionsForConfirm and MinPathLength
	// and will emit clip and still products when they close.
	Confirmed
	// Closed events are no longer accepting detections.
	Closed
)

// Detection is one frame's observation of a triggering block associated
// with an Event.
type Detection struct {
	FrameIndex int64
	UTC        float64
	X, Y       float64 // block centroid
	Intensity  float64 // block mean intensity
	PixelCount int     // block pixel count, accumulated across merges
}

// mergeInto folds other into d in place: an intensity-weighted centroid
// update plus additive pixel count and amplitude, matching spec.md §4.6's
// rule for multiple blocks found for the same object in one frame.
func (d *Detection) mergeInto(other Detection) {
	wSelf, wOther := d.Intensity, other.Intensity
	wSum := wSelf + wOther
	if wSum > 0 {
		d.X = (d.X*wSelf + other.X*wOther) / wSum
		d.Y = (d.Y*wSelf + other.Y*wOther) / wSum
	}
	d.Intensity += other.Intensity
	d.PixelCount += other.PixelCount
}

// Event tracks one candidate moving object across frames, per observe.c's
// register_trigger/register_trigger_ends.
type Event struct {
	ID         int
	Status     Status
	Detections []Detection
	StartFrame int64
	// LastFrame is the most recent frame index the tracker has processed
	// while this event was alive (used by Duration; the too-long lifetime
	// check measures from StartFrame).
	LastFrame int64
	// LastDetectionFrame is the frame index of the event's most recent
	// detection (used by the disappeared/timeout check); it only advances
	// when a new detection is associated, unlike LastFrame.
	LastDetectionFrame int64

	// stackedSum and maxStack are per-pixel accumulators folded in by
	// Tracker.Accumulate every frame the event is alive, used by the still
	// emitter to build the time-averaged and max-brightness composites.
	stackedSum []int64
	maxStack   []byte
	frameCount int

	// maxTrigger is the per-pixel OR of every frame's trigger-gate diagnostic
	// plane observed while the event was alive, used by the still emitter to
	// build the allTriggers composite (spec.md §3's "max_trigger").
	maxTrigger []byte
}

// newEvent allocates an Event starting with a single detection.
func newEvent(id int, planeSize int, d Detection) *Event {
	return &Event{
		ID:                 id,
		Status:             Candidate,
		Detections:         []Detection{d},
		StartFrame:         d.FrameIndex,
		LastFrame:          d.FrameIndex,
		LastDetectionFrame: d.FrameIndex,
		stackedSum:         make([]int64, planeSize),
		maxStack:   make([]byte, planeSize),
		maxTrigger: make([]byte, planeSize),
	}
}

// accumulate folds one frame's channel-plane into the event's stacked-sum
// and running-maximum composites, and ORs triggerPlane (the trigger gate's
// pass/fail diagnostic for this frame, or nil if none was computed) into
// the event's maxTrigger composite.
func (e *Event) accumulate(plane []byte, triggerPlane []byte) {
	for i, v := range plane {
		e.stackedSum[i] += int64(v)
		if v > e.maxStack[i] {
			e.maxStack[i] = v
		}
	}
	for i, v := range triggerPlane {
		e.maxTrigger[i] |= v
	}
	e.frameCount++
}

// MaxTrigger returns the per-pixel OR of every trigger-gate diagnostic
// plane observed while the event has been alive.
func (e *Event) MaxTrigger() []byte { return e.maxTrigger }

// TimeAverage returns the mean brightness composite accumulated so far.
func (e *Event) TimeAverage() []byte {
	out := make([]byte, len(e.stackedSum))
	if e.frameCount == 0 {
		return out
	}
	for i, s := range e.stackedSum {
		v := s / int64(e.frameCount)
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

// MaxBrightness returns the running per-pixel maximum composite
// accumulated so far.
func (e *Event) MaxBrightness() []byte {
	return e.maxStack
}

// PathLength returns the Euclidean distance between the event's first and
// last detection, the path-length test spec.md §4.6 gates confirmation on
// (not the cumulative distance travelled across every detection, which
// would let a jittering stationary pixel accumulate enough wandering to
// confirm).
func (e *Event) PathLength() float64 {
	if len(e.Detections) < 2 {
		return 0
	}
	a, b := e.Detections[0], e.Detections[len(e.Detections)-1]
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Duration returns, in frames, how long the event has been alive.
func (e *Event) Duration() int64 {
	return e.LastFrame - e.StartFrame
}

// AmplitudePeak returns the highest single-detection intensity recorded.
func (e *Event) AmplitudePeak() float64 {
	var peak float64
	for _, d := range e.Detections {
		if d.Intensity > peak {
			peak = d.Intensity
		}
	}
	return peak
}

// AmplitudeTimeIntegrated returns the sum of every detection's intensity.
func (e *Event) AmplitudeTimeIntegrated() float64 {
	var sum float64
	for _, d := range e.Detections {
		sum += d.Intensity
	}
	return sum
}
