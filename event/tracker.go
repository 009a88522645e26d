/*
DESCRIPTION
  tracker.go implements the Event Tracker: association of each frame's
  trigger blocks with in-flight events, confirmation once an event shows a
  real moving path, and closure once an event times out, runs too long, or
  disappears.

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

import (
	"math"

	"github.com/ausocean/pigazing/trigger"
)

// Tracking parameters, grounded on observe.h/observe.c: MaxEvents caps how
// many candidate/confirmed events may be alive at once
// (MAX_EVENTS), MaxDetectionsPerEvent caps an event's detection history
// (MAX_DETECTIONS), MaxMovementPerFrame is the farthest a block's centroid
// may move between consecutive frames and still count as the same object
// (trigger_maximum_movement_per_frame), MinDetectionsForConfirm and
// MinPathLength are the confirmation thresholds (detection_count >= 2 &&
// path length >= 4).
const (
	MaxEvents              = 3
	MaxDetectionsPerEvent  = 1024
	MaxMovementPerFrame    = 70.0
	MinDetectionsForConfirm = 2
	MinPathLength           = 4.0
)

// Tracker associates each frame's trigger blocks into Events.
type Tracker struct {
	planeSize  int
	maxDuration int64 // frames
	timeout     int64 // frames since last detection before an event is considered disappeared

	events []*Event
	nextID int
}

// New constructs a Tracker. maxDurationFrames and timeoutFrames bound an
// event's lifetime and idle period respectively (TriggerMaxDuration and
// TriggerSuffixTime, both converted to frame counts by the caller).
func New(planeSize int, maxDurationFrames, timeoutFrames int64) *Tracker {
	return &Tracker{planeSize: planeSize, maxDuration: maxDurationFrames, timeout: timeoutFrames}
}

// Active returns the events currently alive (candidate or confirmed).
func (t *Tracker) Active() []*Event { return t.events }

// Register associates frameIndex's trigger blocks with the tracker's
// active events, creating new candidate events for blocks that cannot be
// associated with an existing one, and folds plane and triggerPlane (the
// current frame's trigger-gate diagnostic, or nil if this frame was not
// scanned) into every active event's stacked composites. It must be
// called exactly once per frame, whether or not any blocks triggered.
func (t *Tracker) Register(frameIndex int64, utc float64, blocks []trigger.TriggerBlock, plane, triggerPlane []byte) []*Event {
	var created []*Event

	for _, b := range blocks {
		d := Detection{FrameIndex: frameIndex, UTC: utc, X: b.CentroidX, Y: b.CentroidY, Intensity: b.MeanIntensity(), PixelCount: b.Count}
		idx := t.nearestActive(d)
		if idx >= 0 {
			t.appendDetection(t.events[idx], d)
			continue
		}
		if len(t.events) >= MaxEvents {
			// All event slots are busy; this block is dropped, matching
			// observe.c's silent drop when MAX_EVENTS is already in use.
			continue
		}
		e := newEvent(t.nextID, t.planeSize, d)
		t.events = append(t.events, e)
		created = append(created, e)
		t.nextID++
	}

	for _, e := range t.events {
		e.LastFrame = frameIndex
		e.accumulate(plane, triggerPlane)
	}
	return created
}

// appendDetection folds one more detection into an already-associated
// event and re-evaluates confirmation. If d shares its FrameIndex with the
// event's existing last detection (multiple blocks found for the same
// object in one frame), it is merged into that detection in place rather
// than appended, preserving the invariant that consecutive detections
// differ in frame_counter (spec.md §3).
func (t *Tracker) appendDetection(e *Event, d Detection) {
	if n := len(e.Detections); n > 0 && e.Detections[n-1].FrameIndex == d.FrameIndex {
		e.Detections[n-1].mergeInto(d)
	} else if len(e.Detections) < MaxDetectionsPerEvent {
		e.Detections = append(e.Detections, d)
	}
	e.LastFrame = d.FrameIndex
	e.LastDetectionFrame = d.FrameIndex
	if e.Status == Candidate && len(e.Detections) >= MinDetectionsForConfirm && e.PathLength() >= MinPathLength {
		e.Status = Confirmed
	}
}

// nearestActive returns the index of the closest active event within
// MaxMovementPerFrame of d's position, or -1 if none qualifies.
func (t *Tracker) nearestActive(d Detection) int {
	best := -1
	bestDist := math.Inf(1)
	for i, e := range t.events {
		if e.Status == Closed || len(e.Detections) == 0 {
			continue
		}
		last := e.Detections[len(e.Detections)-1]
		dist := math.Hypot(d.X-last.X, d.Y-last.Y)
		if dist <= MaxMovementPerFrame && dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// RegisterEnds closes any event that has run longer than maxDuration or
// has gone more than timeout frames without a new detection, removing it from the
// active list. It must be called once per frame, before Register, matching
// observe.c's ordering (register_trigger_ends runs before
// check_for_triggers each iteration).
func (t *Tracker) RegisterEnds(frameIndex int64) []*Event {
	var closed []*Event
	var remain []*Event
	for _, e := range t.events {
		tooLong := frameIndex-e.StartFrame > t.maxDuration
		disappeared := frameIndex-e.LastDetectionFrame > t.timeout
		if tooLong || disappeared {
			e.Status = Closed
			closed = append(closed, e)
			continue
		}
		remain = append(remain, e)
	}
	t.events = remain
	return closed
}
