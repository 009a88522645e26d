/*
DESCRIPTION
  pastmap.go implements the past-trigger map: a running per-pixel count of
  how often each pixel has fired the motion detector, used to suppress
  chronically-triggering pixels (hot pixels, moving branches, reflections).

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package trigger

// chronicMultiplier is how far above the rolling mean trigger count a
// pixel's count must rise before it is excluded from contributing to block
// statistics, grounded on trigger.c's check_for_triggers
// (os->past_trigger_map[o] < 2.3 * past_trigger_map_average).
const chronicMultiplier = 2.3

// PastTriggerMap is the per-pixel trigger-count history used to exclude
// chronically-triggering pixels (component I).
type PastTriggerMap struct {
	counts []uint32
	mu     float64 // rolling mean trigger count, used by the *next* scan
}

// NewPastTriggerMap allocates a PastTriggerMap for a plane of the given
// size. mu starts at 1, matching trigger.c's
// "static unsigned long long past_trigger_map_average = 1" before any
// scan has run.
func NewPastTriggerMap(planeSize int) *PastTriggerMap {
	return &PastTriggerMap{counts: make([]uint32, planeSize), mu: 1}
}

// Mean returns μ_past, the rolling mean trigger count computed after the
// previous scan, used by this scan to judge chronic pixels.
func (p *PastTriggerMap) Mean() float64 { return p.mu }

// Count returns the current trigger count for offset.
func (p *PastTriggerMap) Count(offset int) uint32 { return p.counts[offset] }

// Chronic reports whether the pixel at offset has already triggered often
// enough, relative to μ_past, that it should stop contributing to block
// statistics this scan. Chronic pixels still pass through the dual gate
// and still participate in block assignment (so they can bridge two
// genuine detections into one block) — only their contribution to a
// block's pixel count, bounding box and intensity sum is withheld.
func (p *PastTriggerMap) Chronic(offset int) bool {
	return float64(p.counts[offset]) >= chronicMultiplier*p.mu
}

// Record increments the trigger count for offset. Exported for tests that
// seed a chronic pixel directly; Scan calls it internally as part of the
// dual gate.
func (p *PastTriggerMap) Record(offset int) {
	p.counts[offset]++
}

// updateMean recomputes μ_past for the next scan from this scan's line
// accumulators, grounded on trigger.c's
// past_trigger_map_average = past_trigger_map_average_new / pixel_count_within_mask + 1.
func (p *PastTriggerMap) updateMean(sumTrigger, sumMask int64) {
	if sumMask <= 0 {
		sumMask = 1
	}
	p.mu = float64(sumTrigger)/float64(sumMask) + 1
}

// Reset clears every pixel's trigger count and the rolling mean, used when
// starting a fresh observation run.
func (p *PastTriggerMap) Reset() {
	for i := range p.counts {
		p.counts[i] = 0
	}
	p.mu = 1
}
