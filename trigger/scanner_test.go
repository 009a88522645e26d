/*
DESCRIPTION
  scanner_test.go tests the dual-gate pixel test and the full-frame scan's
  block assignment and qualification.

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

import (
	"testing"

	"github.com/ausocean/pigazing/frame"
)

func TestNewInvalid(t *testing.T) {
	if _, err := New(frame.Geometry{Width: 10, Height: 10}, 100); err == nil {
		t.Error("expected error for geometry too small for the scan margin")
	}
	if _, err := New(frame.Geometry{Width: 50, Height: 50}, 0); err == nil {
		t.Error("expected error for maxBlocks=0")
	}
}

// testPixelScanner's 100x100 geometry keeps every neighbourRadius=16
// sampling position for a centred pixel in bounds, so all 9 grid cells
// (including the pixel itself) count toward the gate.
func testPixelScanner() *Scanner {
	return &Scanner{width: 100, height: 100, maxBlocks: 100}
}

func TestTestPixelAccepts(t *testing.T) {
	s := testPixelScanner()
	oldPlane := make([]byte, 100*100)
	newPlane := make([]byte, 100*100)
	for i := range oldPlane {
		oldPlane[i] = 100
		newPlane[i] = 100
	}
	newPlane[50*100+50] = 150 // the centre pixel under test; its neighbourhood in both images stays unchanged

	if !s.testPixel(50, 50, newPlane, oldPlane, 5) {
		t.Error("testPixel should accept a pixel that brightened in isolation")
	}
}

func TestTestPixelRejectsBelowMonitorThreshold(t *testing.T) {
	s := testPixelScanner()
	oldPlane := make([]byte, 100*100)
	newPlane := make([]byte, 100*100)
	for i := range oldPlane {
		oldPlane[i] = 100
		newPlane[i] = 100
	}
	newPlane[50*100+50] = 102 // diff of 2, below threshold=5

	if s.testPixel(50, 50, newPlane, oldPlane, 5) {
		t.Error("testPixel should reject a change too small to clear the gate")
	}
}

func TestTestPixelRejectsNoNeighbours(t *testing.T) {
	s := &Scanner{width: 1, height: 1, maxBlocks: 100}
	oldPlane := []byte{100}
	newPlane := []byte{150}

	if s.testPixel(0, 0, newPlane, oldPlane, 5) {
		t.Error("testPixel should reject when every neighbour offset but the pixel itself is out of bounds")
	}
}

func TestTestPixelRejectsFrameWideChange(t *testing.T) {
	s := testPixelScanner()
	oldPlane := make([]byte, 100*100)
	newPlane := make([]byte, 100*100)
	for i := range oldPlane {
		oldPlane[i] = 100
		newPlane[i] = 150 // every pixel brightened, including the self-similarity neighbourhood
	}

	if s.testPixel(50, 50, newPlane, oldPlane, 5) {
		t.Error("testPixel should reject a change shared by its own neighbourhood")
	}
}

// scanGeometry is large enough to satisfy New's margin requirement (width
// and height > 2*scanMargin) while keeping the fixture small.
func scanGeometry() frame.Geometry { return frame.Geometry{Width: 50, Height: 50} }

func TestScanRejectsPlaneLengthMismatch(t *testing.T) {
	s, err := New(scanGeometry(), DefaultMaxBlocks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	past := NewPastTriggerMap(50 * 50)
	_, err = s.Scan(make([]byte, 10), make([]byte, 50*50), 5, past, nil, false)
	if err == nil {
		t.Error("expected error for a mismatched plane length")
	}
}

func TestScanNoTriggersWhenPlanesMatch(t *testing.T) {
	s, err := New(scanGeometry(), DefaultMaxBlocks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plane := make([]byte, 50*50)
	for i := range plane {
		plane[i] = 100
	}
	past := NewPastTriggerMap(50 * 50)
	res, err := s.Scan(plane, plane, 5, past, nil, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Blocks) != 0 {
		t.Errorf("Scan found %d blocks, want 0 for an unchanged plane", len(res.Blocks))
	}
	for i, v := range res.Diagnostic.B {
		if v != 0 {
			t.Fatalf("Diagnostic.B[%d] = %d, want 0", i, v)
			break
		}
	}
}

// buildLinePlanes constructs a 50x50 fixture with a bright vertical line at
// column 25 spanning rows [top,bot] in the new frame, against a uniform old
// frame, so every line pixel independently clears the dual gate (see
// TestTestPixelAccepts) while every other pixel fails the monitor gate
// outright.
func buildLinePlanes(top, bot int) (newPlane, oldPlane []byte) {
	const w, h = 50, 50
	newPlane = make([]byte, w*h)
	oldPlane = make([]byte, w*h)
	for i := range oldPlane {
		oldPlane[i] = 100
		newPlane[i] = 100
	}
	for y := top; y <= bot; y++ {
		newPlane[y*w+25] = 150
	}
	return
}

func TestScanFindsQualifyingBlock(t *testing.T) {
	s, err := New(scanGeometry(), DefaultMaxBlocks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	newPlane, oldPlane := buildLinePlanes(21, 28)
	past := NewPastTriggerMap(50 * 50)

	// noise=0.3 keeps threshold_intensity = 100*noise = 30 well below the
	// 8-pixel line's summed excess of 400, while still clearing the
	// MAX(1, mult*noise) gate thresholds at a diff of 50.
	res, err := s.Scan(newPlane, oldPlane, 0.3, past, nil, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("Scan found %d blocks, want 1", len(res.Blocks))
	}
	b := res.Blocks[0]
	if b.Count != 8 {
		t.Errorf("block Count = %d, want 8", b.Count)
	}
	if b.Top != 21 || b.Bot != 28 || b.Left != 25 || b.Right != 25 {
		t.Errorf("block bounds = top=%d bot=%d left=%d right=%d, want 21,28,25,25", b.Top, b.Bot, b.Left, b.Right)
	}
	if res.Diagnostic.B[24*50+25] == 0 {
		t.Error("Diagnostic.B should mark pixels that passed the trigger gate")
	}
}

func TestScanExcludesChronicPixelFromStatsButStillBridgesBlock(t *testing.T) {
	s, err := New(scanGeometry(), DefaultMaxBlocks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	newPlane, oldPlane := buildLinePlanes(20, 28)
	past := NewPastTriggerMap(50 * 50)
	chronicOffset := 20*50 + 25
	for i := 0; i < 1000; i++ {
		past.Record(chronicOffset)
	}

	res, err := s.Scan(newPlane, oldPlane, 0.3, past, nil, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("Scan found %d blocks, want 1 (the chronic pixel still bridges into the same block)", len(res.Blocks))
	}
	if res.Blocks[0].Count != 8 {
		t.Errorf("block Count = %d, want 8 (9-row line minus the excluded chronic pixel's contribution)", res.Blocks[0].Count)
	}
	if res.Blocks[0].Top != 20 {
		t.Errorf("block Top = %d, want 20 (bbox seeded by the allocating pixel even though it was chronic)", res.Blocks[0].Top)
	}
}
