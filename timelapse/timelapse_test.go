/*
DESCRIPTION
  timelapse_test.go tests the time-lapse stacker's accumulation, gain
  normalisation and background subtraction.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package timelapse

import "testing"

func TestNewInvalid(t *testing.T) {
	if _, err := New(0, 1); err == nil {
		t.Error("expected error for planeSize=0")
	}
	if _, err := New(1, 0); err == nil {
		t.Error("expected error for exposureFrames=0")
	}
}

func TestReadyAndFrameCount(t *testing.T) {
	s, err := New(4, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plane := []byte{10, 20, 30, 40}
	for i := 0; i < 2; i++ {
		s.Add(plane)
		if s.Ready() {
			t.Errorf("Ready() true after %d of 3 frames", i+1)
		}
	}
	s.Add(plane)
	if !s.Ready() {
		t.Error("Ready() should be true once exposureFrames frames are added")
	}
	if got, want := s.FrameCount(), 3; got != want {
		t.Errorf("FrameCount() = %d, want %d", got, want)
	}
}

func TestEmitNormalisesToTarget(t *testing.T) {
	s, err := New(4, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plane := []byte{10, 10, 10, 10}
	s.Add(plane)
	s.Add(plane)

	out := s.Emit(20)
	// Mean brightness is 10; gain to reach target 20 is 2.0, within
	// [gainMin, gainMax], so every pixel should land at 20.
	for i, v := range out {
		if v != 20 {
			t.Errorf("Emit()[%d] = %d, want 20", i, v)
		}
	}
}

func TestEmitClampsGain(t *testing.T) {
	s, err := New(1, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Add([]byte{1})
	out := s.Emit(255)
	// Target gain would be 255, clamped to gainMax=30, so output is 30.
	if got, want := out[0], byte(30); got != want {
		t.Errorf("Emit()[0] = %d, want %d (clamped gain)", got, want)
	}
}

func TestEmitSubtractedCentresOnMidGrey(t *testing.T) {
	s, err := New(2, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Add([]byte{50, 50})
	background := []byte{50, 40}

	out := s.EmitSubtracted(background, 50)
	// Pixel 0 matches its background exactly: diff=0, so output is 128
	// regardless of gain.
	if out[0] != 128 {
		t.Errorf("EmitSubtracted()[0] = %d, want 128 for zero difference", out[0])
	}
	// Pixel 1 is brighter than its background: output should exceed 128.
	if out[1] <= 128 {
		t.Errorf("EmitSubtracted()[1] = %d, want > 128 for a positive difference", out[1])
	}
}

func TestResetClearsAccumulator(t *testing.T) {
	s, err := New(2, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Add([]byte{200, 200})
	s.Reset()
	if s.Ready() {
		t.Error("Ready() should be false immediately after Reset")
	}
	if got, want := s.FrameCount(), 0; got != want {
		t.Errorf("FrameCount() after Reset = %d, want %d", got, want)
	}
}
