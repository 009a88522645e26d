/*
DESCRIPTION
  ring_test.go tests the ring video buffer's wraparound, lookback and
  pre-roll extraction.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ring

import (
	"testing"

	"github.com/ausocean/pigazing/frame"
)

func geom() frame.Geometry { return frame.Geometry{Width: 2, Height: 2} }

func mkFrame(utc float64) frame.Frame {
	f := frame.New(geom(), utc)
	for i := range f.Data {
		f.Data[i] = byte(utc)
	}
	return f
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(0, geom()); err == nil {
		t.Error("expected error for zero-length buffer")
	}
}

func TestFullAndCounter(t *testing.T) {
	b, err := New(3, geom())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Full() {
		t.Error("buffer should not be full before any writes")
	}
	for i := 0; i < 3; i++ {
		b.Write(mkFrame(float64(i)))
	}
	if !b.Full() {
		t.Error("buffer should be full after Len() writes")
	}
	if got, want := b.Counter(), int64(3); got != want {
		t.Errorf("Counter() = %d, want %d", got, want)
	}
}

func TestLatestAndAt(t *testing.T) {
	b, err := New(3, geom())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 5; i++ {
		b.Write(mkFrame(float64(i)))
	}
	// Five writes into a 3-slot buffer: slots hold UTC 2, 3, 4 (in some
	// rotation); At(0) is the most recent (UTC 4), At(2) the oldest retained
	// (UTC 2).
	if got, want := b.Latest().UTC, 4.0; got != want {
		t.Errorf("Latest().UTC = %v, want %v", got, want)
	}
	if got, want := b.At(1).UTC, 3.0; got != want {
		t.Errorf("At(1).UTC = %v, want %v", got, want)
	}
	if got, want := b.At(2).UTC, 2.0; got != want {
		t.Errorf("At(2).UTC = %v, want %v", got, want)
	}
}

func TestAtPanicsOutOfRange(t *testing.T) {
	b, _ := New(3, geom())
	b.Write(mkFrame(0))

	defer func() {
		if recover() == nil {
			t.Error("expected panic looking back further than frames written")
		}
	}()
	b.At(1)
}

func TestPreRollOrderingAndClamping(t *testing.T) {
	b, _ := New(4, geom())
	for i := 0; i < 3; i++ {
		b.Write(mkFrame(float64(i)))
	}

	// Only 3 frames exist; asking for 10 should clamp to 3, oldest-first.
	pr := b.PreRoll(10)
	if len(pr) != 3 {
		t.Fatalf("PreRoll(10) length = %d, want 3", len(pr))
	}
	for i, f := range pr {
		if f.UTC != float64(i) {
			t.Errorf("PreRoll()[%d].UTC = %v, want %v", i, f.UTC, i)
		}
	}

	pr2 := b.PreRoll(2)
	if len(pr2) != 2 {
		t.Fatalf("PreRoll(2) length = %d, want 2", len(pr2))
	}
	if pr2[0].UTC != 1 || pr2[1].UTC != 2 {
		t.Errorf("PreRoll(2) = %v, %v, want 1, 2", pr2[0].UTC, pr2[1].UTC)
	}
}

func TestRangeByAbsoluteFrameIndex(t *testing.T) {
	b, _ := New(4, geom())
	for i := 0; i < 6; i++ { // writes frame indices 0..5 into a 4-slot buffer
		b.Write(mkFrame(float64(i)))
	}

	// Frames 0 and 1 have already been overwritten; requesting [0,3] should
	// clamp to whatever survives, oldest-first.
	got := b.Range(0, 3)
	if len(got) != 2 {
		t.Fatalf("Range(0,3) length = %d, want 2 (frames 0,1 overwritten)", len(got))
	}
	if got[0].UTC != 2 || got[1].UTC != 3 {
		t.Errorf("Range(0,3) = %v, %v, want 2, 3", got[0].UTC, got[1].UTC)
	}

	got2 := b.Range(3, 5)
	if len(got2) != 3 {
		t.Fatalf("Range(3,5) length = %d, want 3", len(got2))
	}
	for i, f := range got2 {
		if f.UTC != float64(3+i) {
			t.Errorf("Range(3,5)[%d].UTC = %v, want %v", i, f.UTC, 3+i)
		}
	}
}

func TestRangeEmptyWhenEndBeforeStart(t *testing.T) {
	b, _ := New(4, geom())
	b.Write(mkFrame(0))
	if got := b.Range(5, 2); got != nil {
		t.Errorf("Range(5,2) = %v, want nil", got)
	}
}
