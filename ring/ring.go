/*
DESCRIPTION
  ring.go implements the ring video buffer that holds the most recent
  F_ring frames so an event's pre-roll can be recovered once a trigger is
  confirmed.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ring implements the fixed-size ring video buffer (component C)
// that the observer loop writes every captured frame into, and that the
// clip emitter reads backwards from to recover an event's pre-roll.
package ring

import (
	"fmt"

	"github.com/ausocean/pigazing/frame"
)

// Buffer holds the most recent N frames, overwriting the oldest slot as new
// frames arrive. The slot a given frame counter writes to is
// frameCounter % N, matching observe.c's
// "buffer_pos = video_buffer + (frame_counter % video_buffer_frames) * bytes_per_frame".
type Buffer struct {
	slots   []frame.Frame
	counter int64 // total frames written so far
}

// New allocates a Buffer with n slots, each pre-sized for the given
// geometry. n must be at least 1.
func New(n int, g frame.Geometry) (*Buffer, error) {
	if n < 1 {
		return nil, fmt.Errorf("ring: invalid slot count %d", n)
	}
	slots := make([]frame.Frame, n)
	for i := range slots {
		slots[i] = frame.New(g, 0)
	}
	return &Buffer{slots: slots}, nil
}

// Len returns the number of slots in the buffer (F_ring).
func (b *Buffer) Len() int { return len(b.slots) }

// Counter returns the total number of frames written so far (including
// frames that have since been overwritten).
func (b *Buffer) Counter() int64 { return b.counter }

// Full reports whether the buffer has wrapped at least once, i.e. every
// slot holds a real captured frame rather than a zeroed placeholder.
func (b *Buffer) Full() bool { return b.counter >= int64(len(b.slots)) }

// Write copies f into the slot for the current frame counter, then
// advances the counter. f.Data must be exactly sized for the buffer's
// geometry (the caller is expected to reuse a frame.New-allocated buffer
// across calls rather than allocate one per frame).
func (b *Buffer) Write(f frame.Frame) {
	i := int(b.counter % int64(len(b.slots)))
	copy(b.slots[i].Data, f.Data)
	b.slots[i].UTC = f.UTC
	b.counter++
}

// Latest returns the most recently written frame.
func (b *Buffer) Latest() frame.Frame {
	return b.At(0)
}

// At returns the frame written k frames ago: At(0) is the most recent
// write, At(1) the one before it, and so on up to Len()-1. It panics if k
// is out of [0, Len()) or if fewer than k+1 frames have ever been written.
func (b *Buffer) At(k int) frame.Frame {
	if k < 0 || k >= len(b.slots) {
		panic(fmt.Sprintf("ring: index %d out of range [0,%d)", k, len(b.slots)))
	}
	if int64(k) >= b.counter {
		panic(fmt.Sprintf("ring: only %d frames written, cannot look back %d", b.counter, k))
	}
	last := int(b.counter-1) % len(b.slots)
	i := last - k
	if i < 0 {
		i += len(b.slots)
	}
	return b.slots[i]
}

// Range returns, oldest-first, the frames whose absolute frame index (the
// same counter the observer loop increments once per call to Write) falls
// in [start, end] inclusive, clamped to what the buffer still retains.
// Frames older than the retention window are silently omitted, matching
// spec.md §8's "bounded by F_ring" clip-length guarantee — a clip spanning
// longer than the buffer loses its earliest frames rather than erroring.
func (b *Buffer) Range(start, end int64) []frame.Frame {
	if end < start {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if oldest := b.counter - int64(len(b.slots)); start < oldest {
		start = oldest
	}
	if end > b.counter-1 {
		end = b.counter - 1
	}
	if end < start {
		return nil
	}
	out := make([]frame.Frame, 0, end-start+1)
	for idx := start; idx <= end; idx++ {
		out = append(out, b.At(int(b.counter-1-idx)))
	}
	return out
}

// PreRoll returns, oldest-first, up to n of the most recently written
// frames (fewer if the buffer has not yet accumulated n frames). It is
// used by the clip emitter to recover an event's lead-in footage.
func (b *Buffer) PreRoll(n int) []frame.Frame {
	avail := int(b.counter)
	if avail > len(b.slots) {
		avail = len(b.slots)
	}
	if n > avail {
		n = avail
	}
	out := make([]frame.Frame, n)
	for i := 0; i < n; i++ {
		// out[0] should be the oldest of the requested frames, i.e. At(n-1).
		out[i] = b.At(n - 1 - i)
	}
	return out
}
