/*
DESCRIPTION
  mask.go defines the per-pixel trigger mask consumed by the motion
  detector.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mask provides the Mask type: a read-only per-pixel Boolean map
// that gates which pixels may contribute to motion-detector trigger tests.
// Construction of a mask from a configured polygon is an external collaborator
// (spec.md §1) and out of scope; this package provides the type itself and a
// loader for the raw byte-grid form.
package mask

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Mask is a width*height byte grid; a non-zero entry means "consider this
// pixel" per spec.md §6.2.
type Mask struct {
	Width, Height int
	Bits          []byte
}

// AllOnes returns a Mask of the given dimensions with every pixel enabled,
// used when no mask polygon has been configured.
func AllOnes(width, height int) Mask {
	bits := make([]byte, width*height)
	for i := range bits {
		bits[i] = 1
	}
	return Mask{Width: width, Height: height, Bits: bits}
}

// At reports whether the pixel at the given linear offset is enabled.
func (m Mask) At(offset int) bool {
	return m.Bits[offset] != 0
}

// Load reads a mask previously written with Save, using the same
// [width:i32][height:i32][channels:i32][pixels] raw layout the rest of the
// pipeline's file products use (channels is always 1 for a mask).
func Load(path string) (Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return Mask{}, fmt.Errorf("mask: could not open %s: %w", path, err)
	}
	defer f.Close()

	var hdr [3]int32
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		return Mask{}, fmt.Errorf("mask: could not read header: %w", err)
	}
	width, height, channels := int(hdr[0]), int(hdr[1]), int(hdr[2])
	if channels != 1 {
		return Mask{}, fmt.Errorf("mask: expected 1 channel, got %d", channels)
	}

	bits := make([]byte, width*height)
	if _, err := io.ReadFull(f, bits); err != nil {
		return Mask{}, fmt.Errorf("mask: could not read pixels: %w", err)
	}
	return Mask{Width: width, Height: height, Bits: bits}, nil
}

// Save writes m using the shared raw product layout.
func (m Mask) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mask: could not create %s: %w", path, err)
	}
	defer f.Close()

	hdr := [3]int32{int32(m.Width), int32(m.Height), 1}
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("mask: could not write header: %w", err)
	}
	if _, err := f.Write(m.Bits); err != nil {
		return fmt.Errorf("mask: could not write pixels: %w", err)
	}
	return nil
}
