/*
DESCRIPTION
  product.go writes the raw pixel file products (stills, clip frames, and
  diagnostic maps) that the pipeline emits, in the shared
  [width][height][channels][pixels] layout used throughout spec.md §6.3.

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

// Package product writes the pipeline's file products: raw still images,
// clip frame sequences, and their typed metadata sidecars, laid out under
// <OutputPath>/analysis_products/<category>_<label>/ per spec.md §6.3.
package product

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dir returns the directory a product category/label pair is written
// under, creating it if necessary.
func Dir(root, category, label string) (string, error) {
	dir := filepath.Join(root, "analysis_products", category+"_"+label)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return "", fmt.Errorf("product: could not create %s: %w", dir, err)
	}
	return dir, nil
}

// WriteRaw writes pixels (width*height*channels bytes) to path in the
// shared raw layout: a little-endian int32 width, height and channel
// count, followed by the pixel bytes.
func WriteRaw(path string, width, height, channels int, pixels []byte) error {
	want := width * height * channels
	if len(pixels) != want {
		return fmt.Errorf("product: %s: %d pixel bytes, want %d for %dx%dx%d", path, len(pixels), want, width, height, channels)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("product: could not create %s: %w", path, err)
	}
	defer f.Close()

	hdr := [3]int32{int32(width), int32(height), int32(channels)}
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("product: could not write header for %s: %w", path, err)
	}
	if _, err := f.Write(pixels); err != nil {
		return fmt.Errorf("product: could not write pixels for %s: %w", path, err)
	}
	return nil
}

// ReadRaw reads a file previously written with WriteRaw.
func ReadRaw(path string) (width, height, channels int, pixels []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, 0, nil, fmt.Errorf("product: could not open %s: %w", path, err)
	}
	defer f.Close()

	var hdr [3]int32
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		return 0, 0, 0, nil, fmt.Errorf("product: could not read header of %s: %w", path, err)
	}
	width, height, channels = int(hdr[0]), int(hdr[1]), int(hdr[2])
	pixels = make([]byte, width*height*channels)
	if _, err := io.ReadFull(f, pixels); err != nil {
		return 0, 0, 0, nil, fmt.Errorf("product: could not read pixels of %s: %w", path, err)
	}
	return width, height, channels, pixels, nil
}
