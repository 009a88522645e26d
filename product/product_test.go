/*
DESCRIPTION
  product_test.go tests the raw pixel file writer/reader round-trip and
  the typed metadata sidecar builder/parser.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package product

import (
	"path/filepath"
	"testing"
)

func TestWriteReadRawRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rgb")
	pixels := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	if err := WriteRaw(path, 2, 2, 3, pixels); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	w, h, c, got, err := ReadRaw(path)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if w != 2 || h != 2 || c != 3 {
		t.Errorf("header = %dx%dx%d, want 2x2x3", w, h, c)
	}
	if len(got) != len(pixels) {
		t.Fatalf("pixel length = %d, want %d", len(got), len(pixels))
	}
	for i := range pixels {
		if got[i] != pixels[i] {
			t.Errorf("pixel %d = %d, want %d", i, got[i], pixels[i])
		}
	}
}

func TestWriteRawRejectsMismatchedLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.rgb")
	if err := WriteRaw(path, 2, 2, 3, []byte{1, 2, 3}); err == nil {
		t.Error("expected error for mismatched pixel length")
	}
}

func TestDirCreatesCategoryLabelPath(t *testing.T) {
	root := t.TempDir()
	dir, err := Dir(root, "still", "cam1")
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	want := filepath.Join(root, "analysis_products", "still_cam1")
	if dir != want {
		t.Errorf("Dir() = %s, want %s", dir, want)
	}
}

func TestMetadataWriteAndReadFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.txt")

	err := NewMetadata().
		String("semanticType", "pigazing:timelapse").
		Int("width", 1920).
		Float("amplitudePeak", 3.5).
		WriteFile(path)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fields, err := ReadMetadataFile(path)
	if err != nil {
		t.Fatalf("ReadMetadataFile: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("len(fields) = %d, want 3", len(fields))
	}
	if fields[0].Key != "semanticType" || fields[0].Value != "pigazing:timelapse" {
		t.Errorf("fields[0] = %+v, want semanticType/pigazing:timelapse", fields[0])
	}
	width, err := fields[1].Int()
	if err != nil || width != 1920 {
		t.Errorf("fields[1].Int() = %d, %v, want 1920, nil", width, err)
	}
	peak, err := fields[2].Float()
	if err != nil || peak != 3.5 {
		t.Errorf("fields[2].Float() = %v, %v, want 3.5, nil", peak, err)
	}
}
