/*
DESCRIPTION
  frame_test.go tests the Frame/Geometry helpers, in particular the YUV420
  to RGB channel reconstruction used for colour-mode analysis.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import "testing"

func TestSize(t *testing.T) {
	if got, want := Size(4, 2), 12; got != want {
		t.Errorf("Size(4,2) = %d, want %d", got, want)
	}
}

func TestValidate(t *testing.T) {
	g := Geometry{Width: 4, Height: 2}
	f := New(g, 0)
	if err := f.Validate(); err != nil {
		t.Errorf("unexpected error for freshly allocated frame: %v", err)
	}

	f.Data = f.Data[:len(f.Data)-1]
	if err := f.Validate(); err == nil {
		t.Error("expected error for truncated frame data")
	}
}

func TestLuma(t *testing.T) {
	g := Geometry{Width: 2, Height: 2}
	f := New(g, 0)
	for i := range f.Data {
		f.Data[i] = byte(i + 1)
	}
	luma := f.Luma()
	if len(luma) != 4 {
		t.Fatalf("Luma() length = %d, want 4", len(luma))
	}
	for i, v := range luma {
		if v != byte(i+1) {
			t.Errorf("Luma()[%d] = %d, want %d", i, v, i+1)
		}
	}
}

func TestPlaneGreyscale(t *testing.T) {
	g := Geometry{Width: 2, Height: 2}
	f := New(g, 0)
	copy(f.Data, []byte{10, 20, 30, 40})

	dst := make([]byte, 4)
	f.Plane(0, 1, dst)
	for i, v := range dst {
		if v != f.Data[i] {
			t.Errorf("Plane greyscale [%d] = %d, want %d", i, v, f.Data[i])
		}
	}
}

func TestPlaneColourNeutral(t *testing.T) {
	// Neutral chroma (u=v=128) with a flat luma of 100 should reconstruct
	// to R=G=B=100 for every pixel.
	g := Geometry{Width: 2, Height: 2}
	f := New(g, 0)
	y := []byte{100, 100, 100, 100}
	u := []byte{128}
	v := []byte{128}
	copy(f.Data, y)
	copy(f.Data[4:], u)
	copy(f.Data[5:], v)

	dst := make([]byte, 4)
	for c := 0; c < 3; c++ {
		f.Plane(c, 3, dst)
		for i, val := range dst {
			if val != 100 {
				t.Errorf("channel %d pixel %d = %d, want 100 for neutral chroma", c, i, val)
			}
		}
	}
}

func TestAnalysisPlaneLayout(t *testing.T) {
	g := Geometry{Width: 2, Height: 2, Channels: 1}
	f := New(g, 0)
	copy(f.Data, []byte{1, 2, 3, 4})

	dst := make([]byte, g.PlaneSize())
	f.AnalysisPlane(1, dst)
	if got, want := dst, f.Luma(); string(got) != string(want) {
		t.Errorf("greyscale AnalysisPlane = %v, want %v", got, want)
	}
}

func TestClip8(t *testing.T) {
	cases := []struct {
		in   int
		want byte
	}{
		{-10, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{300, 255},
	}
	for _, c := range cases {
		if got := clip8(c.in); got != c.want {
			t.Errorf("clip8(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
