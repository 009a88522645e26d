/*
DESCRIPTION
  frame.go defines the planar YUV420 frame type shared by every stage of the
  observing pipeline, from frame intake through to clip and still emission.

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

// Package frame provides the Frame type used to move raw video data through
// the observing pipeline, along with the greyscale/colour channel-count
// convention used by every downstream component.
package frame

import "fmt"

// Size reports the number of bytes a single planar YUV420 frame occupies for
// the given pixel dimensions. The Y plane is one byte per pixel; the
// subsampled U and V planes are a quarter of a pixel each, for 1.5
// bytes-per-pixel overall.
func Size(width, height int) int {
	return width * height * 3 / 2
}

// Frame is one planar YUV420 image with its capture timestamp. Geometry
// holds Data for exactly Size(Width, Height) bytes; callers must not resize
// Data independently of Geometry.
type Frame struct {
	Geometry
	// UTC is the capture time of this frame, in UTC seconds since the Unix
	// epoch, as supplied by the Source that produced it.
	UTC float64
	// Data is the raw planar YUV420 bytes: Width*Height luma bytes followed
	// by the subsampled U and V planes.
	Data []byte
}

// Geometry is the fixed pixel dimensions and channel convention shared by a
// Frame and every per-pixel map derived from it (background maps, time-lapse
// accumulators, trigger maps, and so on).
type Geometry struct {
	Width, Height int
	// Channels is 1 for greyscale imaging (only the Y plane is used for
	// analysis and products) or 3 for colour imaging (analysis and products
	// operate on a full RGB reconstruction). Every per-pixel map in this
	// module is length Width*Height*Channels unless stated otherwise.
	Channels int
}

// PixelCount is Width*Height, the number of pixels in one channel plane.
func (g Geometry) PixelCount() int { return g.Width * g.Height }

// PlaneSize is PixelCount()*Channels, the length of a per-pixel map with one
// value per channel per pixel.
func (g Geometry) PlaneSize() int { return g.PixelCount() * g.Channels }

// New allocates a Frame with a zeroed Data buffer sized for g.
func New(g Geometry, utc float64) Frame {
	return Frame{Geometry: g, UTC: utc, Data: make([]byte, Size(g.Width, g.Height))}
}

// Luma returns the Y-plane bytes of f: one byte per pixel, row-major.
func (f Frame) Luma() []byte {
	return f.Data[:f.Width*f.Height]
}

// Validate reports an error if f.Data is not sized for f.Geometry.
func (f Frame) Validate() error {
	want := Size(f.Width, f.Height)
	if len(f.Data) != want {
		return fmt.Errorf("frame: data is %d bytes, want %d for %dx%d", len(f.Data), want, f.Width, f.Height)
	}
	return nil
}

// Plane extracts one analysis channel-plane from a YUV420 frame as a
// Width*Height byte slice: for greyscale imaging this is simply the Y plane;
// for colour imaging, channel c in [0,3) is the reconstructed R, G or B
// plane. dst must be Width*Height bytes and is overwritten in place.
func (f Frame) Plane(c int, channels int, dst []byte) {
	if channels == 1 {
		copy(dst, f.Luma())
		return
	}
	yuv420ToRGBChannel(f.Data, f.Width, f.Height, c, dst)
}

// AnalysisPlane fills dst (which must be PlaneSize() bytes) with every
// analysis channel-plane concatenated: the single Y plane for greyscale
// imaging, or the R, G and B planes back-to-back for colour imaging. This
// is the layout every per-pixel map in the background, time-lapse and
// trigger packages operates on.
func (f Frame) AnalysisPlane(channels int, dst []byte) {
	px := f.Width * f.Height
	for c := 0; c < channels; c++ {
		f.Plane(c, channels, dst[c*px:(c+1)*px])
	}
}

// yuv420ToRGBChannel reconstructs channel c (0=R, 1=G, 2=B) of a planar
// YUV420 image into dst, using the standard BT.601 integer conversion.
// Grounded on the Y/U/V to R/G/B reconstruction observe.c performs via
// Pyuv420torgb before histogram/trigger analysis in colour mode.
func yuv420ToRGBChannel(data []byte, width, height, c int, dst []byte) {
	frameSize := width * height
	y := data[:frameSize]
	u := data[frameSize : frameSize+frameSize/4]
	v := data[frameSize+frameSize/4:]

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			o := row*width + col
			cu := int(u[(row/2)*(width/2)+col/2]) - 128
			cv := int(v[(row/2)*(width/2)+col/2]) - 128
			yy := int(y[o])
			var val int
			switch c {
			case 0:
				val = yy + (91881*cv)>>16
			case 1:
				val = yy - (22554*cu+46802*cv)>>16
			case 2:
				val = yy + (116130*cu)>>16
			}
			dst[o] = clip8(val)
		}
	}
}

func clip8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
