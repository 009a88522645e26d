/*
DESCRIPTION
  emitter.go implements the Clip Emitter and Still Emitter: opening
  diagnostic stills are written when an event is created, and once a
  confirmed event closes, its pre/post-roll clip frames and its stacked
  still composites are written to disk with typed metadata sidecars.

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

package event

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ausocean/pigazing/frame"
	"github.com/ausocean/pigazing/product"
)

// Emitter writes the clip and still file products for an Event (opening
// stills at creation, clip and closing stills once a confirmed event
// closes), grounded on observe.c's register_trigger_ends still
// dumps and tools.c's dump_video_frame clip writer.
type Emitter struct {
	root          string
	observatoryID string
	label         string
	width, height int
	channels      int
}

// NewEmitter constructs an Emitter. root is the configured OutputPath;
// observatoryID and label identify this camera in product filenames.
func NewEmitter(root, observatoryID, label string, g frame.Geometry) *Emitter {
	return &Emitter{root: root, observatoryID: observatoryID, label: label, width: g.Width, height: g.Height, channels: g.Channels}
}

// openingStillSemanticType maps each still written when an event is first
// created to its spec.md §6.3 semanticType.
var openingStillSemanticType = map[string]string{
	"mapDifference":     "pigazing:movingObject/mapDifference",
	"mapExcludedPixels": "pigazing:movingObject/mapExcludedPixels",
	"mapTrigger":        "pigazing:movingObject/mapTrigger",
	"triggerFrame":      "pigazing:movingObject/triggerFrame",
	"previousFrame":     "pigazing:movingObject/previousFrame",
}

// EmitOpeningStills writes the diagnostic stills captured at the moment an
// event is created (spec.md §4.6 step 3): the difference map, the
// excluded-pixel map, the trigger map, the triggering frame, and the
// previous frame. These are written unconditionally, whether or not the
// event ever confirms, matching observe.c's register_trigger.
func (em *Emitter) EmitOpeningStills(e *Event, mapDifference, mapExcludedPixels, mapTrigger, triggerFrame, previousFrame []byte) error {
	dir, err := product.Dir(em.root, "still", em.label)
	if err != nil {
		return err
	}
	// mapExcludedPixels and mapTrigger are the scanner's single-plane pixel
	// masks (one byte per pixel, independent of colour/greyscale imaging);
	// the rest carry the full analysis-channel count.
	type still struct {
		pixels   []byte
		channels int
	}
	planes := map[string]still{
		"mapDifference":     {mapDifference, em.channels},
		"mapExcludedPixels": {mapExcludedPixels, 1},
		"mapTrigger":        {mapTrigger, 1},
		"triggerFrame":      {triggerFrame, em.channels},
		"previousFrame":     {previousFrame, em.channels},
	}
	for kind, s := range planes {
		if s.pixels == nil {
			continue
		}
		if err := em.writeStillChannels(dir, e, kind, openingStillSemanticType[kind], s.pixels, s.channels); err != nil {
			return err
		}
	}
	return nil
}

// EmitClosingStills writes the three stacked composites emitted once an
// event closes (spec.md §4.6 close pass): the time-averaged brightness, the
// running-maximum brightness, and the per-pixel OR of every trigger-gate
// pass observed across the event's lifetime.
func (em *Emitter) EmitClosingStills(e *Event) error {
	dir, err := product.Dir(em.root, "still", em.label)
	if err != nil {
		return err
	}
	stills := map[string][]byte{
		"timeAverage":   e.TimeAverage(),
		"maxBrightness": e.MaxBrightness(),
		"allTriggers":   e.MaxTrigger(),
	}
	semanticTypes := map[string]string{
		"timeAverage":   "pigazing:movingObject/timeAverage",
		"maxBrightness": "pigazing:movingObject/maximumBrightness",
		"allTriggers":   "pigazing:movingObject/allTriggers",
	}
	for kind, pixels := range stills {
		if err := em.writeStill(dir, e, kind, semanticTypes[kind], pixels); err != nil {
			return err
		}
	}
	return nil
}

func (em *Emitter) writeStill(dir string, e *Event, kind, semanticType string, pixels []byte) error {
	return em.writeStillChannels(dir, e, kind, semanticType, pixels, em.channels)
}

func (em *Emitter) writeStillChannels(dir string, e *Event, kind, semanticType string, pixels []byte, channels int) error {
	name := fmt.Sprintf("%s_%s", em.fileBase(e), kind)
	if err := product.WriteRaw(filepath.Join(dir, name+".rgb"), em.width, em.height, channels, pixels); err != nil {
		return fmt.Errorf("event: emitting still %s: %w", kind, err)
	}
	md := product.NewMetadata().
		String("semanticType", semanticType).
		Int("width", int64(em.width)).
		Int("height", int64(em.height)).
		Int("channels", int64(channels)).
		String("observatoryId", em.observatoryID).
		String("label", em.label).
		Int("eventId", int64(e.ID)).
		Int("detectionCount", int64(len(e.Detections)))
	if err := md.WriteFile(filepath.Join(dir, name+".txt")); err != nil {
		return fmt.Errorf("event: writing still metadata %s: %w", kind, err)
	}
	return nil
}

// EmitClip writes a confirmed event's clip (pre-roll, the detection span,
// and post-roll) as a single .vid file per spec.md §6.3 — a
// [bufferLen:i32][width:i32][height:i32] header followed by the
// concatenated raw YUV420 frames — plus one metadata sidecar summarising
// the event's path, duration and brightness.
func (em *Emitter) EmitClip(e *Event, preRoll, detectionSpan, postRoll []frame.Frame) error {
	dir, err := product.Dir(em.root, "video_triggers", em.label)
	if err != nil {
		return err
	}
	base := em.fileBase(e)

	all := make([]frame.Frame, 0, len(preRoll)+len(detectionSpan)+len(postRoll))
	all = append(all, preRoll...)
	all = append(all, detectionSpan...)
	all = append(all, postRoll...)
	if err := writeClipFile(filepath.Join(dir, base+".vid"), all); err != nil {
		return fmt.Errorf("event: writing clip: %w", err)
	}

	var significance float64
	if len(e.Detections) > 0 {
		significance = e.Detections[0].Intensity
	}
	md := product.NewMetadata().
		String("semanticType", "pigazing:movingObject/video").
		Int("width", int64(em.width)).
		Int("height", int64(em.height)).
		String("observatoryId", em.observatoryID).
		String("label", em.label).
		Int("eventId", int64(e.ID)).
		Int("frameCount", int64(len(all))).
		Int("duration", e.Duration()).
		Int("detectionCount", int64(len(e.Detections))).
		Float("amplitudeTimeIntegrated", e.AmplitudeTimeIntegrated()).
		Float("amplitudePeak", e.AmplitudePeak()).
		Float("detectionSignificance", significance).
		Float("pathLength", e.PathLength()).
		String("path", pathString(e)).
		String("pathBezier", bezierControlPoints(e))
	return md.WriteFile(filepath.Join(dir, base+".txt"))
}

// writeClipFile writes frames to path as a .vid file: a
// [bufferLen][width][height] int32 header followed by each frame's raw
// YUV420 bytes, back to back.
func writeClipFile(path string, frames []frame.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()

	var width, height int32
	if len(frames) > 0 {
		width, height = int32(frames[0].Width), int32(frames[0].Height)
	}
	hdr := [3]int32{int32(len(frames)), width, height}
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("could not write header of %s: %w", path, err)
	}
	for i, fr := range frames {
		if _, err := f.Write(fr.Data); err != nil {
			return fmt.Errorf("could not write frame %d of %s: %w", i, path, err)
		}
	}
	return nil
}

func (em *Emitter) fileBase(e *Event) string {
	return fmt.Sprintf("%s_%s_%d", em.observatoryID, em.label, e.ID)
}

// pathString renders an event's detections as "x,y;x,y;...".
func pathString(e *Event) string {
	parts := make([]string, len(e.Detections))
	for i, d := range e.Detections {
		parts[i] = fmt.Sprintf("%.1f,%.1f", d.X, d.Y)
	}
	return strings.Join(parts, ";")
}

// bezierControlPoints approximates an event's path with a single quadratic
// Bezier curve whose three control points are its first, middle and last
// detections, a coarse but cheap stand-in for a least-squares fit: with
// at most a few dozen detections per event the curve only needs to convey
// the path's rough shape to a human reviewer. A single-detection event
// yields the same point three times.
func bezierControlPoints(e *Event) string {
	n := len(e.Detections)
	if n == 0 {
		return ""
	}
	p0 := e.Detections[0]
	p1 := e.Detections[(n-1)/2]
	p2 := e.Detections[n-1]
	return fmt.Sprintf("%.1f,%.1f;%.1f,%.1f;%.1f,%.1f",
		p0.X, p0.Y, p1.X, p1.Y, p2.X, p2.Y)
}
