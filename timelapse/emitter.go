/*
DESCRIPTION
  emitter.go writes the time-lapse still products (§6.3's TL/live row) once
  a Stacker's exposure window closes: the straight gain-normalised stack,
  the background-subtracted variant, and, once per schedule interval, the
  background model itself.

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

import (
	"fmt"
	"path/filepath"

	"github.com/ausocean/pigazing/frame"
	"github.com/ausocean/pigazing/product"
)

// Emitter writes the file products for a closed time-lapse exposure,
// grounded on tools.c's dump_frame_from_ints/dump_frame_from_int_subtraction
// and observe.c's scheduling of the companion skyBackground still.
type Emitter struct {
	root          string
	observatoryID string
	label         string
	width, height int
	channels      int
}

// NewEmitter constructs an Emitter. root is the configured OutputPath.
func NewEmitter(root, observatoryID, label string, g frame.Geometry) *Emitter {
	return &Emitter{root: root, observatoryID: observatoryID, label: label, width: g.Width, height: g.Height, channels: g.Channels}
}

// EmitExposure writes a closed exposure's straight and background-subtracted
// stacks (tags BS0.rgb and BS1.rgb). background, if non-nil, is the current
// background map (index 0) to subtract; if nil, only the straight stack is
// written.
func (em *Emitter) EmitExposure(s *Stacker, background []byte, targetBrightness int, prefix string) error {
	dir, err := product.Dir(em.root, "timelapse", em.label)
	if err != nil {
		return err
	}

	straight := s.Emit(targetBrightness)
	if err := em.writeStill(dir, prefix, "BS0", "pigazing:timelapse", straight, s.FrameCount()); err != nil {
		return err
	}
	if background == nil {
		return nil
	}
	subtracted := s.EmitSubtracted(background, targetBrightness)
	return em.writeStill(dir, prefix, "BS1", "pigazing:timelapse/backgroundSubtracted", subtracted, s.FrameCount())
}

// EmitBackground writes the current background map as a standalone
// diagnostic still (tag skyBackground.rgb), once per schedule interval per
// spec.md §4.7.
func (em *Emitter) EmitBackground(background []byte, prefix string) error {
	dir, err := product.Dir(em.root, "timelapse", em.label)
	if err != nil {
		return err
	}
	return em.writeStill(dir, prefix, "skyBackground", "pigazing:timelapse/backgroundModel", background, 0)
}

func (em *Emitter) writeStill(dir, prefix, tag, semanticType string, pixels []byte, stackedFrames int) error {
	base := fmt.Sprintf("%s_%s_%s", prefix, em.observatoryID, tag)
	if err := product.WriteRaw(filepath.Join(dir, base+".rgb"), em.width, em.height, em.channels, pixels); err != nil {
		return fmt.Errorf("timelapse: writing %s: %w", tag, err)
	}
	md := product.NewMetadata().
		String("semanticType", semanticType).
		Int("width", int64(em.width)).
		Int("height", int64(em.height)).
		Int("channels", int64(em.channels)).
		String("observatoryId", em.observatoryID).
		String("label", em.label)
	if stackedFrames > 0 {
		md = md.Int("stackedFrames", int64(stackedFrames))
	}
	if err := md.WriteFile(filepath.Join(dir, base+".txt")); err != nil {
		return fmt.Errorf("timelapse: writing %s metadata: %w", tag, err)
	}
	return nil
}
