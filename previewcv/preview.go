/*
DESCRIPTION
  preview.go declares the optional live-preview window API; see
  preview_withcv.go and preview_stub.go for the two build-tag-gated
  implementations.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package previewcv provides an optional, gocv-backed live display of the
// current frame and the motion detector's diagnostic planes, built only
// when the withcv build tag is set. Without that tag, Windows is a no-op
// stub so the rest of the module never needs to know whether OpenCV is
// available. Grounded on filter/debug.go and filter/release.go's
// build-tag split.
package previewcv

// Windows displays the current frame, and optionally a trigger.Diagnostic
// overlay, in one or more live windows. Show is called once per frame;
// Close releases any window resources and must be called when the
// observer loop exits.
type Windows interface {
	Show(width, height int, plane []byte, diagR, diagG, diagB []byte) error
	Close() error
}
