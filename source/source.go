/*
DESCRIPTION
  source.go defines the Source interface the observer loop pulls frames
  from, per spec.md §6.1.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package source implements Source providers: a looping recorded
// file, grounded on device/file, and a libcamera/raspivid process capture,
// grounded on device/raspivid.
package source

import (
	"github.com/ausocean/pigazing/frame"
)

// Source produces a continuous stream of frames for the observer loop to
// analyse. Fetch blocks until the next frame is available, or returns an
// error if capture has failed. Rewind is used by recorded-file sources to
// loop; live sources may implement it as a no-op.
type Source interface {
	// Start begins capture; it must be called before the first Fetch.
	Start() error
	// Fetch blocks until the next frame is available.
	Fetch() (frame.Frame, error)
	// Rewind restarts capture from the beginning, for sources that play
	// back a finite recording.
	Rewind() error
	// Stop ends capture and releases any underlying resources.
	Stop() error
}
