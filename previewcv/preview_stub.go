//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  preview_stub.go is the no-op Windows implementation used when the module
  is built without the withcv tag (i.e. without an OpenCV installation
  available).

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package previewcv

type windows struct{}

// New returns a Windows whose Show and Close are both no-ops.
func New() Windows { return windows{} }

func (windows) Show(width, height int, plane []byte, diagR, diagG, diagB []byte) error { return nil }
func (windows) Close() error                                                           { return nil }
