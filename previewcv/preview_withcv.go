//go:build withcv
// +build withcv

/*
DESCRIPTION
  preview_withcv.go implements Windows using gocv, displaying the current
  frame and the motion detector's diagnostic planes as live OpenCV
  windows.

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

import (
	"fmt"

	"gocv.io/x/gocv"
)

type windows struct {
	frame      *gocv.Window
	diagnostic *gocv.Window
}

// New opens the live preview windows.
func New() Windows {
	return &windows{
		frame:      gocv.NewWindow("skywatch: frame"),
		diagnostic: gocv.NewWindow("skywatch: trigger diagnostic"),
	}
}

// Show renders plane as a greyscale frame, and diagR/diagG/diagB (if
// non-nil) as a false-colour diagnostic overlay from trigger.Diagnostic.
func (w *windows) Show(width, height int, plane []byte, diagR, diagG, diagB []byte) error {
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, plane)
	if err != nil {
		return fmt.Errorf("previewcv: could not build frame mat: %w", err)
	}
	defer mat.Close()
	w.frame.IMShow(mat)

	if diagR == nil {
		gocv.WaitKey(1)
		return nil
	}
	diag, err := mergeChannels(width, height, diagR, diagG, diagB)
	if err != nil {
		return err
	}
	defer diag.Close()
	w.diagnostic.IMShow(diag)
	gocv.WaitKey(1)
	return nil
}

func mergeChannels(width, height int, r, g, b []byte) (gocv.Mat, error) {
	rm, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, r)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("previewcv: could not build R mat: %w", err)
	}
	defer rm.Close()
	gm, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, g)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("previewcv: could not build G mat: %w", err)
	}
	defer gm.Close()
	bm, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, b)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("previewcv: could not build B mat: %w", err)
	}
	defer bm.Close()

	out := gocv.NewMat()
	gocv.Merge([]gocv.Mat{bm, gm, rm}, &out)
	return out, nil
}

// Close frees the preview windows.
func (w *windows) Close() error {
	w.frame.Close()
	w.diagnostic.Close()
	return nil
}
