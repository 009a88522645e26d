/*
DESCRIPTION
  raspivid.go implements a Source that captures a raw planar YUV420 stream
  from a Raspberry Pi camera via an exec'd capture process.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package source

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"

	"github.com/ausocean/pigazing/frame"
	"github.com/ausocean/utils/logging"
)

// raspividCmd is the capture binary invoked; it is a var rather than a
// const so tests can point it at a stub executable, matching
// device/raspivid.go's errBad*/configurability pattern.
var raspividCmd = "libcamera-vid"

// Raspivid is a Source backed by an exec'd libcamera-vid/raspivid process
// emitting raw planar YUV420 frames on stdout. Grounded on
// device/raspivid/raspivid.go's os/exec-based capture.
type Raspivid struct {
	Logger logging.Logger

	geom frame.Geometry
	fps  float64

	cmd       *exec.Cmd
	stdout    io.ReadCloser
	reader    *bufio.Reader
	frameSize int
}

// NewRaspivid constructs a Raspivid source for the given geometry and
// frame rate.
func NewRaspivid(l logging.Logger, geom frame.Geometry, fps float64) *Raspivid {
	return &Raspivid{Logger: l, geom: geom, fps: fps, frameSize: frame.Size(geom.Width, geom.Height)}
}

// Start launches the capture process.
func (s *Raspivid) Start() error {
	args := []string{
		"--timeout", "0",
		"--width", strconv.Itoa(s.geom.Width),
		"--height", strconv.Itoa(s.geom.Height),
		"--framerate", strconv.FormatFloat(s.fps, 'f', -1, 64),
		"--codec", "yuv420",
		"--output", "-",
	}
	cmd := exec.Command(raspividCmd, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("source: raspivid stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("source: starting %s: %w", raspividCmd, err)
	}
	s.cmd = cmd
	s.stdout = stdout
	s.reader = bufio.NewReaderSize(stdout, s.frameSize)
	s.Logger.Info("raspivid source started", "width", s.geom.Width, "height", s.geom.Height, "fps", s.fps)
	return nil
}

// Fetch reads the next frame from the capture process's stdout.
func (s *Raspivid) Fetch() (frame.Frame, error) {
	buf := make([]byte, s.frameSize)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		return frame.Frame{}, fmt.Errorf("source: reading raspivid stream: %w", err)
	}
	return frame.Frame{Geometry: s.geom, UTC: float64(time.Now().Unix()), Data: buf}, nil
}

// Rewind is a no-op for a live capture and always succeeds.
func (s *Raspivid) Rewind() error {
	return nil
}

// Stop terminates the capture process.
func (s *Raspivid) Stop() error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	if err := s.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("source: stopping raspivid: %w", err)
	}
	return s.cmd.Wait()
}
