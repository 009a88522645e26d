/*
DESCRIPTION
  file.go implements a Source that replays a recorded raw YUV420 stream
  from disk, looping back to the start on EOF.

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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ausocean/pigazing/frame"
	"github.com/ausocean/utils/logging"
)

// File is a Source that reads a flat sequence of fixed-size planar YUV420
// frames from disk, looping back to the beginning once exhausted.
// Grounded on device/file/file.go's seek-to-zero-on-EOF loop behaviour.
type File struct {
	Logger logging.Logger

	path string
	geom frame.Geometry
	fps  float64

	f         *os.File
	frameSize int
	idx       int64
	started   time.Time
}

// NewFile constructs a File source that reads path as a sequence of
// geom-sized planar YUV420 frames, pacing Fetch to roughly fps frames per
// second so a recorded file behaves like a live capture to the rest of the
// pipeline.
func NewFile(l logging.Logger, path string, geom frame.Geometry, fps float64) *File {
	return &File{Logger: l, path: path, geom: geom, fps: fps, frameSize: frame.Size(geom.Width, geom.Height)}
}

// Start opens the underlying file.
func (s *File) Start() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("source: could not open %s: %w", s.path, err)
	}
	s.f = f
	s.idx = 0
	s.started = time.Now()
	s.Logger.Info("file source started", "path", s.path)
	return nil
}

// Fetch reads the next frame, looping back to the start of the file on
// EOF, and sleeps as needed so frames are returned no faster than fps.
func (s *File) Fetch() (frame.Frame, error) {
	buf := make([]byte, s.frameSize)
	_, err := io.ReadFull(s.f, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		s.Logger.Info("file source looping", "path", s.path)
		if err := s.Rewind(); err != nil {
			return frame.Frame{}, err
		}
		_, err = io.ReadFull(s.f, buf)
	}
	if err != nil {
		return frame.Frame{}, fmt.Errorf("source: reading %s: %w", s.path, err)
	}

	due := s.started.Add(time.Duration(float64(s.idx) / s.fps * float64(time.Second)))
	if wait := time.Until(due); wait > 0 {
		time.Sleep(wait)
	}
	s.idx++
	return frame.Frame{Geometry: s.geom, UTC: float64(time.Now().Unix()), Data: buf}, nil
}

// Rewind seeks back to the start of the file and restarts the pacing clock.
func (s *File) Rewind() error {
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("source: rewinding %s: %w", s.path, err)
	}
	s.idx = 0
	s.started = time.Now()
	return nil
}

// Stop closes the underlying file.
func (s *File) Stop() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
