/*
DESCRIPTION
  skywatch is a standalone night-sky observing daemon: it reads frames from
  a configured source, runs them through the observing pipeline, and writes
  clip/still/time-lapse products to disk.

AUTHORS
  Priya Natarajan <priya@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main is the skywatch observing daemon's entry point.
package main

import (
	"flag"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/pigazing/config"
	"github.com/ausocean/pigazing/frame"
	"github.com/ausocean/pigazing/mask"
	"github.com/ausocean/pigazing/observer"
	"github.com/ausocean/pigazing/previewcv"
	"github.com/ausocean/pigazing/source"
	"github.com/ausocean/utils/logging"
)

// Logging configuration, per cmd/rv's convention.
const (
	logPath      = "/var/log/skywatch/skywatch.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

const pkg = "skywatch: "

func main() {
	var (
		width             = flag.Int("width", 1280, "frame width in pixels")
		height            = flag.Int("height", 720, "frame height in pixels")
		fps               = flag.Float64("fps", 25, "capture frame rate")
		greyscale         = flag.Bool("greyscale", true, "analyse and emit products in greyscale rather than colour")
		observatoryID     = flag.String("observatory", "obs0", "observatory identifier used in product filenames")
		label             = flag.String("label", "cam0", "camera label used in product filenames")
		outputPath        = flag.String("output", "/var/lib/skywatch", "root directory for analysis_products output")
		inputFile         = flag.String("input-file", "", "replay a recorded raw YUV420 stream from this path instead of capturing live")
		maskPath          = flag.String("mask", "", "raw mask file excluding pixels from analysis (default: all pixels enabled)")
		preview           = flag.Bool("preview", false, "show a live preview window (requires a withcv build)")
		videoBufferLen    = flag.Float64("video-buffer", config.DefaultVideoBufferLen, "ring video buffer length, in seconds")
		stackCompInterval = flag.Int("stack-comparison-interval", config.DefaultStackComparisonInterval, "frame lag between the two frames compared for motion")
	)
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting skywatch")

	cfg := config.Config{
		Logger:                  log,
		Width:                   *width,
		Height:                  *height,
		FPS:                     *fps,
		GreyscaleImaging:        *greyscale,
		ObservatoryID:           *observatoryID,
		Label:                   *label,
		OutputPath:              *outputPath,
		StackComparisonInterval: *stackCompInterval,
		VideoBufferLen:          *videoBufferLen,
	}
	if n := cfg.Validate(); n > 0 {
		log.Info("defaulted config fields", "count", n)
	}

	geom := frame.Geometry{Width: cfg.Width, Height: cfg.Height, Channels: cfg.Channels()}

	var m *mask.Mask
	if *maskPath != "" {
		loaded, err := mask.Load(*maskPath)
		if err != nil {
			log.Fatal(pkg+"could not load mask", "error", err.Error())
		}
		m = &loaded
	}

	var src source.Source
	if *inputFile != "" {
		src = source.NewFile(log, *inputFile, geom, cfg.FPS)
	} else {
		src = source.NewRaspivid(log, geom, cfg.FPS)
	}

	loop, err := observer.New(cfg, src, m)
	if err != nil {
		log.Fatal(pkg+"could not initialise observer", "error", err.Error())
	}
	if *preview {
		loop.SetPreview(previewcv.New())
	}

	if err := loop.Run(); err != nil {
		log.Fatal(pkg+"observer loop exited", "error", err.Error())
	}
}
