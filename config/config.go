/*
DESCRIPTION
  config.go defines the Config struct holding every tunable named in
  spec.md §6.4, along with field-level defaulting and validation in the
  style of revid/config.

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

// Package config provides the Config struct used to parameterise every
// component of the observing pipeline (ring buffer length, trigger
// thresholds, time-lapse schedule, background-model window, and so on).
// Reading configuration from flags, environment variables, or a remote
// control-plane is an external collaborator (spec.md §1) and out of scope;
// this package defines the struct, its defaults, and validation only.
package config

import (
	"github.com/ausocean/utils/logging"
)

// Config field name constants, used for defaulting log messages and by any
// external loader that maps string keys onto Config fields.
const (
	KeyWidth                        = "Width"
	KeyHeight                       = "Height"
	KeyFPS                          = "FPS"
	KeyGreyscaleImaging             = "GreyscaleImaging"
	KeyObservatoryID                = "ObservatoryID"
	KeyLabel                        = "Label"
	KeyOutputPath                   = "OutputPath"
	KeyStackComparisonInterval      = "StackComparisonInterval"
	KeyTriggerPrefixTime            = "TriggerPrefixTime"
	KeyTriggerSuffixTime            = "TriggerSuffixTime"
	KeyTriggerMaxDuration           = "TriggerMaxDuration"
	KeyTriggerFramegroup            = "TriggerFramegroup"
	KeyTriggerThrottlePeriod        = "TriggerThrottlePeriod"
	KeyTriggerThrottleMaxEvents     = "TriggerThrottleMaxEvents"
	KeyTimelapseExposure            = "TimelapseExposure"
	KeyTimelapseInterval            = "TimelapseInterval"
	KeyStackTargetBrightness        = "StackTargetBrightness"
	KeyBackgroundMapFrames          = "BackgroundMapFrames"
	KeyBackgroundMapSamples         = "BackgroundMapSamples"
	KeyBackgroundMapReductionCycles = "BackgroundMapReductionCycles"
	KeyVideoBufferLen               = "VideoBufferLen"
)

// Defaults, used whenever a Config field is zero or otherwise invalid.
const (
	DefaultStackComparisonInterval      = 1
	DefaultTriggerPrefixTime            = 2.0
	DefaultTriggerSuffixTime            = 2.0
	DefaultTriggerMaxDuration           = 60.0
	DefaultTriggerFramegroup            = 16
	DefaultTriggerThrottlePeriod        = 1.0
	DefaultTriggerThrottleMaxEvents     = 10
	DefaultTimelapseExposure            = 4.0
	DefaultTimelapseInterval            = 60.0
	DefaultStackTargetBrightness        = 128
	DefaultBackgroundMapFrames          = 1000
	DefaultBackgroundMapSamples         = 3
	DefaultBackgroundMapReductionCycles = 32
	DefaultVideoBufferLen               = 2.5
)

// Config carries every tunable of the observing pipeline. A caller
// constructs one, calls Validate to apply defaults, and passes it to
// observer.New.
type Config struct {
	// Logger receives structured log messages from every pipeline
	// component. Required: a nil Logger will panic the first time any
	// component attempts to log.
	Logger logging.Logger

	// Frame geometry and rate.
	Width, Height int
	FPS           float64

	// GreyscaleImaging selects the analysis/product channel count: true
	// for 1 (luma only), false for 3 (reconstructed RGB).
	GreyscaleImaging bool

	// ObservatoryID and Label identify this camera in product filenames
	// and metadata (spec.md §6.3).
	ObservatoryID string
	Label         string

	// OutputPath is the root directory under which
	// analysis_products/<category>_<label>/ directories are created.
	OutputPath string

	// StackComparisonInterval is the frame lag between the two frames the
	// motion detector compares (spec.md §6.4).
	StackComparisonInterval int

	// TriggerPrefixTime and TriggerSuffixTime are the pre/post-roll
	// durations captured around an event, in seconds.
	TriggerPrefixTime float64
	TriggerSuffixTime float64

	// TriggerMaxDuration is the hard cap on event duration, in seconds.
	TriggerMaxDuration float64

	// TriggerFramegroup bounds how many clip frames are flushed per
	// observer iteration.
	TriggerFramegroup int

	// TriggerThrottlePeriod is the rolling throttle window, in minutes.
	TriggerThrottlePeriod float64
	// TriggerThrottleMaxEvents is the max confirmed events per window.
	TriggerThrottleMaxEvents int

	// TimelapseExposure is the integration time of each time-lapse frame,
	// in seconds; TimelapseInterval is the period between time-lapse
	// starts, in seconds.
	TimelapseExposure float64
	TimelapseInterval float64

	// StackTargetBrightness is the target per-channel mean for
	// gain-normalised time-lapse output, 0-255.
	StackTargetBrightness int

	// BackgroundMapFrames is the accumulation window, in frames, before a
	// reduction cycle begins. BackgroundMapSamples is the number of past
	// background maps retained. BackgroundMapReductionCycles is the number
	// of chunks one reduction is spread across.
	BackgroundMapFrames          int
	BackgroundMapSamples         int
	BackgroundMapReductionCycles int

	// VideoBufferLen is the length of the ring video buffer, in seconds.
	VideoBufferLen float64
}

// Channels returns 1 for greyscale imaging or 3 for colour imaging.
func (c Config) Channels() int {
	if c.GreyscaleImaging {
		return 1
	}
	return 3
}

// RingFrames returns the ring video buffer length in frames (F_ring).
func (c Config) RingFrames() int {
	return int(c.VideoBufferLen * c.FPS)
}

// LogInvalidField logs, at Warning level, that the named field was unset or
// invalid and that def is being substituted, matching the idiom used
// throughout revid/config.
func (c Config) LogInvalidField(name string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Warning(name+" bad or unset, defaulting", name, def)
}

// Validate fills in defaults for the zero/invalid tuning fields it checks
// and returns the number of fields defaulted; it never returns an error.
// Width, Height, FPS, GreyscaleImaging, ObservatoryID, Label, OutputPath
// and Logger are neither checked nor defaulted here.
func (c *Config) Validate() int {
	n := 0
	set := func(ok bool, name string, def interface{}, apply func()) {
		if ok {
			return
		}
		c.LogInvalidField(name, def)
		apply()
		n++
	}

	set(c.StackComparisonInterval > 0, KeyStackComparisonInterval, DefaultStackComparisonInterval,
		func() { c.StackComparisonInterval = DefaultStackComparisonInterval })
	set(c.TriggerPrefixTime > 0, KeyTriggerPrefixTime, DefaultTriggerPrefixTime,
		func() { c.TriggerPrefixTime = DefaultTriggerPrefixTime })
	set(c.TriggerSuffixTime > 0, KeyTriggerSuffixTime, DefaultTriggerSuffixTime,
		func() { c.TriggerSuffixTime = DefaultTriggerSuffixTime })
	set(c.TriggerMaxDuration > 0, KeyTriggerMaxDuration, DefaultTriggerMaxDuration,
		func() { c.TriggerMaxDuration = DefaultTriggerMaxDuration })
	set(c.TriggerFramegroup > 0, KeyTriggerFramegroup, DefaultTriggerFramegroup,
		func() { c.TriggerFramegroup = DefaultTriggerFramegroup })
	set(c.TriggerThrottlePeriod > 0, KeyTriggerThrottlePeriod, DefaultTriggerThrottlePeriod,
		func() { c.TriggerThrottlePeriod = DefaultTriggerThrottlePeriod })
	set(c.TriggerThrottleMaxEvents > 0, KeyTriggerThrottleMaxEvents, DefaultTriggerThrottleMaxEvents,
		func() { c.TriggerThrottleMaxEvents = DefaultTriggerThrottleMaxEvents })
	set(c.TimelapseExposure > 0, KeyTimelapseExposure, DefaultTimelapseExposure,
		func() { c.TimelapseExposure = DefaultTimelapseExposure })
	set(c.TimelapseInterval > 0, KeyTimelapseInterval, DefaultTimelapseInterval,
		func() { c.TimelapseInterval = DefaultTimelapseInterval })
	set(c.StackTargetBrightness > 0, KeyStackTargetBrightness, DefaultStackTargetBrightness,
		func() { c.StackTargetBrightness = DefaultStackTargetBrightness })
	set(c.BackgroundMapFrames > 0, KeyBackgroundMapFrames, DefaultBackgroundMapFrames,
		func() { c.BackgroundMapFrames = DefaultBackgroundMapFrames })
	set(c.BackgroundMapSamples > 0, KeyBackgroundMapSamples, DefaultBackgroundMapSamples,
		func() { c.BackgroundMapSamples = DefaultBackgroundMapSamples })
	set(c.BackgroundMapReductionCycles > 0, KeyBackgroundMapReductionCycles, DefaultBackgroundMapReductionCycles,
		func() { c.BackgroundMapReductionCycles = DefaultBackgroundMapReductionCycles })
	set(c.VideoBufferLen > 0, KeyVideoBufferLen, DefaultVideoBufferLen,
		func() { c.VideoBufferLen = DefaultVideoBufferLen })

	return n
}
