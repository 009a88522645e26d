/*
DESCRIPTION
  observer.go wires the ring buffer, background model, noise estimator,
  time-lapse stacker, motion detector and event tracker together into the
  single per-frame procedure that runs for as long as the pipeline is
  observing.

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

// Package observer implements the Observer Loop (spec.md component N):
// the per-frame procedure that feeds a Source's frames through the
// background model, noise estimator, time-lapse stacker and motion
// detector, and drives the event tracker's association, confirmation and
// emission logic. Grounded on observe.c's observe() main loop.
package observer

import (
	"fmt"
	"math"
	"time"

	"github.com/ausocean/pigazing/background"
	"github.com/ausocean/pigazing/config"
	"github.com/ausocean/pigazing/event"
	"github.com/ausocean/pigazing/frame"
	"github.com/ausocean/pigazing/mask"
	"github.com/ausocean/pigazing/previewcv"
	"github.com/ausocean/pigazing/ring"
	"github.com/ausocean/pigazing/source"
	"github.com/ausocean/pigazing/timelapse"
	"github.com/ausocean/pigazing/trigger"
)

// runInExtraFrames is added to BackgroundMapFrames to form the total
// run-in period before trigger scanning begins, grounded on observe.c's
// "100 + BACKGROUND_MAP_FRAMES" countdown: the extra frames give the
// noise estimator a first full cycle in addition to the background
// model's first histogram window.
const runInExtraFrames = 100

// Loop is the running observer: one Loop instance corresponds to one
// camera's worth of continuous observation.
type Loop struct {
	cfg  config.Config
	src  source.Source
	mask *mask.Mask
	geom frame.Geometry

	ring      *ring.Buffer
	bg        *background.Model
	noise     *background.NoiseEstimator
	ts        *timelapse.Stacker
	tsEmitter *timelapse.Emitter
	scanner   *trigger.Scanner
	past      *trigger.PastTriggerMap
	tracker   *event.Tracker
	throttle  *event.Throttle
	emitter   *event.Emitter

	plane          []byte
	runInCountdown int64
	frameIndex     int64
	nextTLStart    float64
	tlActive       bool

	prevPlane []byte

	preview previewcv.Windows
}

// SetPreview attaches a live preview: Run will call w.Show once per frame
// and w.Close when it returns. Pass nil (the default) to disable preview
// entirely, which is also what happens automatically when the module is
// built without the withcv tag, since previewcv.New then returns a no-op.
func (l *Loop) SetPreview(w previewcv.Windows) { l.preview = w }

// New constructs a Loop from a validated config, a frame source and an
// optional mask (nil selects an all-enabled mask).
func New(cfg config.Config, src source.Source, m *mask.Mask) (*Loop, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("observer: Config.Logger must not be nil")
	}
	geom := frame.Geometry{Width: cfg.Width, Height: cfg.Height, Channels: cfg.Channels()}
	planeSize := geom.PlaneSize()

	rb, err := ring.New(cfg.RingFrames(), geom)
	if err != nil {
		return nil, err
	}
	bg, err := background.New(geom, cfg.BackgroundMapFrames, cfg.BackgroundMapReductionCycles, cfg.BackgroundMapSamples)
	if err != nil {
		return nil, err
	}
	noise, err := background.NewNoiseEstimator(planeSize)
	if err != nil {
		return nil, err
	}
	exposureFrames := int(cfg.TimelapseExposure * cfg.FPS)
	ts, err := timelapse.New(planeSize, exposureFrames)
	if err != nil {
		return nil, err
	}
	// Motion detection scans a single analysis channel regardless of
	// GreyscaleImaging (see step's scanner.Scan call); the block
	// qualification thresholds are derived from the noise estimate at scan
	// time, not fixed at construction.
	scanner, err := trigger.New(geom, trigger.DefaultMaxBlocks)
	if err != nil {
		return nil, err
	}
	maxDurationFrames := int64(cfg.TriggerMaxDuration * cfg.FPS)
	timeoutFrames := int64(cfg.TriggerSuffixTime * cfg.FPS)
	if timeoutFrames < 1 {
		timeoutFrames = 1
	}

	if m == nil {
		am := mask.AllOnes(geom.Width, geom.Height)
		m = &am
	}

	return &Loop{
		cfg:            cfg,
		src:            src,
		mask:           m,
		geom:           geom,
		ring:           rb,
		bg:             bg,
		noise:          noise,
		ts:             ts,
		tsEmitter:      timelapse.NewEmitter(cfg.OutputPath, cfg.ObservatoryID, cfg.Label, geom),
		scanner:        scanner,
		past:           trigger.NewPastTriggerMap(planeSize),
		tracker:        event.New(planeSize, maxDurationFrames, timeoutFrames),
		throttle:       event.NewThrottle(cfg.TriggerThrottlePeriod, cfg.FPS, cfg.TriggerThrottleMaxEvents),
		emitter:        event.NewEmitter(cfg.OutputPath, cfg.ObservatoryID, cfg.Label, geom),
		plane:          make([]byte, planeSize),
		runInCountdown: int64(cfg.BackgroundMapFrames) + runInExtraFrames,
	}, nil
}

// Run drives the observer loop until Fetch returns an error (including a
// caller-triggered context cancellation surfaced through a wrapping
// Source), processing exactly one frame per call to step.
func (l *Loop) Run() error {
	if err := l.src.Start(); err != nil {
		return fmt.Errorf("observer: starting source: %w", err)
	}
	defer l.src.Stop()
	if l.preview != nil {
		defer l.preview.Close()
	}
	for {
		f, err := l.src.Fetch()
		if err != nil {
			return fmt.Errorf("observer: fetching frame: %w", err)
		}
		if err := l.step(f); err != nil {
			return err
		}
	}
}

// step runs the per-frame procedure of spec.md §4.1 for a single fetched
// frame.
func (l *Loop) step(f frame.Frame) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("observer: %w", err)
	}

	// Step 1: run-in countdown. On the tick it reaches zero, request the
	// source to rewind (a no-op for live sources) and schedule the first
	// time-lapse exposure start, per spec.md §4.1 step 1 and observe.c's
	// run_in_frame_countdown handling.
	if l.runInCountdown > 0 {
		l.runInCountdown--
		if l.runInCountdown == 0 {
			if err := l.src.Rewind(); err != nil {
				l.cfg.Logger.Warning("run-in rewind failed", "error", err.Error())
			}
			interval := l.cfg.TimelapseInterval
			l.nextTLStart = math.Ceil(f.UTC/interval)*interval + 0.5
		}
	}

	// Steps 2-3: write the frame at frame_counter mod F_ring, then, on the
	// frame that lands in slot 0 (completing a buffer wrap), refresh the
	// noise estimate from the cycle this frame just closed. The slot is
	// computed from the pre-write frame counter, matching spec.md §4.1 step
	// 2's "slot = frame_counter mod F_ring" before the frame at that slot
	// is actually written; the reset that starts the next cycle's
	// accumulation is deferred to the end of this function so this frame's
	// own noise-dependent work below still sees the just-completed cycle.
	wrappedSlot := l.frameIndex%int64(l.ring.Len()) == 0
	l.ring.Write(f)
	f.AnalysisPlane(l.geom.Channels, l.plane)

	l.noise.Observe(l.plane)
	noiseWrapped := l.ring.Full() && wrappedSlot

	l.bg.Observe(l.plane)
	if l.bg.Reducing() {
		l.bg.ReduceStep()
	}

	// Steps 6-7: time-lapse scheduling. An exposure begins only once the
	// run-in period has elapsed and the schedule says it is due; frames are
	// accumulated only while an exposure is active, and it closes either on
	// reaching F_tl frames or on running past the scheduled interval,
	// whichever comes first, after which the schedule advances by
	// TIMELAPSE_INTERVAL regardless of which condition fired.
	interval := l.cfg.TimelapseInterval
	if !l.tlActive && l.runInCountdown == 0 && f.UTC >= l.nextTLStart {
		l.tlActive = true
	}
	if l.tlActive {
		l.ts.Add(l.plane)
	}
	if l.tlActive && (l.ts.Ready() || f.UTC > l.nextTLStart+interval-1) {
		prefix := timestampPrefix(f.UTC)
		latest := l.bg.Latest()
		if err := l.tsEmitter.EmitExposure(l.ts, latest, l.cfg.StackTargetBrightness, prefix); err != nil {
			l.cfg.Logger.Error("could not emit time-lapse exposure", "error", err.Error())
		}
		if latest != nil {
			if err := l.tsEmitter.EmitBackground(latest, prefix); err != nil {
				l.cfg.Logger.Error("could not emit background still", "error", err.Error())
			}
		}
		l.ts.Reset()
		l.tlActive = false
		l.nextTLStart += interval
	}

	closed := l.tracker.RegisterEnds(l.frameIndex)
	for _, e := range closed {
		l.finishEvent(e)
	}

	var blocks []trigger.TriggerBlock
	var diag *trigger.Diagnostic
	var oldPlane []byte
	pixelCount := l.geom.PixelCount()
	// triggering_allowed per spec.md §4.1 step 8: run-in must have elapsed
	// and the throttle must still have headroom, or the motion detector is
	// skipped entirely for this frame (not merely its emission suppressed).
	triggeringAllowed := l.runInCountdown == 0 && l.throttle.Ready(l.frameIndex)
	if triggeringAllowed && l.ring.Counter() > int64(l.cfg.StackComparisonInterval) &&
		l.cfg.StackComparisonInterval < l.ring.Len() {
		old := l.ring.At(l.cfg.StackComparisonInterval)
		oldPlane = make([]byte, l.geom.PlaneSize())
		old.AnalysisPlane(l.geom.Channels, oldPlane)
		// Motion detection compares the new frame against the frame
		// STACK_COMPARISON_INTERVAL positions earlier on the first analysis
		// channel only (the Y plane in greyscale imaging, the reconstructed R
		// plane in colour imaging): the scanner's block labeller works on one
		// width*height plane, matching trigger.c's single difference buffer
		// regardless of the source's colour depth.
		//
		// withDiagnostic is always requested: the event tracker needs the
		// trigger-gate plane for its allTriggers composite, independent of
		// whether a live preview is attached.
		res, err := l.scanner.Scan(l.plane[:pixelCount], oldPlane[:pixelCount], l.noise.Estimate(), l.past, l.mask, true)
		if err != nil {
			return fmt.Errorf("observer: scanning frame %d: %w", l.frameIndex, err)
		}
		blocks = res.Blocks
		diag = res.Diagnostic
		if l.preview != nil && diag != nil {
			if err := l.preview.Show(l.geom.Width, l.geom.Height, l.plane[:pixelCount], diag.R, diag.G, diag.B); err != nil {
				l.cfg.Logger.Warning("preview failed", "error", err.Error())
			}
		}
	}

	var triggerPlane []byte
	if diag != nil {
		// max_trigger is the per-pixel OR of the trigger-bits observed
		// (spec.md §3): B is the plane that only pixels passing the trigger
		// gate paint, so it is the one the event tracker ORs across the
		// event's lifetime.
		triggerPlane = diag.B
	}
	created := l.tracker.Register(l.frameIndex, f.UTC, blocks, l.plane, triggerPlane)
	if len(created) > 0 && diag != nil {
		diffPlane := differencePlane(l.plane, oldPlane)
		triggerFrame := make([]byte, len(l.plane))
		copy(triggerFrame, l.plane)
		previousFrame := make([]byte, len(l.plane))
		copy(previousFrame, l.prevPlane)
		for _, e := range created {
			// mapExcludedPixels carries the past-trigger-map exclusion
			// density (diag.G); mapTrigger carries the trigger-gate pass
			// marker (diag.B), per spec.md §4.4's RGB diagnostic layout.
			if err := l.emitter.EmitOpeningStills(e, diffPlane, diag.G, diag.B, triggerFrame, previousFrame); err != nil {
				l.cfg.Logger.Error("could not emit opening stills", "eventId", e.ID, "error", err.Error())
			}
		}
	}

	if l.prevPlane == nil {
		l.prevPlane = make([]byte, len(l.plane))
	}
	copy(l.prevPlane, l.plane)

	if noiseWrapped {
		// The cycle this frame completed has already been used by this
		// frame's Scan call above; clear it now so the next cycle starts
		// accumulating fresh from the following frame.
		l.noise.Reset()
	}

	l.frameIndex++
	return nil
}

// differencePlane returns the per-pixel absolute difference between newPlane
// and oldPlane, clipped to a byte and not scaled, for the mapDifference
// still. It returns nil if oldPlane
// was never populated this frame (no scan ran).
func differencePlane(newPlane, oldPlane []byte) []byte {
	if oldPlane == nil {
		return nil
	}
	out := make([]byte, len(newPlane))
	for i, v := range newPlane {
		d := int(v) - int(oldPlane[i])
		if d < 0 {
			d = -d
		}
		if d > 255 {
			d = 255
		}
		out[i] = byte(d)
	}
	return out
}

// timestampPrefix renders a capture UTC timestamp as spec.md §6.3's
// YYYYMMDDhhmmss product filename prefix.
func timestampPrefix(utc float64) string {
	return time.Unix(int64(utc), 0).UTC().Format("20060102150405")
}

// finishEvent discards an unconfirmed event, or emits a confirmed one's
// clip and still products if the throttle permits.
func (l *Loop) finishEvent(e *event.Event) {
	if e.Status != event.Confirmed {
		return
	}
	if !l.throttle.Allow(l.frameIndex) {
		l.cfg.Logger.Info("event throttled", "eventId", e.ID)
		return
	}

	if err := l.emitter.EmitClosingStills(e); err != nil {
		l.cfg.Logger.Error("could not emit closing stills", "eventId", e.ID, "error", err.Error())
	}

	// The clip spans trigger_prefix_frames before the first detection
	// through trigger_suffix_frames after the last, per spec.md §4.7; all of
	// it is recovered from the ring buffer by absolute frame index rather
	// than "most recent N", since by the time an event closes the ring's
	// write cursor has moved well past the event's first detection.
	prefixFrames := int64(l.cfg.TriggerPrefixTime * l.cfg.FPS)
	suffixFrames := int64(l.cfg.TriggerSuffixTime * l.cfg.FPS)
	start := e.Detections[0].FrameIndex - prefixFrames
	end := e.LastDetectionFrame + suffixFrames
	if end > l.frameIndex {
		end = l.frameIndex
	}
	clip := l.ring.Range(start, end)
	if err := l.emitter.EmitClip(e, clip, nil, nil); err != nil {
		l.cfg.Logger.Error("could not emit clip", "eventId", e.ID, "error", err.Error())
	}
}

