package posetrack

import (
	"context"
	"errors"
	"time"

	"github.com/teranos/posetrack/trip"
	"go.uber.org/zap"
)

// Controller is the facade a host talks to: start, stop, play and the
// playback finished event.
//
// A host creates one Controller at startup and passes it to whatever needs to
// record or replay; it lives for the rest of the process and has no teardown.
// The Recorder behind it is created on first use, so there is only ever one
// recording in progress per Controller.
//
// Every recoverable failure is logged and also collected in Trips, so callers
// that ignore return values can still find out why a call was a no-op.
//
// Example usage:
//
//	ctrl := posetrack.NewController(posetrack.DefaultRecorderConfig())
//	ctrl.PlaybackFinished().Subscribe(onFinished)
//
//	ctrl.Start(target)
//	for frame := range frames {
//		ctrl.Tick(frame.Delta)
//	}
//	blob := ctrl.Stop()
//
//	ctrl.Play(ctx, target, blob)
type Controller struct {
	config    RecorderConfig
	log       *zap.Logger
	recorder  *Recorder
	scheduler *Scheduler
	finished  *Event
	trips     *trip.Handler
}

// NewController creates a Controller whose Recorder will use config.
func NewController(config RecorderConfig) *Controller {
	c := &Controller{
		config:   config,
		log:      zap.NewNop(),
		finished: &Event{},
		trips:    trip.NewHandler("posetrack"),
	}
	c.scheduler = NewScheduler(c.finished, c.log)
	return c
}

// WithLogger sets the logger used by the Controller and everything it owns.
func (c *Controller) WithLogger(log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c.log = log
	c.scheduler.log = log.Named("playback")
	if c.recorder != nil {
		c.recorder.log = log.Named("recorder")
	}
	return c
}

// Recorder returns the Controller's Recorder, creating it on first access.
func (c *Controller) Recorder() *Recorder {
	if c.recorder == nil {
		c.recorder = NewRecorder(c.config, c.log)
	}
	return c.recorder
}

// Scheduler returns the Controller's playback Scheduler.
func (c *Controller) Scheduler() *Scheduler {
	return c.scheduler
}

// PlaybackFinished returns the event fired once for every playback that
// reaches its last sample.
func (c *Controller) PlaybackFinished() *Event {
	return c.finished
}

// Trips returns every failure reported so far.
func (c *Controller) Trips() *trip.Handler {
	return c.trips
}

// Start begins recording target. See Recorder.Start.
func (c *Controller) Start(target Poseable) error {
	err := c.Recorder().Start(target)
	c.record(err)
	return err
}

// Stop ends the current recording and returns it serialized, or an empty blob
// when nothing was recorded.
func (c *Controller) Stop() Blob {
	blob, err := c.Recorder().Stop()
	c.record(err)
	return blob
}

// Play parses blob and replays it onto target. A blob that fails to parse is
// logged and recorded; playback does not start and the parse Trip is
// returned.
func (c *Controller) Play(ctx context.Context, target Poseable, blob Blob) (*Playback, error) {
	track, err := Deserialize(blob)
	if err != nil {
		c.log.Error("play recording", zap.Error(err))
		c.record(err)
		return nil, err
	}
	return c.PlayTrack(ctx, target, track)
}

// PlayTrack replays an already decoded track onto target. See Scheduler.Play.
func (c *Controller) PlayTrack(ctx context.Context, target Poseable, track Track) (*Playback, error) {
	p, err := c.scheduler.Play(ctx, target, track)
	c.record(err)
	return p, err
}

// Tick delivers one frame of host time: the recorder samples first, then
// playbacks advance.
func (c *Controller) Tick(delta time.Duration) {
	if c.recorder != nil {
		c.recorder.Tick(delta)
	}
	c.scheduler.Tick(delta)
}

// Recording reports whether a recording is in progress.
func (c *Controller) Recording() bool {
	return c.recorder != nil && c.recorder.Recording()
}

func (c *Controller) record(err error) {
	if err == nil {
		return
	}
	var t *trip.Trip
	if errors.As(err, &t) {
		c.trips.Record(t)
		return
	}
	c.trips.Record(trip.Wrap("unknown", err, "unexpected failure", nil))
}
