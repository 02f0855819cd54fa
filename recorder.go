package posetrack

import (
	"time"

	"github.com/google/uuid"
	"github.com/teranos/posetrack/trip"
	"go.uber.org/zap"
)

// RecorderConfig holds the sampling tunables of a Recorder.
//
// Example usage:
//
//	config := posetrack.RecorderConfig{
//		MaxSamples:       600,                   // ten seconds at 60Hz
//		MinSampleSpacing: 50 * time.Millisecond, // coarser tracks
//	}
//
//	rec := posetrack.NewRecorder(config, log)
type RecorderConfig struct {
	// MaxSamples caps the length of a track. Once reached, the session keeps
	// running but stops growing.
	MaxSamples int
	// MinSampleSpacing is the least host time between two appended samples.
	MinSampleSpacing time.Duration
}

// DefaultRecorderConfig returns a RecorderConfig with sensible defaults.
//
// The default configuration provides:
//   - at most 99999 samples per track
//   - at least 10ms between samples
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		MaxSamples:       99999,
		MinSampleSpacing: 10 * time.Millisecond,
	}
}

// normalized replaces non-positive values with the defaults.
func (c RecorderConfig) normalized() RecorderConfig {
	def := DefaultRecorderConfig()
	if c.MaxSamples <= 0 {
		c.MaxSamples = def.MaxSamples
	}
	if c.MinSampleSpacing <= 0 {
		c.MinSampleSpacing = def.MinSampleSpacing
	}
	return c
}

// recordingSession is the state of one in-progress recording.
type recordingSession struct {
	id        uuid.UUID
	target    Poseable
	track     Track
	elapsed   time.Duration // since Start
	sinceLast time.Duration // since the last appended sample
	capped    bool
}

// Recorder samples a single target's pose on every tick.
//
// A sample is appended only when at least MinSampleSpacing has passed since
// the previous one and the target's position or rotation differs exactly from
// the last recorded sample, so idle stretches cost nothing.
type Recorder struct {
	config  RecorderConfig
	log     *zap.Logger
	session *recordingSession
}

// NewRecorder creates a Recorder. A nil logger discards log output.
func NewRecorder(config RecorderConfig, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		config: config.normalized(),
		log:    log.Named("recorder"),
	}
}

// Config returns the effective configuration.
func (r *Recorder) Config() RecorderConfig {
	return r.config
}

// Start begins a new recording of target and immediately captures sample 0 at
// time 0.
//
// A nil target returns an invalid_target Trip and changes nothing. If a
// recording is already running it is discarded without being finalized; the
// new session still starts and a Stumble is returned so callers can tell.
func (r *Recorder) Start(target Poseable) error {
	if !validTarget(target) {
		err := trip.NewTrip(trip.TypeInvalidTarget, "recording target is not valid", nil)
		r.log.Error("start recording", zap.Error(err))
		return err
	}

	var stumble *trip.Trip
	if r.session != nil {
		stumble = trip.NewStumble(trip.TypeOverlappingRecording,
			"previous recording was canceled by starting a new recording",
			trip.Context{"session": r.session.id.String(), "samples": len(r.session.track)})
		r.log.Warn("previous recording was canceled by starting a new recording",
			zap.Stringer("session", r.session.id),
			zap.Int("discarded_samples", len(r.session.track)))
	}

	r.session = &recordingSession{
		id:     uuid.New(),
		target: target,
		track:  make(Track, 0, 64),
	}
	r.capture()

	r.log.Debug("recording started",
		zap.Stringer("session", r.session.id),
		zap.Stringer("position", target.Position()))

	if stumble != nil {
		return stumble
	}
	return nil
}

// capture appends the target's current pose at the session's elapsed time.
func (r *Recorder) capture() {
	s := r.session
	s.track = append(s.track, Sample{
		Time:     s.elapsed.Seconds(),
		Position: s.target.Position(),
		Rotation: s.target.Rotation(),
	})
}

// Tick advances the active recording by delta and samples the target if the
// spacing and change conditions are both met. Without an active recording it
// does nothing.
func (r *Recorder) Tick(delta time.Duration) {
	s := r.session
	if s == nil || len(s.track) == 0 {
		return
	}

	s.elapsed += delta
	s.sinceLast += delta

	if len(s.track) >= r.config.MaxSamples {
		if !s.capped {
			s.capped = true
			r.log.Info("sample cap reached, recording stops growing",
				zap.Stringer("session", s.id),
				zap.Int("max_samples", r.config.MaxSamples))
		}
		return
	}

	if s.sinceLast < r.config.MinSampleSpacing {
		return
	}

	last := s.track[len(s.track)-1]
	if last.Position == s.target.Position() && last.Rotation == s.target.Rotation() {
		return
	}

	r.capture()
	s.sinceLast = 0
}

// Stop finalizes the active recording and returns it serialized. With no
// active recording it returns an empty blob and an empty_track Trip. After
// Stop no recording is active.
func (r *Recorder) Stop() (Blob, error) {
	s := r.session
	if s == nil || len(s.track) == 0 {
		r.session = nil
		err := trip.NewTrip(trip.TypeEmptyTrack, "no recording to stop", nil)
		r.log.Warn("stop recording", zap.Error(err))
		return "", err
	}

	r.session = nil

	blob, err := Serialize(s.track)
	if err != nil {
		r.log.Error("stop recording",
			zap.Stringer("session", s.id),
			zap.Error(err))
		return "", err
	}

	r.log.Debug("recording stopped",
		zap.Stringer("session", s.id),
		zap.Int("samples", len(s.track)),
		zap.Float64("duration", s.track.Duration()))

	return blob, nil
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	return r.session != nil
}

// SampleCount returns the number of samples in the active session.
func (r *Recorder) SampleCount() int {
	if r.session == nil {
		return 0
	}
	return len(r.session.track)
}

// Elapsed returns the host time since the active session started.
func (r *Recorder) Elapsed() time.Duration {
	if r.session == nil {
		return 0
	}
	return r.session.elapsed
}
