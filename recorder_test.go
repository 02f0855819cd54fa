package posetrack

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/posetrack/trip"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const frame = 20 * time.Millisecond

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func stopTrack(t *testing.T, rec *Recorder) Track {
	t.Helper()
	blob, err := rec.Stop()
	require.NoError(t, err)
	track, err := Deserialize(blob)
	require.NoError(t, err)
	return track
}

// TestRecorder_Defaults tests the default and normalized configuration
func TestRecorder_Defaults(t *testing.T) {
	config := DefaultRecorderConfig()
	assert.Equal(t, 99999, config.MaxSamples)
	assert.Equal(t, 10*time.Millisecond, config.MinSampleSpacing)

	rec := NewRecorder(RecorderConfig{MaxSamples: -1}, nil)
	assert.Equal(t, config, rec.Config())
}

// TestRecorder_StartCapturesFirstSample tests that sample 0 is taken at time 0
func TestRecorder_StartCapturesFirstSample(t *testing.T) {
	target := NewTransform(Vector3{1, 2, 3}, QuaternionFromYaw(0.5))
	rec := NewRecorder(DefaultRecorderConfig(), nil)

	require.NoError(t, rec.Start(target))
	assert.True(t, rec.Recording())
	assert.Equal(t, 1, rec.SampleCount())

	track := stopTrack(t, rec)
	require.Len(t, track, 1)
	assert.Equal(t, 0.0, track[0].Time)
	assert.Equal(t, Vector3{1, 2, 3}, track[0].Position)
	assert.Equal(t, QuaternionFromYaw(0.5), track[0].Rotation)
	assert.False(t, rec.Recording())
}

// TestRecorder_StationaryTargetAddsNothing tests the change gate
func TestRecorder_StationaryTargetAddsNothing(t *testing.T) {
	target := NewTransform(Vector3{}, IdentityQuaternion)
	rec := NewRecorder(DefaultRecorderConfig(), nil)
	require.NoError(t, rec.Start(target))

	for i := 0; i < 5; i++ {
		rec.Tick(frame)
	}

	assert.Equal(t, 1, rec.SampleCount())
	assert.Equal(t, 5*frame, rec.Elapsed())
}

// TestRecorder_DisplacementAddsOneSample tests that a move on the third tick
// is captured on exactly that tick with the accumulated time
func TestRecorder_DisplacementAddsOneSample(t *testing.T) {
	target := NewTransform(Vector3{}, IdentityQuaternion)
	rec := NewRecorder(DefaultRecorderConfig(), nil)
	require.NoError(t, rec.Start(target))

	rec.Tick(frame)
	rec.Tick(frame)
	assert.Equal(t, 1, rec.SampleCount())

	target.Translate(Vector3{X: 1e-12})
	rec.Tick(frame)
	assert.Equal(t, 2, rec.SampleCount())

	rec.Tick(frame)
	rec.Tick(frame)
	assert.Equal(t, 2, rec.SampleCount())

	track := stopTrack(t, rec)
	require.Len(t, track, 2)
	assert.Equal(t, (3 * frame).Seconds(), track[1].Time)
	assert.Equal(t, Vector3{X: 1e-12}, track[1].Position)
}

// TestRecorder_RotationCounts tests that a rotation alone is a change
func TestRecorder_RotationCounts(t *testing.T) {
	target := NewTransform(Vector3{}, IdentityQuaternion)
	rec := NewRecorder(DefaultRecorderConfig(), nil)
	require.NoError(t, rec.Start(target))

	target.SetRotation(QuaternionFromYaw(0.01))
	rec.Tick(frame)

	assert.Equal(t, 2, rec.SampleCount())
}

// TestRecorder_SpacingGate tests that moves closer than the spacing wait
func TestRecorder_SpacingGate(t *testing.T) {
	target := NewTransform(Vector3{}, IdentityQuaternion)
	rec := NewRecorder(DefaultRecorderConfig(), nil)
	require.NoError(t, rec.Start(target))

	target.Translate(Vector3{Y: 1})
	rec.Tick(4 * time.Millisecond)
	assert.Equal(t, 1, rec.SampleCount())
	rec.Tick(4 * time.Millisecond)
	assert.Equal(t, 1, rec.SampleCount())

	rec.Tick(2 * time.Millisecond)
	assert.Equal(t, 2, rec.SampleCount())

	// the spacing clock resets on append
	target.Translate(Vector3{Y: 1})
	rec.Tick(5 * time.Millisecond)
	assert.Equal(t, 2, rec.SampleCount())
	rec.Tick(5 * time.Millisecond)
	assert.Equal(t, 3, rec.SampleCount())

	track := stopTrack(t, rec)
	assert.Equal(t, 0.010, track[1].Time)
	assert.Equal(t, 0.020, track[2].Time)
}

// TestRecorder_Cap tests that a track never grows past MaxSamples
func TestRecorder_Cap(t *testing.T) {
	log, logs := observedLogger()
	target := NewTransform(Vector3{}, IdentityQuaternion)
	rec := NewRecorder(RecorderConfig{MaxSamples: 3, MinSampleSpacing: 10 * time.Millisecond}, log)
	require.NoError(t, rec.Start(target))

	for i := 0; i < 10; i++ {
		target.Translate(Vector3{X: 1})
		rec.Tick(frame)
	}

	track := stopTrack(t, rec)
	assert.Len(t, track, 3)
	assert.Equal(t, 1, logs.FilterMessage("sample cap reached, recording stops growing").Len())
}

// TestRecorder_RestartDiscards tests that a second Start abandons the first
// session entirely
func TestRecorder_RestartDiscards(t *testing.T) {
	log, logs := observedLogger()
	target := NewTransform(Vector3{}, IdentityQuaternion)
	rec := NewRecorder(DefaultRecorderConfig(), log)
	require.NoError(t, rec.Start(target))

	for i := 0; i < 4; i++ {
		target.Translate(Vector3{X: 1})
		rec.Tick(frame)
	}
	assert.Equal(t, 5, rec.SampleCount())

	err := rec.Start(target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, trip.ErrOverlappingRecording))
	var stumble *trip.Trip
	require.True(t, errors.As(err, &stumble))
	assert.True(t, stumble.CanRecover())
	assert.Equal(t, 1, logs.FilterMessage("previous recording was canceled by starting a new recording").Len())

	assert.True(t, rec.Recording())
	assert.Equal(t, 1, rec.SampleCount())

	target.Translate(Vector3{Z: 1})
	rec.Tick(frame)

	track := stopTrack(t, rec)
	require.Len(t, track, 2)
	assert.Equal(t, 0.0, track[0].Time)
	assert.Equal(t, Vector3{X: 4}, track[0].Position)
	assert.Equal(t, frame.Seconds(), track[1].Time)
	assert.Equal(t, Vector3{X: 4, Z: 1}, track[1].Position)
}

// TestRecorder_InvalidTarget tests that a nil target is a no-op
func TestRecorder_InvalidTarget(t *testing.T) {
	rec := NewRecorder(DefaultRecorderConfig(), nil)

	err := rec.Start(nil)
	assert.True(t, errors.Is(err, trip.ErrInvalidTarget))
	assert.False(t, rec.Recording())

	var typedNil *Transform
	err = rec.Start(typedNil)
	assert.True(t, errors.Is(err, trip.ErrInvalidTarget))
	assert.False(t, rec.Recording())
}

// TestRecorder_InvalidTargetKeepsSession tests that a bad Start leaves the
// running recording alone
func TestRecorder_InvalidTargetKeepsSession(t *testing.T) {
	target := NewTransform(Vector3{}, IdentityQuaternion)
	rec := NewRecorder(DefaultRecorderConfig(), nil)
	require.NoError(t, rec.Start(target))

	assert.Error(t, rec.Start(nil))
	assert.True(t, rec.Recording())
	assert.Equal(t, 1, rec.SampleCount())
}

// TestRecorder_StopWithoutSession tests the empty stop
func TestRecorder_StopWithoutSession(t *testing.T) {
	rec := NewRecorder(DefaultRecorderConfig(), nil)

	blob, err := rec.Stop()
	assert.Empty(t, blob)
	assert.True(t, errors.Is(err, trip.ErrEmptyTrack))

	rec.Tick(frame)
	assert.Equal(t, time.Duration(0), rec.Elapsed())
}
