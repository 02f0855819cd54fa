// Package posetrack records the pose of a moving object over time and replays it.
//
// A Recorder samples a target's position and rotation once per host tick,
// appending a new sample only when enough time has passed since the last one
// and the pose has actually changed. The finished track is serialized to a
// text blob. A Scheduler later replays a track onto a target, applying each
// sample once the gap to the previous sample has elapsed in host time.
//
// Basic usage:
//
//	ctrl := posetrack.NewController(posetrack.DefaultRecorderConfig()).
//		WithLogger(log)
//
//	ctrl.Start(target)
//	// host loop: ctrl.Tick(delta) once per frame
//	blob := ctrl.Stop()
//
//	ctrl.PlaybackFinished().Subscribe(func() { fmt.Println("done") })
//	ctrl.Play(ctx, target, blob)
//	// host loop keeps calling ctrl.Tick(delta)
//
// Recorder, Scheduler and Controller are driven from a single goroutine, the
// one delivering ticks. They are not safe for concurrent use.
package posetrack

import (
	"fmt"
	"math"
	"reflect"

	"github.com/teranos/posetrack/trip"
)

// Vector3 is a position in 3D space.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of v and o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

func (v Vector3) finite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Quaternion is an orientation, expected to be of unit length.
type Quaternion struct {
	X, Y, Z, W float64
}

// IdentityQuaternion is the "no rotation" orientation.
var IdentityQuaternion = Quaternion{W: 1}

// QuaternionFromYaw returns the rotation of angle radians about the Y axis.
func QuaternionFromYaw(angle float64) Quaternion {
	s, c := math.Sincos(angle / 2)
	return Quaternion{Y: s, W: c}
}

// Yaw returns the rotation about the Y axis in radians. Only meaningful for
// quaternions built by QuaternionFromYaw.
func (q Quaternion) Yaw() float64 {
	return 2 * math.Atan2(q.Y, q.W)
}

func (q Quaternion) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", q.X, q.Y, q.Z, q.W)
}

func (q Quaternion) finite() bool {
	return isFinite(q.X) && isFinite(q.Y) && isFinite(q.Z) && isFinite(q.W)
}

// Sample is a single timestamped pose. Time is in seconds since the start of
// the recording.
type Sample struct {
	Time     float64
	Position Vector3
	Rotation Quaternion
}

// SamePose reports whether s and o hold exactly the same position and
// rotation. The comparison is exact, not approximate.
func (s Sample) SamePose(o Sample) bool {
	return s.Position == o.Position && s.Rotation == o.Rotation
}

// Track is an ordered sequence of samples. The first sample is at time 0.
type Track []Sample

// Len returns the number of samples.
func (t Track) Len() int {
	return len(t)
}

// Duration returns the time of the final sample in seconds.
func (t Track) Duration() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].Time
}

// Validate checks that the track can be serialized or played: it must have at
// least one sample and every value must be finite with non-negative times.
func (t Track) Validate() error {
	if len(t) == 0 {
		return trip.NewTrip(trip.TypeEmptyTrack, "track has no samples", nil)
	}

	for i, s := range t {
		if !isFinite(s.Time) || s.Time < 0 {
			return trip.NewTrip(trip.TypeParse, "sample time is not a finite non-negative number",
				trip.Context{"sample": i, "time": s.Time})
		}
		if !s.Position.finite() || !s.Rotation.finite() {
			return trip.NewTrip(trip.TypeParse, "sample pose is not finite",
				trip.Context{"sample": i})
		}
	}

	return nil
}

// Poseable is anything exposing a readable and writable position and rotation.
// Recorders read from it, playback writes to it.
type Poseable interface {
	Position() Vector3
	Rotation() Quaternion
	SetPosition(Vector3)
	SetRotation(Quaternion)
}

// Transform is a plain in-memory Poseable.
type Transform struct {
	position Vector3
	rotation Quaternion
}

// NewTransform returns a Transform at the given pose.
func NewTransform(position Vector3, rotation Quaternion) *Transform {
	return &Transform{position: position, rotation: rotation}
}

func (t *Transform) Position() Vector3 { return t.position }

func (t *Transform) Rotation() Quaternion { return t.rotation }

func (t *Transform) SetPosition(p Vector3) { t.position = p }

func (t *Transform) SetRotation(q Quaternion) { t.rotation = q }

// Translate moves the transform by delta.
func (t *Transform) Translate(delta Vector3) {
	t.position = t.position.Add(delta)
}

// validTarget treats typed nil pointers inside the interface as invalid too.
func validTarget(target Poseable) bool {
	if target == nil {
		return false
	}
	v := reflect.ValueOf(target)
	return v.Kind() != reflect.Pointer || !v.IsNil()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
