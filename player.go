package posetrack

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/teranos/posetrack/trip"
	"go.uber.org/zap"
)

// PlaybackState is the lifecycle position of a single playback.
type PlaybackState int

const (
	// Starting is the state before sample 0 has been applied.
	Starting PlaybackState = iota
	// Playing means sample 0 is applied and later samples are pending.
	Playing
	// Finished means the last sample was applied and the finish event fired.
	Finished
	// Abandoned means the owning context ended before the last sample.
	Abandoned
)

func (s PlaybackState) String() string {
	switch s {
	case Starting:
		return "starting"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Playback is one in-flight replay of a track onto a target. It is owned by
// the Scheduler; callers may only observe it.
type Playback struct {
	id     uuid.UUID
	ctx    context.Context
	target Poseable
	track  Track
	next   int           // index of the next sample to apply
	waited time.Duration // host time since the previous sample was applied
	state  PlaybackState
}

// ID identifies the playback in log output.
func (p *Playback) ID() uuid.UUID {
	return p.id
}

// State returns where the playback is in its lifecycle.
func (p *Playback) State() PlaybackState {
	return p.state
}

// Next returns the index of the next sample to be applied. It equals the track
// length once the playback has finished.
func (p *Playback) Next() int {
	return p.next
}

// delay is the host time to wait before the next sample, relative to the
// previous one.
func (p *Playback) delay() time.Duration {
	gap := p.track[p.next].Time - p.track[p.next-1].Time
	return time.Duration(math.Round(gap * float64(time.Second)))
}

func (p *Playback) apply(i int) {
	p.target.SetPosition(p.track[i].Position)
	p.target.SetRotation(p.track[i].Rotation)
}

// Scheduler replays tracks onto targets, paced by the host's ticks.
//
// Each playback waits for the time gap between consecutive samples, applies
// the sample and starts waiting for the next one. The wait restarts from zero
// after every applied sample, so lateness is never caught up. Any number of
// playbacks may run at once, each on its own target; all of them fire the
// same finished event.
type Scheduler struct {
	log      *zap.Logger
	finished *Event
	active   []*Playback
}

// NewScheduler creates a Scheduler that fires finished whenever a playback
// completes. A nil logger discards log output.
func NewScheduler(finished *Event, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if finished == nil {
		finished = &Event{}
	}
	return &Scheduler{
		log:      log.Named("playback"),
		finished: finished,
	}
}

// Finished returns the event fired once per completed playback.
func (s *Scheduler) Finished() *Event {
	return s.finished
}

// Play starts replaying track onto target. Sample 0 is applied before Play
// returns; later samples are applied by Tick. A single-sample track finishes,
// and fires the finished event, inside Play.
//
// An empty track or nil target is logged and returned as a Trip; the target
// is not touched and no event fires. Cancelling ctx abandons the playback at
// the next tick without firing the event.
func (s *Scheduler) Play(ctx context.Context, target Poseable, track Track) (*Playback, error) {
	if len(track) == 0 {
		err := trip.NewTrip(trip.TypeEmptyTrack, "record data is not valid", nil)
		s.log.Error("play", zap.Error(err))
		return nil, err
	}
	if !validTarget(target) {
		err := trip.NewTrip(trip.TypeInvalidTarget, "target is not valid", nil)
		s.log.Error("play", zap.Error(err))
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p := &Playback{
		id:     uuid.New(),
		ctx:    ctx,
		target: target,
		track:  track,
		state:  Starting,
	}

	p.apply(0)
	p.next = 1
	p.state = Playing

	s.log.Debug("playback started",
		zap.Stringer("playback", p.id),
		zap.Int("samples", len(track)),
		zap.Float64("duration", track.Duration()))

	if p.next >= len(track) {
		s.finish(p)
		return p, nil
	}

	s.active = append(s.active, p)
	return p, nil
}

// Tick advances every active playback by delta. Each playback applies at most
// one sample per tick.
func (s *Scheduler) Tick(delta time.Duration) {
	if len(s.active) == 0 {
		return
	}

	// iterate over a copy: finished handlers may start new playbacks
	current := append([]*Playback(nil), s.active...)
	for _, p := range current {
		s.advance(p, delta)
	}

	live := s.active[:0]
	for _, p := range s.active {
		if p.state == Playing {
			live = append(live, p)
		}
	}
	for i := len(live); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = live
}

func (s *Scheduler) advance(p *Playback, delta time.Duration) {
	if p.state != Playing {
		return
	}

	if err := p.ctx.Err(); err != nil {
		p.state = Abandoned
		s.log.Debug("playback abandoned",
			zap.Stringer("playback", p.id),
			zap.Int("applied", p.next),
			zap.Error(err))
		return
	}

	p.waited += delta
	if p.waited < p.delay() {
		return
	}

	p.apply(p.next)
	p.next++
	p.waited = 0

	if p.next >= len(p.track) {
		s.finish(p)
	}
}

func (s *Scheduler) finish(p *Playback) {
	p.state = Finished
	s.log.Debug("playback finished", zap.Stringer("playback", p.id))
	s.finished.Fire()
}

// Active returns the number of playbacks still waiting on samples.
func (s *Scheduler) Active() int {
	return len(s.active)
}
