// Package demo is a terminal playground for posetrack.
//
// Arrow keys move an actor around a grid. Press r to start recording, s to
// stop and p to replay the recording onto the actor. Host time comes from
// bubbletea tick messages, one per frame.
//
// Run it through the CLI:
//
//	posetrack demo
package demo

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/teranos/posetrack"
	"go.uber.org/zap"
)

// Status is what the demo is doing.
type Status int

const (
	Idle Status = iota
	Recording
	Playing
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Config configures the playground.
type Config struct {
	Width    int           // Grid width in cells
	Height   int           // Grid height in cells
	Step     float64       // Distance moved per arrow key press
	Interval time.Duration // Frame period
}

// DefaultConfig returns a 40x12 grid ticking at 60Hz.
func DefaultConfig() Config {
	return Config{
		Width:    40,
		Height:   12,
		Step:     1,
		Interval: time.Second / 60,
	}
}

// TickMsg carries the wall-clock time of a frame.
type TickMsg time.Time

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	idleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	recordingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	playingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	borderStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder())
)

// Model is the bubbletea model of the playground.
type Model struct {
	config Config
	ctrl   *posetrack.Controller
	log    *zap.Logger
	actor  *posetrack.Transform
	blob   posetrack.Blob
	status Status
	last   time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the playground around ctrl. The actor starts in the middle of
// the grid, facing right.
func New(ctrl *posetrack.Controller, config Config, log *zap.Logger) *Model {
	def := DefaultConfig()
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = def.Width, def.Height
	}
	if config.Step <= 0 {
		config.Step = def.Step
	}
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		config: config,
		ctrl:   ctrl,
		log:    log.Named("demo"),
		actor: posetrack.NewTransform(
			posetrack.Vector3{X: float64(config.Width / 2), Y: float64(config.Height / 2)},
			posetrack.QuaternionFromYaw(0),
		),
		ctx:    ctx,
		cancel: cancel,
	}

	ctrl.PlaybackFinished().Subscribe(m.onPlaybackFinished)
	return m
}

func (m *Model) onPlaybackFinished() {
	m.status = Idle
	m.log.Info("playback finished")
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.config.Interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Init implements tea.Model interface.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model interface.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		now := time.Time(msg)
		delta := m.config.Interval
		if !m.last.IsZero() {
			delta = now.Sub(m.last)
		}
		m.last = now
		m.ctrl.Tick(delta)
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			m.report()
			return m, tea.Quit
		case "r":
			m.startRecording()
		case "s":
			m.stopRecording()
		case "p":
			m.play()
		case "up":
			m.move(0, 1)
		case "down":
			m.move(0, -1)
		case "left":
			m.move(-1, 0)
		case "right":
			m.move(1, 0)
		}
	}
	return m, nil
}

// report logs everything the controller tripped over during the session.
func (m *Model) report() {
	trips := m.ctrl.Trips()
	if !trips.HasTrips() && !trips.HasStumbles() {
		return
	}
	m.log.Warn("session had problems",
		zap.String("summary", trips.Summary()),
		zap.String("report", trips.DetailedReport()))
}

func (m *Model) startRecording() {
	if m.status != Idle {
		return
	}
	if err := m.ctrl.Start(m.actor); err != nil {
		m.log.Warn("start recording", zap.Error(err))
		return
	}
	m.status = Recording
}

func (m *Model) stopRecording() {
	if m.status != Recording {
		return
	}
	m.blob = m.ctrl.Stop()
	m.status = Idle
}

func (m *Model) play() {
	if m.status != Idle || m.blob == "" {
		return
	}
	// set first: a single-sample track finishes inside Play
	m.status = Playing
	if _, err := m.ctrl.Play(m.ctx, m.actor, m.blob); err != nil {
		m.status = Idle
	}
}

// move translates the actor one step and turns it to face the direction of
// travel. Playback owns the actor, so input is ignored while playing.
func (m *Model) move(dx, dy float64) {
	if m.status == Playing {
		return
	}
	step := m.config.Step
	m.actor.Translate(posetrack.Vector3{X: dx * step, Y: dy * step})
	m.actor.SetRotation(posetrack.QuaternionFromYaw(math.Atan2(dy, dx)))
}

// View implements tea.Model interface.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("posetrack playground"))
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(m.grid()))
	b.WriteString("\n")

	pos := m.actor.Position()
	b.WriteString(fmt.Sprintf("Position: %.1f, %.1f\n", pos.X, pos.Y))
	if m.status == Recording {
		b.WriteString(fmt.Sprintf("Samples: %d\n", m.ctrl.Recorder().SampleCount()))
	}
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	return b.String()
}

func (m *Model) statusLine() string {
	switch m.status {
	case Recording:
		return recordingStyle.Render("Recording: press S to stop")
	case Playing:
		return playingStyle.Render("Playing: wait for it to finish.")
	default:
		if m.blob == "" {
			return idleStyle.Render("Idle: press R to start recording")
		}
		return idleStyle.Render("Idle: press R to start recording or P to replay.")
	}
}

func (m *Model) grid() string {
	w, h := m.config.Width, m.config.Height
	pos := m.actor.Position()
	col := clampCell(pos.X, w)
	row := h - 1 - clampCell(pos.Y, h)

	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == col && y == row {
				b.WriteRune(heading(m.actor.Rotation()))
			} else {
				b.WriteRune('·')
			}
		}
		if y < h-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func clampCell(f float64, n int) int {
	c := int(math.Round(f))
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

// heading picks an arrow glyph for the actor's yaw.
func heading(q posetrack.Quaternion) rune {
	yaw := q.Yaw()
	switch {
	case yaw > math.Pi/4 && yaw <= 3*math.Pi/4:
		return '^'
	case yaw < -math.Pi/4 && yaw >= -3*math.Pi/4:
		return 'v'
	case yaw > 3*math.Pi/4 || yaw < -3*math.Pi/4:
		return '<'
	default:
		return '>'
	}
}

// Actor returns the transform moved by the keys and by playback.
func (m *Model) Actor() *posetrack.Transform {
	return m.actor
}

// Blob returns the last finished recording.
func (m *Model) Blob() posetrack.Blob {
	return m.blob
}

// Status returns what the demo is doing.
func (m *Model) Status() Status {
	return m.status
}

// CurrentMode returns the current status as a string.
func (m *Model) CurrentMode() string {
	return m.status.String()
}

// CheckCondition allows tests to ask about the demo's state.
func (m *Model) CheckCondition(condition string) bool {
	switch condition {
	case "has_recording":
		return m.blob != ""
	case "recording":
		return m.status == Recording
	case "playing":
		return m.status == Playing
	case "idle":
		return m.status == Idle
	default:
		return false
	}
}
