// Package trip provides error handling for posetrack recording and playback.
//
// The trip package uses stumbling metaphors for error handling - when a
// recording or playback operation runs into bad input it "trips up" or
// "stumbles", and the caller recovers without the process going down.
//
// Every failure in posetrack is recoverable: operations either succeed
// immediately or are abandoned. Nothing is retried.
package trip

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Trip types used across posetrack.
const (
	// TypeInvalidTarget: start or play was called without a poseable target.
	TypeInvalidTarget = "invalid_target"
	// TypeOverlappingRecording: start was called while a session was active.
	TypeOverlappingRecording = "overlapping_recording"
	// TypeEmptyTrack: stop found no samples, or play was given an empty track.
	TypeEmptyTrack = "empty_track"
	// TypeParse: a serialized track could not be decoded.
	TypeParse = "parse"
	// TypeEncode: a track could not be encoded.
	TypeEncode = "encode"
	// TypeConfig: configuration could not be loaded or failed validation.
	TypeConfig = "config"
)

// Sentinels for errors.Is matching. Any Trip matches the sentinel of its Type.
var (
	ErrInvalidTarget        = &Trip{Type: TypeInvalidTarget, Message: "target is not valid"}
	ErrOverlappingRecording = &Trip{Type: TypeOverlappingRecording, Message: "recording already active", Severity: Stumble}
	ErrEmptyTrack           = &Trip{Type: TypeEmptyTrack, Message: "track is empty"}
	ErrParse                = &Trip{Type: TypeParse, Message: "track could not be parsed"}
	ErrEncode               = &Trip{Type: TypeEncode, Message: "track could not be encoded"}
	ErrConfig               = &Trip{Type: TypeConfig, Message: "configuration is not valid"}
)

// Trip represents an error during recording or playback with rich context.
//
// Error types:
//   - "invalid_target": no poseable target was supplied
//   - "overlapping_recording": a new recording replaced an active one
//   - "empty_track": there was nothing to serialize or play
//   - "parse": a blob was malformed, truncated or of an unknown shape
//   - "encode": a track could not be written out
//   - "config": configuration could not be loaded
//
// Example usage:
//
//	err := NewTrip(TypeParse, "expected 3 position components",
//	    Context{"sample": 4, "found": 2})
//
//	if errors.Is(err, ErrParse) {
//	    // playback does not start
//	}
type Trip struct {
	Type      string    // Error category for systematic handling
	Message   string    // Human-readable description
	Context   Context   // Additional debugging information
	Timestamp time.Time // When the error occurred
	Severity  Severity  // How serious this error is
	Cause     error     // Underlying error, if any
}

// Context provides structured debugging information for trips.
type Context map[string]interface{}

// Severity indicates how serious a trip is and how it should be handled.
type Severity int

const (
	// Stumble indicates a warning: the operation carried on.
	// Examples: a new recording discarded an unfinished one
	Stumble Severity = iota

	// Error indicates the operation was abandoned as a no-op.
	// Examples: parse failures, missing targets, empty tracks
	Error
)

func (s Severity) String() string {
	switch s {
	case Stumble:
		return "stumble"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// NewTrip creates a new trip with the current timestamp.
func NewTrip(errorType, message string, context Context) *Trip {
	return &Trip{
		Type:      errorType,
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Severity:  Error, // Default severity
	}
}

// NewStumble creates a new trip with Stumble severity.
func NewStumble(errorType, message string, context Context) *Trip {
	return &Trip{
		Type:      errorType,
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Severity:  Stumble,
	}
}

// Wrap creates an Error severity trip around an underlying error.
func Wrap(errorType string, cause error, message string, context Context) *Trip {
	t := NewTrip(errorType, message, context)
	t.Cause = cause
	return t
}

// Error implements the error interface.
func (t *Trip) Error() string {
	if t.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", t.Type, t.Severity, t.Message, t.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", t.Type, t.Severity, t.Message)
}

// Unwrap returns the underlying cause.
func (t *Trip) Unwrap() error {
	return t.Cause
}

// Is reports whether target is a Trip of the same type.
func (t *Trip) Is(target error) bool {
	other, ok := target.(*Trip)
	if !ok {
		return false
	}
	return other.Type == t.Type
}

// CanRecover returns true if the operation carried on despite this error.
func (t *Trip) CanRecover() bool {
	return t.Severity == Stumble
}

// DetailedString returns a comprehensive error description with context.
// Context keys are sorted so the output is stable.
func (t *Trip) DetailedString() string {
	var details strings.Builder

	details.WriteString(t.Error())
	details.WriteString(fmt.Sprintf("\n  Time: %s", t.Timestamp.Format("15:04:05.000")))

	if len(t.Context) > 0 {
		keys := make([]string, 0, len(t.Context))
		for key := range t.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		details.WriteString("\n  Context:")
		for _, key := range keys {
			details.WriteString(fmt.Sprintf("\n    %s: %v", key, t.Context[key]))
		}
	}

	return details.String()
}

// Handler collects the trips a component has reported.
//
// The controller records every recoverable failure here so that callers
// which do not watch the log can still find out why an operation was a
// no-op.
type Handler struct {
	component string
	mu        sync.Mutex
	trips     []*Trip // Collected errors in chronological order
	stumbles  []*Trip // Collected warnings in chronological order
}

// NewHandler creates a new error handler for a specific component.
func NewHandler(component string) *Handler {
	return &Handler{
		component: component,
		trips:     make([]*Trip, 0),
		stumbles:  make([]*Trip, 0),
	}
}

// Record adds an error to the handler's collection.
func (h *Handler) Record(trip *Trip) {
	if trip == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if trip.Severity == Stumble {
		h.stumbles = append(h.stumbles, trip)
	} else {
		h.trips = append(h.trips, trip)
	}
}

// HasTrips returns true if any errors (non-stumbles) have been recorded.
func (h *Handler) HasTrips() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.trips) > 0
}

// HasStumbles returns true if any stumbles have been recorded.
func (h *Handler) HasStumbles() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stumbles) > 0
}

// GetTrips returns a copy of all recorded errors.
func (h *Handler) GetTrips() []*Trip {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Trip(nil), h.trips...)
}

// GetStumbles returns a copy of all recorded stumbles.
func (h *Handler) GetStumbles() []*Trip {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Trip(nil), h.stumbles...)
}

// Count returns how many trips of the given type have been recorded,
// stumbles included.
func (h *Handler) Count(errorType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, t := range h.trips {
		if t.Type == errorType {
			n++
		}
	}
	for _, t := range h.stumbles {
		if t.Type == errorType {
			n++
		}
	}
	return n
}

// Summary provides a concise overview of all errors and stumbles.
func (h *Handler) Summary() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.trips) == 0 && len(h.stumbles) == 0 {
		return fmt.Sprintf("[%s] No issues", h.component)
	}

	return fmt.Sprintf("[%s] %d trips, %d stumbles",
		h.component, len(h.trips), len(h.stumbles))
}

// DetailedReport provides a comprehensive report of all issues.
func (h *Handler) DetailedReport() string {
	var report strings.Builder

	report.WriteString(fmt.Sprintf("=== %s Component Report ===\n", h.component))
	report.WriteString(h.Summary() + "\n")

	trips := h.GetTrips()
	stumbles := h.GetStumbles()

	if len(trips) > 0 {
		report.WriteString("\nTrips:\n")
		for i, trip := range trips {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, trip.DetailedString()))
		}
	}

	if len(stumbles) > 0 {
		report.WriteString("\nStumbles:\n")
		for i, stumble := range stumbles {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, stumble.DetailedString()))
		}
	}

	return report.String()
}
