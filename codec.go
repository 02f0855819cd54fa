package posetrack

import (
	"bytes"
	"errors"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/teranos/posetrack/trip"
)

// Blob is a serialized Track. Only Serialize produces it and only Deserialize
// reads it; callers treat it as opaque text.
type Blob string

// track file format
// -----------------
//
//	format = "posetrack"
//	version = 1
//
//	[[sample]]
//	time = 0.0
//	position = [x, y, z]
//	rotation = [x, y, z, w]
//
// Unknown keys, missing keys and wrong component counts are rejected rather
// than guessed at.
const (
	formatName    = "posetrack"
	formatVersion = 1

	positionComponents = 3
	rotationComponents = 4
)

type trackDocument struct {
	Format  string         `toml:"format"`
	Version int            `toml:"version"`
	Samples []sampleRecord `toml:"sample"`
}

type sampleRecord struct {
	Time     *float64  `toml:"time"`
	Position []float64 `toml:"position"`
	Rotation []float64 `toml:"rotation"`
}

// Serialize encodes the track as text. The output is deterministic for a
// given track and Deserialize reproduces every value exactly.
func Serialize(track Track) (Blob, error) {
	if err := track.Validate(); err != nil {
		return "", err
	}

	doc := trackDocument{
		Format:  formatName,
		Version: formatVersion,
		Samples: make([]sampleRecord, len(track)),
	}

	for i, s := range track {
		t := s.Time
		doc.Samples[i] = sampleRecord{
			Time:     &t,
			Position: []float64{s.Position.X, s.Position.Y, s.Position.Z},
			Rotation: []float64{s.Rotation.X, s.Rotation.Y, s.Rotation.Z, s.Rotation.W},
		}
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetArraysMultiline(false)
	if err := enc.Encode(doc); err != nil {
		return "", trip.Wrap(trip.TypeEncode, err, "track could not be encoded",
			trip.Context{"samples": len(track)})
	}

	return Blob(buf.String()), nil
}

// Deserialize decodes a blob produced by Serialize. Any malformed, truncated
// or unrecognised input returns a parse Trip.
func Deserialize(blob Blob) (Track, error) {
	if strings.TrimSpace(string(blob)) == "" {
		return nil, trip.NewTrip(trip.TypeParse, "blob is empty", nil)
	}

	var doc trackDocument
	dec := toml.NewDecoder(strings.NewReader(string(blob))).DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		ctx := trip.Context{}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			ctx["line"] = row
			ctx["column"] = col
		}
		return nil, trip.Wrap(trip.TypeParse, err, "blob is not a valid track document", ctx)
	}

	if doc.Format != formatName {
		return nil, trip.NewTrip(trip.TypeParse, "unknown track format",
			trip.Context{"format": doc.Format})
	}
	if doc.Version != formatVersion {
		return nil, trip.NewTrip(trip.TypeParse, "unsupported track version",
			trip.Context{"version": doc.Version, "supported": formatVersion})
	}
	if len(doc.Samples) == 0 {
		return nil, trip.NewTrip(trip.TypeParse, "track has no samples", nil)
	}

	track := make(Track, len(doc.Samples))
	for i, rec := range doc.Samples {
		if rec.Time == nil {
			return nil, trip.NewTrip(trip.TypeParse, "sample is missing its time",
				trip.Context{"sample": i})
		}
		if len(rec.Position) != positionComponents {
			return nil, trip.NewTrip(trip.TypeParse, "sample position must have 3 components",
				trip.Context{"sample": i, "found": len(rec.Position)})
		}
		if len(rec.Rotation) != rotationComponents {
			return nil, trip.NewTrip(trip.TypeParse, "sample rotation must have 4 components",
				trip.Context{"sample": i, "found": len(rec.Rotation)})
		}

		track[i] = Sample{
			Time:     *rec.Time,
			Position: Vector3{X: rec.Position[0], Y: rec.Position[1], Z: rec.Position[2]},
			Rotation: Quaternion{X: rec.Rotation[0], Y: rec.Rotation[1], Z: rec.Rotation[2], W: rec.Rotation[3]},
		}
	}

	if track[0].Time != 0 {
		return nil, trip.NewTrip(trip.TypeParse, "first sample must be at time 0",
			trip.Context{"time": track[0].Time})
	}

	if err := track.Validate(); err != nil {
		return nil, err
	}

	return track, nil
}
