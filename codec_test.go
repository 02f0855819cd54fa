package posetrack

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/posetrack/trip"
)

func sampleTrack() Track {
	return Track{
		{Time: 0, Position: Vector3{0, 0, 0}, Rotation: IdentityQuaternion},
		{Time: 0.016666666666666666, Position: Vector3{0.1, -2.5, 1e-9}, Rotation: QuaternionFromYaw(1.234)},
		{Time: 0.5, Position: Vector3{math.MaxFloat64, -math.SmallestNonzeroFloat64, 3}, Rotation: Quaternion{0.5, 0.5, 0.5, 0.5}},
		{Time: 1234.000001, Position: Vector3{1.0 / 3.0, 2.0 / 3.0, -7}, Rotation: QuaternionFromYaw(-math.Pi / 3)},
	}
}

// TestCodec_RoundTrip tests that every value survives serialization exactly
func TestCodec_RoundTrip(t *testing.T) {
	track := sampleTrack()

	blob, err := Serialize(track)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `format = "posetrack"`)
	assert.Contains(t, string(blob), "[[sample]]")

	decoded, err := Deserialize(blob)
	require.NoError(t, err)
	require.Len(t, decoded, len(track))

	for i := range track {
		assert.Equal(t, track[i].Time, decoded[i].Time, "time of sample %d", i)
		assert.Equal(t, track[i].Position, decoded[i].Position, "position of sample %d", i)
		assert.Equal(t, track[i].Rotation, decoded[i].Rotation, "rotation of sample %d", i)
	}
}

// TestCodec_SingleSample tests the smallest valid track
func TestCodec_SingleSample(t *testing.T) {
	track := Track{{Time: 0, Position: Vector3{4, 5, 6}, Rotation: IdentityQuaternion}}

	blob, err := Serialize(track)
	require.NoError(t, err)

	decoded, err := Deserialize(blob)
	require.NoError(t, err)
	assert.Equal(t, track, decoded)
}

// TestCodec_Deterministic tests that the same track always encodes the same way
func TestCodec_Deterministic(t *testing.T) {
	first, err := Serialize(sampleTrack())
	require.NoError(t, err)
	second, err := Serialize(sampleTrack())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestCodec_HandWritten tests decoding a document written by hand
func TestCodec_HandWritten(t *testing.T) {
	blob := Blob(`format = "posetrack"
version = 1

[[sample]]
time = 0.0
position = [1.0, 2.0, 3.0]
rotation = [0.0, 0.0, 0.0, 1.0]

[[sample]]
time = 0.25
position = [1.5, 2.0, 3.0]
rotation = [0.0, 0.0, 0.0, 1.0]
`)

	track, err := Deserialize(blob)
	require.NoError(t, err)
	require.Len(t, track, 2)
	assert.Equal(t, Vector3{1, 2, 3}, track[0].Position)
	assert.Equal(t, 0.25, track[1].Time)
	assert.Equal(t, 0.25, track.Duration())
}

// TestCodec_Malformed tests that bad input is rejected with a parse trip
func TestCodec_Malformed(t *testing.T) {
	const header = "format = \"posetrack\"\nversion = 1\n"

	cases := map[string]string{
		"empty":          "",
		"whitespace":     "  \n\t",
		"not toml":       "this is [[ not a track",
		"xml":            "<ArrayOfTransformData></ArrayOfTransformData>",
		"wrong format":   "format = \"other\"\nversion = 1\n[[sample]]\ntime = 0.0\nposition = [0.0, 0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0]\n",
		"wrong version":  "format = \"posetrack\"\nversion = 2\n[[sample]]\ntime = 0.0\nposition = [0.0, 0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0]\n",
		"no samples":     header,
		"missing time":   header + "[[sample]]\nposition = [0.0, 0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0]\n",
		"short position": header + "[[sample]]\ntime = 0.0\nposition = [0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0]\n",
		"long rotation":  header + "[[sample]]\ntime = 0.0\nposition = [0.0, 0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0, 0.0]\n",
		"unknown key":    header + "[[sample]]\ntime = 0.0\nposition = [0.0, 0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0]\nscale = [1.0, 1.0, 1.0]\n",
		"string time":    header + "[[sample]]\ntime = \"soon\"\nposition = [0.0, 0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0]\n",
		"negative time":  header + "[[sample]]\ntime = -1.0\nposition = [0.0, 0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0]\n",
		"late start":     header + "[[sample]]\ntime = 0.5\nposition = [0.0, 0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0]\n",
		"nan position":   header + "[[sample]]\ntime = 0.0\nposition = [nan, 0.0, 0.0]\nrotation = [0.0, 0.0, 0.0, 1.0]\n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var track Track
			var err error
			assert.NotPanics(t, func() {
				track, err = Deserialize(Blob(input))
			})
			require.Error(t, err)
			assert.Nil(t, track)
			assert.True(t, errors.Is(err, trip.ErrParse), "expected parse trip, got %v", err)
		})
	}
}

// TestCodec_Truncated tests that cutting a valid blob short never misparses
func TestCodec_Truncated(t *testing.T) {
	blob, err := Serialize(sampleTrack())
	require.NoError(t, err)

	cut := blob[:len(blob)/2]
	track, err := Deserialize(cut)
	if err == nil {
		// a cut on a record boundary may still be a valid, shorter track
		assert.Less(t, len(track), len(sampleTrack()))
		return
	}
	assert.True(t, errors.Is(err, trip.ErrParse))
}

// TestCodec_SerializeEmpty tests that an empty track cannot be encoded
func TestCodec_SerializeEmpty(t *testing.T) {
	blob, err := Serialize(nil)
	assert.Empty(t, blob)
	assert.True(t, errors.Is(err, trip.ErrEmptyTrack))
}
