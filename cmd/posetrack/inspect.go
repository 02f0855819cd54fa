package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/posetrack"
)

var replay bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Summarize a recorded track",
	Long:  `Reads a serialized track from file, or stdin when no file is given, and prints a summary. With --replay the track is also played back in real time.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeLog()

		track, err := readTrack(cmd, args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		first, last := track[0], track[len(track)-1]
		fmt.Fprintf(out, "samples:  %d\n", track.Len())
		fmt.Fprintf(out, "duration: %.3fs\n", track.Duration())
		fmt.Fprintf(out, "first:    %s yaw %.1f°\n", first.Position, degrees(first.Rotation))
		fmt.Fprintf(out, "last:     %s yaw %.1f°\n", last.Position, degrees(last.Rotation))

		if !replay {
			return nil
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		ctrl := posetrack.NewController(cfg.RecorderConfig()).WithLogger(log)
		ctrl.PlaybackFinished().Subscribe(cancel)

		target := posetrack.NewTransform(first.Position, first.Rotation)
		if _, err := ctrl.PlayTrack(ctx, target, track); err != nil {
			return err
		}

		err = posetrack.Drive(ctx, cfg.TickInterval(), ctrl)
		if !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Fprintf(out, "replayed: %s\n", target.Position())
		fmt.Fprintln(out, ctrl.Trips().Summary())
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&replay, "replay", false, "play the track back in real time")
	rootCmd.AddCommand(inspectCmd)
}

// readTrack decodes the track named by args, or stdin.
func readTrack(cmd *cobra.Command, args []string) (posetrack.Track, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, err
	}
	return posetrack.Deserialize(posetrack.Blob(data))
}

func degrees(q posetrack.Quaternion) float64 {
	return q.Yaw() * 180 / math.Pi
}
