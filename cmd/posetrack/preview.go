package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/posetrack/preview"
)

var (
	previewOut    string
	previewWidth  int
	previewHeight int
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Render a recorded track as PNG",
	Long:  `Draws the top-down path of a serialized track. The image goes to --out, or stdout when --out is empty.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		track, err := readTrack(cmd, args)
		if err != nil {
			return err
		}

		pc := preview.DefaultConfig()
		pc.Width, pc.Height = previewWidth, previewHeight
		r := preview.NewRenderer(pc)

		if previewOut == "" {
			return r.Encode(cmd.OutOrStdout(), track)
		}

		f, err := os.Create(previewOut)
		if err != nil {
			return err
		}
		if err := r.Encode(f, track); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	def := preview.DefaultConfig()
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "output PNG path")
	previewCmd.Flags().IntVar(&previewWidth, "width", def.Width, "image width in pixels")
	previewCmd.Flags().IntVar(&previewHeight, "height", def.Height, "image height in pixels")
	rootCmd.AddCommand(previewCmd)
}
