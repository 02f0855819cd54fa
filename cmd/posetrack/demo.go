package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/teranos/posetrack"
	"github.com/teranos/posetrack/demo"
	"go.uber.org/zap"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Interactive terminal playground",
	Long:  `Move an actor with the arrow keys, record with r, stop with s and replay with p.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// the terminal is owned by the program, so logs only go to the file
		log, closeLog, err := newLogger(cfg, nil)
		if err != nil {
			return err
		}
		defer closeLog()

		ctrl := posetrack.NewController(cfg.RecorderConfig()).WithLogger(log)

		dc := demo.DefaultConfig()
		dc.Step = cfg.Demo.Step
		dc.Interval = cfg.TickInterval()
		m := demo.New(ctrl, dc, log)

		log.Info("demo starting", zap.Duration("interval", dc.Interval))
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
