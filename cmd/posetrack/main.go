// Command posetrack records, inspects and previews pose tracks.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/posetrack/config"
	"github.com/teranos/posetrack/logger"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "posetrack",
	Short:         "posetrack records poses over time and plays them back.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "posetrack.toml", "configuration file")
}

// loadConfig reads the configuration named by --config.
func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

// newLogger builds the command logger. console may be nil when the terminal
// belongs to something else.
func newLogger(cfg config.Config, console io.Writer) (*zap.Logger, func() error, error) {
	lc := cfg.LoggerConfig()
	lc.Console = console
	return logger.New(lc)
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
