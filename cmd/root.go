package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
)

var logger = log.New("cmd")

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "pathtracer",
	Short: "Interactive progressive CPU path tracer",
	Long: `pathtracer renders scenes progressively: many workers trace noisy full-frame
passes that are merged into an image which converges while it is displayed.
Use "render" for a headless render to PNG or "serve" for a live browser preview.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetSink(cmd.ErrOrStderr())
		log.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "notice", "Log verbosity: debug, info, notice, warning or error")
}

func parseLevel(name string) (log.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return log.Debug, nil
	case "info":
		return log.Info, nil
	case "notice":
		return log.Notice, nil
	case "warning":
		return log.Warning, nil
	case "error":
		return log.Error, nil
	}
	return log.Notice, fmt.Errorf("unknown log level %q", name)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
