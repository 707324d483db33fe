package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Глобальные флаги
	cfgFile string
	verbose bool

	// Общее состояние, заполняется в PersistentPreRunE
	cfg    *DemoConfiguration
	logger *slog.Logger
)

// rootCmd - базовая команда демонстрационного приложения.
var rootCmd = &cobra.Command{
	Use:           "retcpdemo",
	Short:         "Demo tooling for the resilient TCP session kit",
	Long:          "Retcpdemo runs the echo server and demo clients built on top of the retcpkit session.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = LoadConfiguration(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
