// Package cmd is the openclaw-mem0 command line: the mem0 memory commands,
// the sidecar and MCP servers, and config/setup/doctor helpers.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
)

// Version is stamped at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "openclaw-mem0",
	Short:         "Mem0-backed long-term memory for OpenClaw agents",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initProcess()
	},
}

// initProcess loads .env (and the .env.local written by setup next to the
// config) and installs the logger. Commands that define their own
// PersistentPreRun must call it themselves.
func initProcess() {
	config.LoadDotEnv(".env", filepath.Join(filepath.Dir(resolveConfigPath()), envLocalFile))
	setupLogging(os.Stderr)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $MEM0_PLUGIN_CONFIG or ~/.openclaw/mem0.json5)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(memoryCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(setupCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// resolveConfigPath picks the config file: --config, then
// $MEM0_PLUGIN_CONFIG, then the default location.
func resolveConfigPath() string {
	if cfgFile != "" {
		return config.ExpandHome(cfgFile)
	}
	if v := os.Getenv("MEM0_PLUGIN_CONFIG"); v != "" {
		return config.ExpandHome(v)
	}
	return config.DefaultPath()
}

// setupLogging installs the default slog logger. The level and format come
// from the config file when it loads; --verbose forces debug. Logs always go
// to w so stdout stays clean for command output and MCP framing.
func setupLogging(w io.Writer) {
	level, format := "info", "text"
	if cfg, err := config.Load(resolveConfigPath()); err == nil {
		level, format = cfg.Logging.Level, cfg.Logging.Format
	}
	if verbose {
		level = "debug"
	}
	slog.SetDefault(slog.New(newLogHandler(w, level, format)))
}

func newLogHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "openclaw-mem0 %s\n", Version)
		},
	}
}
