package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
	"github.com/serenichron/openclaw-memory-mem0/pkg/protocol"
)

var (
	doctorOK   = color.New(color.FgGreen).SprintFunc()
	doctorFail = color.New(color.FgRed).SprintFunc()
	doctorWarn = color.New(color.FgYellow).SprintFunc()
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and Mem0 server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), cmd.OutOrStdout(), resolveConfigPath())
		},
	}
}

func runDoctor(ctx context.Context, out io.Writer, cfgPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintln(out, "openclaw-mem0 doctor")
	fmt.Fprintf(out, "  Version:  %s (protocol %d)\n", Version, protocol.ProtocolVersion)
	fmt.Fprintf(out, "  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "  Go:       %s\n", runtime.Version())
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Fprintln(out, doctorWarn(" (NOT FOUND, using defaults)"))
	} else {
		fmt.Fprintln(out, doctorOK(" (OK)"))
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(out, "  Config load error: %s\n", doctorFail(err))
		return fmt.Errorf("invalid config")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Plugin:")
	fmt.Fprintf(out, "    %-14s %s\n", "Base URL:", cfg.BaseURL)
	fmt.Fprintf(out, "    %-14s %s\n", "User:", cfg.UserID)
	fmt.Fprintf(out, "    %-14s %s\n", "API key:", maskSecret(cfg.APIKey))
	fmt.Fprintf(out, "    %-14s %s\n", "Auto recall:", onOff(cfg.AutoRecall))
	fmt.Fprintf(out, "    %-14s %s\n", "Auto capture:", onOff(cfg.AutoCapture))
	fmt.Fprintf(out, "    %-14s %d (threshold %.2f)\n", "Recall limit:", cfg.RecallLimit, cfg.RecallThreshold)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Sidecar:")
	fmt.Fprintf(out, "    %-14s %s\n", "Listen:", cfg.Server.Listen)
	fmt.Fprintf(out, "    %-14s %s\n", "Token:", maskSecret(cfg.Server.Token))
	if cfg.Telemetry.Enabled {
		fmt.Fprintf(out, "    %-14s %s (%s)\n", "Telemetry:", cfg.Telemetry.Endpoint, cfg.Telemetry.Protocol)
	} else {
		fmt.Fprintf(out, "    %-14s %s\n", "Telemetry:", "disabled")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Mem0 server: ")
	client := mem0.NewClient(cfg)
	if err := client.Ping(ctx); err != nil {
		fmt.Fprintln(out, doctorFail("UNREACHABLE"))
		fmt.Fprintf(out, "    %s\n", err)
		return fmt.Errorf("mem0 server at %s is not healthy", cfg.BaseURL)
	}
	fmt.Fprintln(out, doctorOK("OK"))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Doctor check complete.")
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// maskSecret keeps the first and last four characters of long secrets.
func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not configured)"
	case len(s) > 8:
		return s[:4] + "****" + s[len(s)-4:]
	default:
		return "****"
	}
}
