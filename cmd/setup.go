package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
)

const envLocalFile = ".env.local"

var setupBanner = lipgloss.NewStyle().
	Bold(true).
	Border(lipgloss.RoundedBorder()).
	Padding(0, 2)

func setupCmd() *cobra.Command {
	var nonInteractive bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactive wizard that writes the plugin config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			out := cmd.OutOrStdout()
			if nonInteractive {
				cfg, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				return saveSetup(out, cfgPath, cfg)
			}
			return runSetup(cmd.Context(), out, cfgPath)
		},
	}
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "write defaults plus MEM0_* environment overrides without prompting")
	return cmd
}

func runSetup(ctx context.Context, out io.Writer, cfgPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintln(out, setupBanner.Render("openclaw-mem0 setup"))
	fmt.Fprintln(out)

	cfg := config.Default()
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Fprintf(out, "Found existing config at %s\n", cfgPath)
		useExisting, err := promptConfirm("Use existing config as base?", true)
		if err != nil {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if useExisting {
			if loaded, err := config.Load(cfgPath); err != nil {
				fmt.Fprintf(out, "Warning: could not load existing config: %v\n", err)
			} else {
				cfg = loaded
			}
		}
	}

	baseURL, err := promptString("Mem0 server URL", "Self-hosted Mem0 REST endpoint", cfg.BaseURL)
	if err != nil {
		return cancelled(out)
	}
	userID, err := promptString("User id", "Every memory is stored and searched under this id", cfg.UserID)
	if err != nil {
		return cancelled(out)
	}
	apiKey, err := promptPassword("Mem0 API key", "Leave empty if the server does not require one")
	if err != nil {
		return cancelled(out)
	}

	var preselected []string
	if cfg.AutoRecall {
		preselected = append(preselected, "recall")
	}
	if cfg.AutoCapture {
		preselected = append(preselected, "capture")
	}
	hooks, err := promptMultiSelect("Automatic hooks", "Space to toggle", []SelectOption[string]{
		{Label: "Auto-recall: inject relevant memories before each run", Value: "recall"},
		{Label: "Auto-capture: store substantial messages after each run", Value: "capture"},
	}, preselected)
	if err != nil {
		return cancelled(out)
	}

	limit, err := promptString("Recall limit", "Maximum memories per search", strconv.Itoa(cfg.RecallLimit))
	if err != nil {
		return cancelled(out)
	}
	threshold, err := promptString("Recall threshold", "Minimum relevance (0-1) for auto-recall", strconv.FormatFloat(cfg.RecallThreshold, 'f', -1, 64))
	if err != nil {
		return cancelled(out)
	}

	raw := cfg.ToMap()
	raw["baseUrl"] = baseURL
	raw["userId"] = userID
	if apiKey != "" {
		raw["apiKey"] = apiKey
	}
	raw["autoRecall"] = slices.Contains(hooks, "recall")
	raw["autoCapture"] = slices.Contains(hooks, "capture")
	raw["recallLimit"] = limit
	raw["recallThreshold"] = threshold

	next, err := config.FromMap(raw)
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if next.Server.Token == "" {
		gen, err := promptConfirm("Generate a bearer token for the sidecar server?", true)
		if err == nil && gen {
			next.Server.Token = strings.ReplaceAll(uuid.NewString(), "-", "")
		}
	}

	fmt.Fprintf(out, "\nChecking %s ... ", next.BaseURL)
	pingCtx, cancel := context.WithTimeout(ctx, next.HealthTimeout()+time.Second)
	defer cancel()
	if err := mem0.NewClient(next).Ping(pingCtx); err != nil {
		fmt.Fprintln(out, doctorWarn("unreachable"))
		fmt.Fprintf(out, "  %s\n", err)
		ok, perr := promptConfirm("Save anyway?", true)
		if perr != nil || !ok {
			return cancelled(out)
		}
	} else {
		fmt.Fprintln(out, doctorOK("OK"))
	}

	return saveSetup(out, cfgPath, next)
}

// saveSetup writes the config without secrets and puts the secrets in
// .env.local next to it.
func saveSetup(out io.Writer, cfgPath string, cfg *config.Config) error {
	secrets := map[string]string{}
	if cfg.APIKey != "" {
		secrets["MEM0_API_KEY"] = cfg.APIKey
	}
	if cfg.Server.Token != "" {
		secrets["MEM0_SERVER_TOKEN"] = cfg.Server.Token
	}

	clean := *cfg
	clean.APIKey = ""
	clean.Server.Token = ""
	if err := config.Save(cfgPath, &clean); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(out, "Config saved to %s (no secrets)\n", cfgPath)

	if len(secrets) > 0 {
		envPath := filepath.Join(filepath.Dir(cfgPath), envLocalFile)
		if err := writeEnvFile(envPath, secrets); err != nil {
			return err
		}
		fmt.Fprintf(out, "Secrets saved to %s\n", envPath)
	}
	return nil
}

// writeEnvFile merges secrets into an existing env file, keeping keys it
// does not own.
func writeEnvFile(path string, secrets map[string]string) error {
	merged := map[string]string{}
	if existing, err := godotenv.Read(path); err == nil {
		merged = existing
	}
	for k, v := range secrets {
		merged[k] = v
	}
	if err := godotenv.Write(merged, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

func cancelled(out io.Writer) error {
	fmt.Fprintln(out, "Cancelled.")
	return nil
}
