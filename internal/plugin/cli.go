package plugin

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
	"github.com/serenichron/openclaw-memory-mem0/internal/tools"
)

// MemoryStore is the client surface the mem0 command needs.
type MemoryStore interface {
	Search(ctx context.Context, query string, limit int) ([]mem0.Memory, bool)
	List(ctx context.Context) ([]mem0.Memory, bool)
	Delete(ctx context.Context, id string) bool
	BaseURL() string
	UserID() string
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	okColor     = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
)

// NewCommand builds the mem0 command: search, list and forget.
func NewCommand(store MemoryStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mem0",
		Short: "Search, list and forget long-term memories",
	}
	cmd.AddCommand(searchCmd(store))
	cmd.AddCommand(listCmd(store))
	cmd.AddCommand(forgetCmd(store))
	return cmd
}

func searchCmd(store MemoryStore) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("limit") && (limit < tools.MinRecallLimit || limit > tools.MaxRecallLimit) {
				return fmt.Errorf("--limit must be between %d and %d", tools.MinRecallLimit, tools.MaxRecallLimit)
			}
			query := strings.Join(args, " ")
			memories, ok := store.Search(cmd.Context(), query, limit)
			if !ok {
				return unreachable(cmd, store)
			}
			out := cmd.OutOrStdout()
			if len(memories) == 0 {
				fmt.Fprintln(out, "No relevant memories found.")
				return nil
			}
			headerColor.Fprintf(out, "Found %d memories:\n", len(memories))
			printMemories(out, memories, true)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (default: configured recall limit)")
	return cmd
}

func listCmd(store MemoryStore) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all memories for the configured user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			memories, ok := store.List(cmd.Context())
			if !ok {
				return unreachable(cmd, store)
			}
			out := cmd.OutOrStdout()
			if len(memories) == 0 {
				fmt.Fprintf(out, "No memories stored for user %s.\n", store.UserID())
				return nil
			}
			headerColor.Fprintf(out, "%d memories for user %s:\n", len(memories), store.UserID())
			printMemories(out, memories, false)
			return nil
		},
	}
}

func forgetCmd(store MemoryStore) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <id>",
		Short: "Delete a memory by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !store.Delete(cmd.Context(), id) {
				failColor.Fprintf(cmd.ErrOrStderr(), "Failed to forget memory %s.\n", id)
				return fmt.Errorf("delete %s failed", id)
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Memory %s forgotten.\n", id)
			return nil
		},
	}
}

func unreachable(cmd *cobra.Command, store MemoryStore) error {
	failColor.Fprintf(cmd.ErrOrStderr(), "Could not reach Mem0 server at %s.\n", store.BaseURL())
	return fmt.Errorf("mem0 server unavailable")
}

func printMemories(w io.Writer, memories []mem0.Memory, withScore bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if withScore {
		fmt.Fprintf(tw, "ID\tSCORE\tMEMORY\n")
	} else {
		fmt.Fprintf(tw, "ID\tMEMORY\n")
	}
	for _, m := range memories {
		text := truncateWidth(oneLine(m.Memory), 80)
		if withScore {
			score := "-"
			if m.HasScore() {
				score = fmt.Sprintf("%.2f", m.ScoreValue())
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, score, text)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", m.ID, text)
		}
	}
	tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateWidth cuts s to at most max terminal columns, so CJK and emoji
// memories do not push the table out of line.
func truncateWidth(s string, max int) string {
	return runewidth.Truncate(s, max, "...")
}
