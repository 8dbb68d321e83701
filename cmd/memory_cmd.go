package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
	"github.com/serenichron/openclaw-memory-mem0/internal/plugin"
)

// cliStore resolves the Mem0 client once flags are parsed. The mem0 command
// tree has to exist before --config is known, so it is built around this
// placeholder and the client is filled in by PersistentPreRunE.
type cliStore struct {
	client *mem0.Client
}

func (s *cliStore) load() error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	host, err := newHost(context.Background(), cfg, nil)
	if err != nil {
		return err
	}
	s.client = host.Plugin().Client()
	return nil
}

func (s *cliStore) Search(ctx context.Context, query string, limit int) ([]mem0.Memory, bool) {
	return s.client.Search(ctx, query, limit)
}

func (s *cliStore) List(ctx context.Context) ([]mem0.Memory, bool) {
	return s.client.List(ctx)
}

func (s *cliStore) Delete(ctx context.Context, id string) bool {
	return s.client.Delete(ctx, id)
}

func (s *cliStore) BaseURL() string { return s.client.BaseURL() }
func (s *cliStore) UserID() string  { return s.client.UserID() }

// memoryCmd is the mem0 command a host would get from Host.Commands, rebuilt
// here so the client is created only after flags are parsed.
func memoryCmd() *cobra.Command {
	store := &cliStore{}
	cmd := plugin.NewCommand(store)
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initProcess()
		return store.load()
	}
	return cmd
}
