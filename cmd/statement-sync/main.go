package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finbase/statement-sync/internal/config"
	"github.com/finbase/statement-sync/internal/domain"
	"github.com/finbase/statement-sync/internal/drive"
	"github.com/finbase/statement-sync/internal/gcsource"
	infraBQ "github.com/finbase/statement-sync/internal/infra/bigquery"
	"github.com/finbase/statement-sync/internal/infra/sqlite"
	"github.com/finbase/statement-sync/internal/logger"
	"github.com/finbase/statement-sync/internal/syncer"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statement-sync",
		Short: "Sync bank statement CSVs from a statement folder into the transaction store",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newCreateAccountCmd(),
		newConnectCmd(),
		newSearchCmd(),
		newSyncCmd(),
		newStatusCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env bundles the wired backends a command needs. close releases the
// underlying clients.
type env struct {
	cfg      *config.Config
	orch     *syncer.Orchestrator
	searcher syncer.FolderSearcher
	local    *sqlite.Database // nil for the bigquery store
	close    func()
}

func buildEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New()

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		sink     syncer.TransactionSink
		registry syncer.ProcessingLog
		accounts syncer.AccountStore
		local    *sqlite.Database
	)
	switch cfg.Store {
	case config.StoreBigQuery:
		store, err := infraBQ.NewStore(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() { store.Close() })
		sink, registry, accounts = store, store, store
	default:
		db, err := sqlite.NewDatabase(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sink, registry, accounts = db, db, db
		local = db
	}

	var (
		source   syncer.FileSource
		searcher syncer.FolderSearcher
	)
	switch cfg.Source {
	case config.SourceGCS:
		src, err := gcsource.New(ctx)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, func() { src.Close() })
		source = src
	default:
		svc, err := drive.NewService(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			closeAll()
			return nil, err
		}
		source, searcher = svc, svc
	}

	return &env{
		cfg:      cfg,
		orch:     syncer.New(source, sink, registry, accounts, log),
		searcher: searcher,
		local:    local,
		close:    closeAll,
	}, nil
}

func newCreateAccountCmd() *cobra.Command {
	var userID, name string

	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Register a bank account in the local database",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if e.local == nil {
				return fmt.Errorf("create-account requires the sqlite store")
			}

			account := &domain.BankAccount{
				ID:     uuid.NewString(),
				UserID: userID,
				Name:   name,
			}
			if err := e.local.CreateAccount(cmd.Context(), account); err != nil {
				return err
			}

			fmt.Printf("Created bank account %s (%s)\n", account.ID, account.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "owning user ID")
	cmd.Flags().StringVar(&name, "name", "", "account display name")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect <account-id> <folder-id>",
		Short: "Link a bank account to a statement folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.orch.ConnectFolder(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Account %s connected to folder %s\n", args[0], args[1])
			return nil
		},
	}
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search statement folders by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if e.searcher == nil {
				return fmt.Errorf("folder search is not available for the %s source", e.cfg.Source)
			}

			folders, err := e.searcher.SearchFolders(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(folders) == 0 {
				fmt.Println("No folders found")
				return nil
			}
			for _, f := range folders {
				fmt.Printf("%s\t%s\t%s\n", f.ID, f.Name, f.WebViewLink)
			}
			return nil
		},
	}
	return cmd
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <account-id>",
		Short: "Run a statement sync for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			result, err := e.orch.SyncAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Println(result.Message)
			fmt.Printf("Files considered:       %d\n", result.FilesConsidered)
			fmt.Printf("Transactions processed: %d\n", result.TransactionsProcessed)
			fmt.Printf("Duplicates skipped:     %d\n", result.DuplicatesSkipped)
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e)
			}
			return nil
		},
	}
	return cmd
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <account-id>",
		Short: "Show the sync status for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			status, err := e.orch.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !status.Connected {
				fmt.Println("Not connected to a statement folder")
				return nil
			}
			fmt.Printf("Connected to folder %s\n", status.FolderID)
			if status.LastSyncAt != nil {
				fmt.Printf("Last synced at %s\n", status.LastSyncAt.Format("2006-01-02 15:04:05"))
			} else {
				fmt.Println("Never synced")
			}
			return nil
		},
	}
	return cmd
}
