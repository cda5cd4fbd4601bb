package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/multifetch/internal/logger"
	"github.com/glorpus-work/multifetch/pkg/ledger"
)

// NewLedgerCmd creates the ledger command with subcommands.
func NewLedgerCmd() *cobra.Command {
	var ledgerPath string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the download ledger",
		Long:  "List or forget the local paths recorded for previously downloaded URIs",
	}
	cmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "Ledger file (default: settings.ledger_path)")

	cmd.AddCommand(
		newLedgerListCmd(&ledgerPath),
		newLedgerForgetCmd(&ledgerPath),
	)

	return cmd
}

func newLedgerListCmd(ledgerPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openLedger(*ledgerPath)
			if err != nil {
				return err
			}
			return printLedger(cmd, store)
		},
	}
}

func newLedgerForgetCmd(ledgerPath *string) *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "forget URI",
		Short: "Remove a URI from the ledger",
		Long:  "Remove the entry for URI and destination directory so the next run picks a fresh local path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedger(*ledgerPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dest") {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				destDir = cfg.Settings.DestDir
			}

			removed, err := store.Forget(args[0], destDir)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no ledger entry for %s in %s", args[0], destDir)
			}
			logger.Success("Ledger entry removed", logger.Fields{"uri": args[0], "dest": destDir})
			return nil
		},
	}
	cmd.Flags().StringVarP(&destDir, "dest", "d", "", "Destination directory the URI was downloaded to (default: settings.dest_dir)")

	return cmd
}

func openLedger(path string) (*ledger.Store, error) {
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Settings.LedgerPath
	}
	return ledger.Open(path)
}

func printLedger(cmd *cobra.Command, store *ledger.Store) error {
	keys := store.Keys()
	if len(keys) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Ledger is empty")
		return nil
	}

	entries := store.Entries()
	tabWriter := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "URI\tDEST\tPATH")
	_, _ = fmt.Fprintln(tabWriter, "---\t----\t----")
	for _, key := range keys {
		uri, dest, _ := strings.Cut(key, "|")
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\n", uri, dest, entries[key])
	}
	return tabWriter.Flush()
}
