package dbcopy

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/qchem/gausscat/internal/app"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore"
	"github.com/qchem/gausscat/internal/logger"
)

// Command copies a SQLite catalogue into the configured database.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		sqlitePath string
		opts       datastore.TransferOptions
		skipVerify bool
	)

	cmd := &cobra.Command{
		Use:   "dbcopy",
		Short: "Copy a SQLite catalogue into the configured database",
		Long: `Copies every catalogue and identity row from a SQLite file into the
database selected in the configuration, typically MySQL. Primary keys are
kept, so URLs and API ids stay valid. Rows already present are skipped and
an interrupted copy can simply be run again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceSettings := settings.Database
			sourceSettings.Type = conf.DatabaseSQLite
			sourceSettings.SQLite.Path = sqlitePath

			src, err := datastore.Open(&sourceSettings, logger.Global().Module("dbcopy"))
			if err != nil {
				return err
			}
			defer src.Close()

			dst, err := app.OpenStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer dst.Close()

			if src.Dialect() == dst.Dialect() && src.Target() == dst.Target() {
				return fmt.Errorf("source and target are the same database: %s", src.Target())
			}

			stats, err := datastore.Transfer(cmd.Context(), src, dst, opts)
			if err != nil {
				return err
			}
			printStats(cmd, stats)

			if skipVerify {
				return nil
			}
			mismatches, err := datastore.VerifyTransfer(cmd.Context(), src, dst)
			if err != nil {
				return err
			}
			if len(mismatches) > 0 {
				for _, m := range mismatches {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: source %d rows, target %d rows\n", m.Table, m.Source, m.Target)
				}
				return fmt.Errorf("verification failed for %d table(s)", len(mismatches))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Verification passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&sqlitePath, "from", "", "path to the source SQLite database")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", datastore.DefaultTransferBatchSize, "rows per batch")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "delete target rows before copying")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "skip the row count comparison")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func printStats(cmd *cobra.Command, stats *datastore.TransferStats) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Table\tSource\tCopied\tSkipped\t")
	for _, t := range stats.Tables {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t\n", t.Table, t.Source, t.Copied, t.Skipped)
	}
	_ = w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "Copied %d rows in %s\n", stats.Copied(), stats.Duration.Round(time.Millisecond))
}
