package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qchem/gausscat/internal/app"
	"github.com/qchem/gausscat/internal/conf"
)

// Command creates or updates the database schema.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Applies the schema of every catalogue and identity table to the configured database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.OpenStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Database %s (%s) is up to date\n", store.Target(), store.Dialect())
			return nil
		},
	}

	return cmd
}
