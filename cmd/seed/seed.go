package seed

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/qchem/gausscat/internal/app"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/logger"
	catalogueseed "github.com/qchem/gausscat/internal/seed"
)

// Command imports a catalogue from a YAML file.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [catalogue.yaml]",
		Short: "Import catalogue rows from a YAML file",
		Long:  "Adds the rows of the file that are not in the database yet. The import is all or nothing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := catalogueseed.LoadFile(args[0])
			if err != nil {
				return err
			}

			store, err := app.OpenStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer store.Close()

			importer := catalogueseed.NewImporter(store.DB(), logger.Global().Module("seed"))
			result, err := importer.Import(cmd.Context(), doc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entity := range slices.Sorted(maps.Keys(result.Created)) {
				fmt.Fprintf(out, "%-40s %d created\n", entity, result.Created[entity])
			}
			created, skipped := result.Total()
			fmt.Fprintf(out, "%d rows created, %d already present\n", created, skipped)
			return nil
		},
	}

	return cmd
}
