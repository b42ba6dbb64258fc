package version

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/qchem/gausscat/internal/buildinfo"
)

// Command prints the build information.
func Command(build *buildinfo.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := build.Map()
			for _, key := range slices.Sorted(maps.Keys(info)) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", key+":", info[key])
			}
			return nil
		},
	}

	return cmd
}
