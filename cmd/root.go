package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qchem/gausscat/cmd/dbcopy"
	"github.com/qchem/gausscat/cmd/migrate"
	"github.com/qchem/gausscat/cmd/seed"
	"github.com/qchem/gausscat/cmd/serve"
	"github.com/qchem/gausscat/cmd/user"
	"github.com/qchem/gausscat/cmd/version"
	"github.com/qchem/gausscat/internal/buildinfo"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/telemetry"
)

const telemetryFlushTimeout = 2 * time.Second

// RootCommand creates and returns the root command. settings is filled in
// before any subcommand other than version runs.
func RootCommand(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	var opts conf.Options
	var central *logger.CentralLogger

	rootCmd := &cobra.Command{
		Use:           "gausscat",
		Short:         "Catalogue of Gaussian calculation methods",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, &opts)

	versionCmd := version.Command(build)
	subcommands := []*cobra.Command{
		serve.Command(settings, build),
		migrate.Command(settings),
		dbcopy.Command(settings),
		seed.Command(settings),
		user.Command(settings),
		versionCmd,
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		loaded, err := conf.Load(opts)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		*settings = *loaded

		central, err = logger.NewCentralLogger(&settings.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logger.SetGlobal(central)

		if err := telemetry.Init(&settings.Sentry, build.GetVersion()); err != nil {
			// telemetry is optional, keep running without it
			central.Module("main").Warn("error telemetry disabled", logger.Error(err))
		}
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		telemetry.Flush(telemetryFlushTimeout)
		if central != nil {
			return central.Close()
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface.
// Everything else comes from the config file and GAUSSCAT_* variables.
func setupFlags(rootCmd *cobra.Command, opts *conf.Options) {
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to config.yaml (default: search ., ~/.config/gausscat, /etc/gausscat)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug output")
}
