package serve

import (
	"github.com/spf13/cobra"

	"github.com/qchem/gausscat/internal/api"
	"github.com/qchem/gausscat/internal/app"
	"github.com/qchem/gausscat/internal/buildinfo"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/httpserver"
	"github.com/qchem/gausscat/internal/logger"
)

// Command runs the web server.
func Command(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  "Serves the JSON API under /api/v1 and the HTML pages until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				settings.WebServer.Port = port
			}

			a, err := app.New(cmd.Context(), settings, build)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := []api.ServerOption{
				api.WithStore(a.Store),
				api.WithRepositories(a.Repos),
				api.WithIdentity(a.Identity),
				api.WithBuildInfo(build),
				api.WithLookupCache(a.Lookups),
			}
			if a.Metrics != nil {
				opts = append(opts, api.WithMetrics(a.Metrics))
			}

			var srv httpserver.Server
			srv, err = api.New(settings, opts...)
			if err != nil {
				return err
			}

			logger.Global().Module("main").Info("gausscat started",
				logger.String("version", build.GetVersion()),
				logger.String("address", settings.WebServer.Address()))
			return srv.StartWithGracefulShutdown(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port, overrides webserver.port")

	return cmd
}
