// Package httpserver defines the contract the command line uses to run an
// HTTP server, so that commands and tests can swap the implementation.
package httpserver

import (
	"context"

	"github.com/labstack/echo/v4"
)

// Server defines the interface for HTTP servers in gausscat.
type Server interface {
	// Start begins serving HTTP requests in a background goroutine and
	// returns immediately. Use Shutdown() to stop the server.
	Start()

	// StartWithGracefulShutdown serves until ctx ends or a termination
	// signal arrives, then shuts down.
	StartWithGracefulShutdown(ctx context.Context) error

	// Shutdown gracefully stops the server and releases resources.
	Shutdown() error

	// Echo returns the router, mainly for tests.
	Echo() *echo.Echo
}
