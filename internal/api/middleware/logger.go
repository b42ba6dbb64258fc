// Package middleware provides HTTP middleware components for the gausscat server.
package middleware

import "github.com/qchem/gausscat/internal/logger"

// GetLogger returns the middleware package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("http")
}
