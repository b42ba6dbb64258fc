// Package factory wraps constructors so callers can create fresh instances
// on demand without knowing their dependencies.
package factory

import (
	"fmt"
	"sync/atomic"

	"github.com/qchem/gausscat/internal/logger"
)

// Factory creates values of T.
type Factory[T any] struct {
	fn      func() T
	log     logger.Logger
	name    string
	created atomic.Int64
}

// New wraps fn. Each Create is logged at debug level.
func New[T any](fn func() T, log logger.Logger) *Factory[T] {
	if fn == nil {
		panic("factory: nil constructor")
	}
	if log == nil {
		log = logger.NewDiscard()
	}
	var zero T
	return &Factory[T]{fn: fn, log: log, name: fmt.Sprintf("%T", zero)}
}

// Create returns a new instance.
func (f *Factory[T]) Create() T {
	v := f.fn()
	n := f.created.Add(1)
	f.log.Debug("instance created", logger.String("type", f.name), logger.Int64("count", n))
	return v
}

// Created reports how many instances this factory has made.
func (f *Factory[T]) Created() int64 {
	return f.created.Load()
}
