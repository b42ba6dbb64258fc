package observability

import (
	"fmt"

	"github.com/qchem/gausscat/internal/logger"
)

var log = logger.Global().Module("metrics")

// promLogger routes promhttp errors to the module logger.
type promLogger struct{}

func (promLogger) Println(v ...any) {
	log.Warn("metrics handler error", logger.String("error", fmt.Sprint(v...)))
}
