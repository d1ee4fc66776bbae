package document

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

// SetLogger sets the logger used for diagnostics about malformed load payloads.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

func debugLog() *zerolog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
