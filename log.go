//go:build amd64 || arm64

package javabridge

import (
	"sync"

	"go.uber.org/zap"
)

// The package logger carries diagnostics for contract violations and
// exception state. It defaults to a nop logger, which stays silent but
// still exits the process on Fatal, so the abort semantics of the
// bridge hold even with logging disabled.
var (
	logMu sync.RWMutex
	log   = zap.NewNop()
)

// SetLogger installs the logger used for bridge diagnostics. Passing
// nil restores the default nop logger.
func SetLogger(l *zap.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

// Logger returns the logger currently used for bridge diagnostics.
func Logger() *zap.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}
