package common

import (
	"os"
	"sync"

	"github.com/op/go-logging"
)

var (
	logMu   sync.Mutex
	loggers = make(map[string]*logging.Logger)

	logFormat = logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
	)
)

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetBackend(logging.NewBackendFormatter(backend, logFormat))
	logging.SetLevel(logging.INFO, "")
}

// GetLogger returns the logger registered under namespace, creating and
// registering it on first use.
func GetLogger(namespace string) *logging.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	if l, ok := loggers[namespace]; ok {
		return l
	}
	l := logging.MustGetLogger(namespace)
	loggers[namespace] = l
	return l
}

// SetVerbose enables debug-level output for all registered namespaces.
func SetVerbose(verbose bool) {
	level := logging.INFO
	if verbose {
		level = logging.DEBUG
	}
	logging.SetLevel(level, "")
}
