package config

import (
	"fmt"
	"os"
	"sync"
)

var (
	verboseMu sync.Mutex
	verboseOn bool
)

// InitVerbose enables the verbose sink. Called once from the CLI; the
// LOCTREE_VERBOSE environment variable (any non-empty value) also enables it.
func InitVerbose(flag bool) {
	verboseMu.Lock()
	defer verboseMu.Unlock()
	verboseOn = flag || os.Getenv("LOCTREE_VERBOSE") != ""
}

// VerboseEnabled reports whether verbose logging is on.
func VerboseEnabled() bool {
	verboseMu.Lock()
	defer verboseMu.Unlock()
	return verboseOn
}

// Verbosef writes a debug line to stderr when verbose logging is enabled.
// Parse errors and cache statistics go through here.
func Verbosef(format string, args ...any) {
	if !VerboseEnabled() {
		return
	}
	fmt.Fprintf(os.Stderr, "[loct] "+format+"\n", args...)
}

// Errorf writes a human-readable error line to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[loct][error] "+format+"\n", args...)
}
