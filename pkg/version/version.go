// Package version provides the loct tool version.
package version

// Version is the loct tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/loctree/loctree/pkg/version.Version=0.5.0"
var Version = "dev"
