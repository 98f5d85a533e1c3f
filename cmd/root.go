// Package cmd wires the loct CLI: scan plus the finding commands that read
// the persisted snapshot.
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/loctree/loctree/internal/config"
	"github.com/loctree/loctree/internal/output"
	"github.com/loctree/loctree/internal/snapshot"
	"github.com/loctree/loctree/pkg/types"
	"github.com/loctree/loctree/pkg/version"
)

var (
	verbose      bool
	noColor      bool
	jsonOutput   bool
	snapshotPath string
	openURLs     bool
)

var rootCmd = &cobra.Command{
	Use:     "loct",
	Short:   "loct - cross-language dependency, bridge, and dead-code analysis",
	Long:    "loct scans a repository across TypeScript, Rust, Python, Go, and CSS,\npersists a snapshot, and derives findings: dead exports, import cycles,\ncommand/event bridges, twins, hotspots, and an overall health score.",
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.InitVerbose(verbose)
		output.InitColor(noColor)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output (LOCTREE_VERBOSE also enables it)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", snapshot.DefaultPath, "snapshot file path")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command. ExitError codes pass through; other
// errors print with the loct error prefix and exit 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *types.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				config.Errorf("%s", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		config.Errorf("%v", err)
		os.Exit(1)
	}
}

// loadSnapshot is the shared entry for finding commands.
func loadSnapshot() (*types.Snapshot, error) {
	return snapshot.MustLoad(snapshotPath)
}
