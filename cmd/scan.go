package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/loctree/loctree/internal/config"
	"github.com/loctree/loctree/internal/discovery"
	"github.com/loctree/loctree/internal/pipeline"
)

var (
	configPath    string
	fullScan      bool
	noGitignore   bool
	ignoreGlobs   []string
	focusGlobs    []string
	excludeGlobs  []string
	maxDepth      int
	includeHidden bool
)

var scanCmd = &cobra.Command{
	Use:          "scan <root> [extra-roots...]",
	Short:        "Scan a repository and write the snapshot",
	Long:         "Scan walks the given roots, extracts imports, exports, bridges, and\nuses per file, and persists the snapshot the finding commands read.\nUnchanged files (same mtime and size) are reused from the prior snapshot.",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %w", err)
		}
		var extra []string
		for _, a := range args[1:] {
			abs, err := filepath.Abs(a)
			if err != nil {
				return fmt.Errorf("cannot resolve path %s: %w", a, err)
			}
			extra = append(extra, abs)
		}

		projectCfg, err := config.LoadProjectConfig(root, configPath)
		if err != nil {
			return err
		}

		progress := pipeline.NewProgress(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))

		snap, err := pipeline.Run(pipeline.ScanConfig{
			Root:         root,
			ExtraRoots:   extra,
			SnapshotPath: snapshotPath,
			Full:         fullScan,
			Project:      projectCfg,
			Discovery: discovery.Options{
				UseGitignore:  !noGitignore,
				IgnoreGlobs:   ignoreGlobs,
				FocusGlobs:    focusGlobs,
				ExcludeGlobs:  excludeGlobs,
				MaxDepth:      maxDepth,
				IncludeHidden: includeHidden,
			},
		}, progress.Func())
		if err != nil {
			progress.Done("")
			return err
		}

		progress.Done("")
		fmt.Fprintf(cmd.OutOrStdout(), "scanned %d files (%d loc) in %dms -> %s\n",
			snap.Metadata.FileCount, snap.Metadata.TotalLOC,
			snap.Metadata.ScanDurationMS, snapshotPath)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&configPath, "config", "", "path to .loctree/config.toml")
	scanCmd.Flags().BoolVar(&fullScan, "full", false, "ignore the prior snapshot and re-extract everything")
	scanCmd.Flags().BoolVar(&noGitignore, "no-gitignore", false, "do not honor .gitignore")
	scanCmd.Flags().StringSliceVar(&ignoreGlobs, "ignore", nil, "glob of paths to ignore (repeatable)")
	scanCmd.Flags().StringSliceVar(&focusGlobs, "focus", nil, "only scan paths matching this glob (repeatable)")
	scanCmd.Flags().StringSliceVar(&excludeGlobs, "exclude", nil, "exclude paths matching this glob (repeatable)")
	scanCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum directory depth (0 = unlimited)")
	scanCmd.Flags().BoolVar(&includeHidden, "hidden", false, "include hidden files and directories")
	rootCmd.AddCommand(scanCmd)
}
