package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loctree/loctree/internal/analyzer"
	"github.com/loctree/loctree/internal/output"
)

var (
	withTests      bool
	withHelpers    bool
	libraryMode    bool
	pyLibraryMode  bool
	highConfidence bool
	includeGo      bool
	exampleGlobs   []string
)

// deadOptions assembles the shared dead-export filter config from flags.
func deadOptions() analyzer.DeadExportOptions {
	return analyzer.DeadExportOptions{
		IncludeTests:      withTests,
		IncludeHelpers:    withHelpers,
		LibraryMode:       libraryMode,
		PythonLibraryMode: pyLibraryMode,
		HighConfidence:    highConfidence,
		ExampleGlobs:      exampleGlobs,
		IncludeGo:         includeGo,
	}
}

// addModeFlags registers the language-mode flags shared by the finding
// commands.
func addModeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&withTests, "with-tests", false, "include test files")
	cmd.Flags().BoolVar(&withHelpers, "with-helpers", false, "include scripts/tools/helpers directories")
	cmd.Flags().BoolVar(&libraryMode, "library", false, "library mode: suppress example-glob exports")
	cmd.Flags().BoolVar(&pyLibraryMode, "python-library", false, "treat Python __all__ entries as public API")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&openURLs, "open-urls", false, "attach loctree://open editor links")
	cmd.Flags().StringSliceVar(&exampleGlobs, "example-glob", nil, "extra example globs suppressed in library mode")
	cmd.Flags().BoolVar(&includeGo, "experimental-go", false, "include Go exports, judged by package-scoped identifier uses")
}

var deadCmd = &cobra.Command{
	Use:          "dead",
	Short:        "Report exported symbols with no detectable consumer",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		dead := analyzer.FindDeadExports(snap, deadOptions())
		if openURLs {
			for i := range dead {
				dead[i].OpenURL = output.OpenURL(dead[i].File, dead[i].Line)
			}
		}

		if jsonOutput {
			return output.RenderJSON(cmd.OutOrStdout(), dead)
		}
		output.RenderDead(cmd.OutOrStdout(), dead)
		return nil
	},
}

func init() {
	addModeFlags(deadCmd)
	deadCmd.Flags().BoolVar(&highConfidence, "high-confidence", false, "suppress default exports; report confidence very_high")
	rootCmd.AddCommand(deadCmd)
}
