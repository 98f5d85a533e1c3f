package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loctree/loctree/internal/analyzer"
	"github.com/loctree/loctree/internal/output"
	"github.com/loctree/loctree/pkg/types"
)

var breakingOnly bool

var cyclesCmd = &cobra.Command{
	Use:          "cycles",
	Short:        "Report strict and lazy import cycles",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		report := analyzer.FindCycles(snap)

		if jsonOutput {
			if err := output.RenderJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
		} else {
			output.RenderCycles(cmd.OutOrStdout(), report, breakingOnly)
		}

		// Breaking cycles fail the build when asked for.
		if breakingOnly && report.HasBreaking() {
			return &types.ExitError{Code: 1}
		}
		return nil
	},
}

func init() {
	cyclesCmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cyclesCmd.Flags().BoolVar(&breakingOnly, "breaking-only", false, "only show Breaking cycles; exit 1 when any exist")
	rootCmd.AddCommand(cyclesCmd)
}
