package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loctree/loctree/internal/analyzer"
	"github.com/loctree/loctree/internal/output"
)

var zombieCmd = &cobra.Command{
	Use:          "zombie",
	Short:        "Combined dead + shadow + 0-reference view",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		dead := analyzer.FindDeadExports(snap, deadOptions())
		twins := analyzer.FindTwins(snap, withTests)

		if jsonOutput {
			return output.RenderJSON(cmd.OutOrStdout(), map[string]any{
				"dead_exports": dead,
				"shadows":      twins.Shadows,
				"dead_parrots": twins.Parrots,
			})
		}
		output.RenderZombie(cmd.OutOrStdout(), dead, twins)
		return nil
	},
}

var twinsCmd = &cobra.Command{
	Use:          "twins",
	Short:        "Report symbols exported from multiple files",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		twins := analyzer.FindTwins(snap, withTests)
		if jsonOutput {
			return output.RenderJSON(cmd.OutOrStdout(), twins)
		}
		output.RenderTwins(cmd.OutOrStdout(), twins)
		return nil
	},
}

func init() {
	addModeFlags(zombieCmd)
	twinsCmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	twinsCmd.Flags().BoolVar(&withTests, "with-tests", false, "include test files")
	rootCmd.AddCommand(zombieCmd)
	rootCmd.AddCommand(twinsCmd)
}
