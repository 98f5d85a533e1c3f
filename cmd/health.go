package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loctree/loctree/internal/output"
)

var healthCmd = &cobra.Command{
	Use:          "health",
	Short:        "Report the overall repository health score",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		report := output.BuildReport(snap, output.Options{
			Dead:     deadOptions(),
			OpenURLs: openURLs,
		})

		if jsonOutput {
			return output.RenderJSON(cmd.OutOrStdout(), report)
		}
		output.RenderHealth(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	addModeFlags(healthCmd)
	rootCmd.AddCommand(healthCmd)
}
