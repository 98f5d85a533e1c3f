package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loctree/loctree/internal/analyzer"
	"github.com/loctree/loctree/internal/output"
)

var commandsCmd = &cobra.Command{
	Use:          "commands",
	Short:        "Report frontend↔backend command bridges",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		bridges := snap.CommandBridges
		if bridges == nil {
			bridges = analyzer.ReconcileCommandBridges(snap)
		}

		if jsonOutput {
			return output.RenderJSON(cmd.OutOrStdout(), bridges)
		}
		output.RenderBridges(cmd.OutOrStdout(), bridges)
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:          "events",
	Short:        "Report emit↔listen event bridges",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}

		events := snap.EventBridges
		if events == nil {
			events = analyzer.ReconcileEventBridges(snap)
		}

		if jsonOutput {
			return output.RenderJSON(cmd.OutOrStdout(), events)
		}
		output.RenderEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

func init() {
	commandsCmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	eventsCmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(eventsCmd)
}
