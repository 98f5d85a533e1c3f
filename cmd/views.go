package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loctree/loctree/internal/output"
)

var routesCmd = &cobra.Command{
	Use:          "routes",
	Short:        "Report decorator-derived HTTP routes",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		if jsonOutput {
			type route struct {
				File   string `json:"file"`
				Method string `json:"method"`
				Path   string `json:"path"`
				Line   int    `json:"line"`
			}
			var routes []route
			for _, fa := range snap.Files {
				for _, r := range fa.Routes {
					routes = append(routes, route{fa.Path, r.Method, r.Path, r.Line})
				}
			}
			return output.RenderJSON(cmd.OutOrStdout(), routes)
		}
		output.RenderRoutes(cmd.OutOrStdout(), snap)
		return nil
	},
}

var hotspotsCmd = &cobra.Command{
	Use:          "hotspots",
	Short:        "Report hub files that concentrate imports and exports",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		hubs := output.HubFiles(snap)
		if jsonOutput {
			return output.RenderJSON(cmd.OutOrStdout(), hubs)
		}
		output.RenderHubs(cmd.OutOrStdout(), hubs)
		return nil
	},
}

var layoutmapCmd = &cobra.Command{
	Use:          "layoutmap",
	Short:        "Report CSS layout layers (position, z-index) per stylesheet",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		if jsonOutput {
			type layer struct {
				File     string `json:"file"`
				Selector string `json:"selector"`
				Position string `json:"position,omitempty"`
				ZIndex   string `json:"z_index,omitempty"`
				Line     int    `json:"line"`
			}
			var layers []layer
			for _, fa := range snap.Files {
				for _, l := range fa.CSSLayers {
					layers = append(layers, layer{fa.Path, l.Selector, l.Position, l.ZIndex, l.Line})
				}
			}
			return output.RenderJSON(cmd.OutOrStdout(), layers)
		}
		output.RenderLayoutMap(cmd.OutOrStdout(), snap)
		return nil
	},
}

var focusCmd = &cobra.Command{
	Use:          "focus <path>",
	Short:        "Show one file's imports, importers, exports, and bridges",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot()
		if err != nil {
			return err
		}
		target := filepath.ToSlash(args[0])
		fa := snap.FileByPath(target)
		if fa == nil {
			return fmt.Errorf("no file %q in snapshot (paths are repo-relative)", target)
		}
		if jsonOutput {
			return output.RenderJSON(cmd.OutOrStdout(), fa)
		}
		output.RenderFocus(cmd.OutOrStdout(), snap, fa)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{routesCmd, hotspotsCmd, layoutmapCmd, focusCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
		rootCmd.AddCommand(c)
	}
}
