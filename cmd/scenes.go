package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "List the built-in scene presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), formatScenes(scene.ListScenes()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenesCmd)
}

func formatScenes(scenes []scene.SceneInfo) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"ID", "Name", "Description"})
	for _, info := range scenes {
		table.Append([]string{info.ID, info.DisplayName, info.Description})
	}
	table.Render()
	return buf.String()
}
