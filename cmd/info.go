package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display host information relevant to rendering",
	Long:  "Show the CPU model, core counts, memory and the worker count render and serve use by default.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), formatHostInfo())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// formatHostInfo builds a table of host facts. Probes that fail on this
// platform are reported as unknown instead of failing the command.
func formatHostInfo() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Host", "Value"})

	model, clock := "unknown", "unknown"
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		model = infos[0].ModelName
		clock = fmt.Sprintf("%.2f GHz", infos[0].Mhz/1000)
	}
	table.Append([]string{"CPU", model})
	table.Append([]string{"Clock", clock})

	table.Append([]string{"Logical cores", countOrUnknown(true)})
	table.Append([]string{"Physical cores", countOrUnknown(false)})

	memory := "unknown"
	if vm, err := mem.VirtualMemory(); err == nil {
		memory = fmt.Sprintf("%.1f GiB total, %.1f GiB available",
			float64(vm.Total)/(1<<30), float64(vm.Available)/(1<<30))
	}
	table.Append([]string{"Memory", memory})

	table.Append([]string{"GOMAXPROCS", fmt.Sprintf("%d", runtime.GOMAXPROCS(0))})
	table.SetFooter([]string{"Default workers", fmt.Sprintf("%d", defaultWorkers())})

	table.Render()
	return buf.String()
}

func countOrUnknown(logical bool) string {
	n, err := cpu.Counts(logical)
	if err != nil || n == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", n)
}
