package cmd

import (
	"fmt"
	"io"

	"github.com/sergev/sony9pin/devices"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List known device types",
	Long:  "List the device type codes that resolve to a make and model, including [[device]] entries from the config.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		table, err := conf.Devices()
		cobra.CheckErr(err)
		listDevices(cmd.OutOrStdout(), table)
	},
}

func listDevices(w io.Writer, table *devices.Table) {
	for _, e := range devices.WellKnownEntries() {
		fmt.Fprintf(w, "0x%04x  %-12s %s\n", e.Code, e.Make, e.Model())
	}
	for _, e := range table.Entries() {
		if _, ok := devices.WellKnown(e.Code); ok {
			continue
		}
		fmt.Fprintf(w, "0x%04x  %-12s %s\n", e.Code, e.Make, e.Model())
	}
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
