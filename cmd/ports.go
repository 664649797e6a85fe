package cmd

import (
	"fmt"

	"github.com/sergev/sony9pin/link"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long:  "List serial ports with the index that can be given instead of a port name.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := link.ListPorts()
		cobra.CheckErr(err)

		out := cmd.OutOrStdout()
		if len(ports) == 0 {
			fmt.Fprintln(out, "No serial ports found.")
			return
		}
		fmt.Fprintln(out, "Port names:")
		for i, port := range ports {
			fmt.Fprintf(out, "  %s\n", link.Describe(i, port))
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
