package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/desh/internal/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of desh",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if short, _ := cmd.Flags().GetBool("short"); !short {
			fmt.Fprintln(out, tui.Banner(version))
		}
		fmt.Fprintf(out, "desh %s\n", version)
		fmt.Fprintln(out, "github.com/pders01/desh")
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version line")
	rootCmd.AddCommand(versionCmd)
}
