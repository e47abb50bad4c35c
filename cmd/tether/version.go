// Version command for the tether CLI.
package main

import (
	"fmt"

	"github.com/mesh-intelligence/tether/pkg/tether"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tether version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tether", tether.Version)
	},
}
