package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/kinema"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of kinema",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kinema version %s\n", strings.TrimSpace(kinema.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
