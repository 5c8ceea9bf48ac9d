package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tiller"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tiller",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tiller version %s\n", strings.TrimSpace(tiller.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
