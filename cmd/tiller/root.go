package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tiller",
	Short: "Tiller prepares remote targets for management",
	Long:  `Tiller makes sure every target in your inventory runs the management agent, then collects facts from all of them in one batched pass.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("inventory", "i", "inventory.yml", "Path to the YAML inventory file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress logs and system messages")
}
