package main

import (
	"fmt"
	"os"

	"github.com/aretw0/tiller/internal/cli"
	"github.com/aretw0/tiller/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// prepareCmd represents the prepare command
var prepareCmd = &cobra.Command{
	Use:   "prepare [spec]",
	Short: "Prepare the targets matched by spec",
	Long:  `Probes, installs the agent where missing and collects facts from every target matched by spec ("all", a group name or a host name).`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		spec := "all"
		if len(args) > 0 {
			spec = args[0]
		}

		inventory, _ := cmd.Flags().GetString("inventory")
		logLevel, _ := cmd.Flags().GetString("log-level")
		quiet, _ := cmd.Flags().GetBool("quiet")
		workers, _ := cmd.Flags().GetInt("workers")
		report, _ := cmd.Flags().GetBool("report")
		serve, _ := cmd.Flags().GetString("serve")
		redisAddr, _ := cmd.Flags().GetString("redis")
		sshUser, _ := cmd.Flags().GetString("ssh-user")
		sshKey, _ := cmd.Flags().GetString("ssh-key")

		if !quiet && tui.IsTerminal() {
			tui.PrintBanner()
		}

		err := cli.RunPrepare(cli.PrepareOptions{
			Inventory:  inventory,
			Spec:       spec,
			Workers:    workers,
			LogLevel:   logLevel,
			Quiet:      quiet,
			Report:     report,
			ServeAddr:  serve,
			RedisAddr:  redisAddr,
			SSHUser:    sshUser,
			SSHKeyPath: sshKey,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().IntP("workers", "w", 0, "Install worker pool size (default 4)")
	prepareCmd.Flags().Bool("report", false, "Print a run report when done")
	prepareCmd.Flags().String("serve", "", "Expose health, status and metrics on this address (e.g. :9090)")
	prepareCmd.Flags().String("redis", "", "Redis address for shared target state (default in-memory)")
	prepareCmd.Flags().String("ssh-user", os.Getenv("USER"), "SSH user for target connections")
	prepareCmd.Flags().String("ssh-key", "", "Path to the SSH private key")

	// Make 'prepare' the default when no command is provided
	rootCmd.Run = prepareCmd.Run
	rootCmd.Args = prepareCmd.Args
}
