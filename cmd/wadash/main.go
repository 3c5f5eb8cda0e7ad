package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// defaultConfigPath is used by every command's --config flag.
const defaultConfigPath = "wadash.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wadash",
		Short: "WhatsApp gateway operator console",
		Long:  "wadash manages WhatsApp instances and scheduled messages on a remote gateway from a web dashboard or the terminal.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newInstanceCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newScheduleCmd())
	cmd.AddCommand(newDigestCmd())
	cmd.AddCommand(newActivityCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wadash %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// addConfigFlag registers the shared -c/--config flag.
func addConfigFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", defaultConfigPath, "path to wadash config file")
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
