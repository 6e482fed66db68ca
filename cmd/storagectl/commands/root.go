// Package commands implements the storagectl CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var configPath string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "storagectl",
	Short: "storagectl manages and exercises the resumable upload engine",
	Long: `storagectl is the operator tool for the resumable multipart upload engine.

Use it to initialize a configuration file, run an upload session against a
local backend for manual testing, inspect the state of an in-flight upload,
and follow the engine's log output.

Use "storagectl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/storageengine/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(logsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("storagectl %s (commit: %s, built: %s)\n", Version, Commit, Date)
		return nil
	},
}
