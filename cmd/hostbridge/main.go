package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serverName = "hostbridge"

var (
	Version  = ""
	CommitID = ""
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serverName, err)
		os.Exit(1)
	}
}

// NewRootCommand wires every subcommand.
func NewRootCommand() *cobra.Command {
	var cfgFile string
	rootCmd := &cobra.Command{
		Use:           serverName + " <command> [arguments]",
		Short:         serverName + " runs Wasm contracts against a local state directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       serverName + " run --config hostbridge.yaml --contract secret1... --entry query --msg '{}'",
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file (yaml, toml or json)")

	rootCmd.AddCommand(
		newStoreCmd(&cfgFile),
		newRemoveCmd(&cfgFile),
		newRunCmd(&cfgFile),
		newStateCmd(&cfgFile),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s-%s\n", serverName, Version, CommitID)
		},
	}
}
