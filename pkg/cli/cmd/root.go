// Package cmd wires the devlab command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// timingFlagName is the persistent flag toggling per-step timing output.
const timingFlagName = "timings"

// NewRootCmd creates and returns the root command with version info and
// subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "devlab",
		Short:        "devlab provisions a local Kubernetes development environment",
		Long: "devlab provisions a local kind cluster with Istio, MongoDB, and a " +
			"monitoring stack so application development can start immediately.",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.PersistentFlags().Bool(
		timingFlagName,
		false,
		"Show per-step timing output",
	)

	cmd.AddCommand(NewUpCmd())
	cmd.AddCommand(NewDownCmd())

	return cmd
}

// Execute runs the provided root command.
func Execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
