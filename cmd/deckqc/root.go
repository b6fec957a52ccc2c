// Package main provides the entry point for the deckqc CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for deckqc.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deckqc",
		Short: "Quality-control tool for reservoir simulation input decks",
		Long: `deckqc checks reservoir simulation input decks (ECLIPSE-style .DATA files)
before they reach the simulator.

It splits a deck into keyword sections, runs structural and value checks
(END keyword, WELSPECS cross-references, initial pressures, PVT table
completeness, COMPDAT status entries), and derives a remediation plan for
any issues found.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
