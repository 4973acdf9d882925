// Outguard scans outgoing chat messages for leaked credentials.
//
// Usage:
//
//	# Run the hook daemon (HTTP on 127.0.0.1:9190)
//	outguard serve
//
//	# Scan a file or stdin once
//	outguard scan reply.txt
//	cat reply.txt | outguard scan -
//
//	# Show which secret sources were loaded
//	outguard sources
//
// Configuration is read from ~/.config/outguard/config.yaml and OUTGUARD_*
// environment variables. See internal/config.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// errIncident signals a reportable scan result; the process exits 1
// without printing an error.
var errIncident = errors.New("incident detected")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errIncident) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "outguard",
		Short: "Post-send DLP scanner for outgoing chat messages",
		Long: `outguard inspects messages a bot has already sent for leaked credentials.
It matches known secrets, credential signatures and high-entropy tokens,
records incidents in action-log.md and alerts the conversation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/outguard/config.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newScanCmd(opts),
		newSourcesCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "outguard by Fyrsmith Labs\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}
