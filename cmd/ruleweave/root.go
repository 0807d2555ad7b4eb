// Package main is the entry point for the ruleweave CLI.
package main

import (
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

// Global flags available to all subcommands.
var logFormat string

const defaultLogFormat = "json"

// NewRootCmd creates the root command for the ruleweave CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ruleweave",
		Short: "ruleweave - policy-as-code evaluation for infrastructure templates",
		Long: `ruleweave evaluates structured infrastructure templates (JSON or YAML)
against rules written in a small domain-specific language, reporting
PASS/FAIL/SKIP per rule with a structured failure trace.`,
	}

	cmd.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "log format (json or text)")

	cmd.AddCommand(newEvaluateCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		// cobra already prints the error; a distinct exit code signals
		// failure to callers that parse the process result rather than
		// stdout/stderr.
		exitWithError(err)
	}
}
