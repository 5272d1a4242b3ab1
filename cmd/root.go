package cmd

import (
	"fmt"
	"os"

	"consent-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "consent-manager",
	Short: "Consent Manager Service",
	Long: `Consent Manager decides which third-party services a visitor has agreed to
and rewrites HTML documents so that only consented services are active.
Decisions are kept in cookies, SQL, Redis or object storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// console encoding with the development config gives readable CLI errors
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
