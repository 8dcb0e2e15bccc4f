// ABOUTME: Entry point for the austream binary
// ABOUTME: Cobra root command dispatching to send and recv
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "austream",
	Short: "Synchronized system-audio streaming over the local network",
}

func main() {
	rootCmd.AddCommand(sendCmd, recvCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
