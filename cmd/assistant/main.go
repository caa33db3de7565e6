package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "assistant",
		Short: "Manual assistant operations tool",
		Long:  "Command line tool for managing the manual index and talking to the assistant without the HTTP API.",
	}

	root.AddCommand(
		newSetupCmd(),
		newInventoryCmd(),
		newAskCmd(),
		newChatCmd(),
		newStatsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
