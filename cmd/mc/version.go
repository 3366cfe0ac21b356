package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped by the release build; "dev" otherwise
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mc version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
