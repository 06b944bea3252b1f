package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/ergoweb"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ergoweb",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ergoweb version %s\n", strings.TrimSpace(ergoweb.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
