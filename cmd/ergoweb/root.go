package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ergoweb",
	Short: "ErgoWeb is a browser-based studio for the ergogen keyboard generator",
	Long: `ErgoWeb wraps the ergogen CLI in an editing pipeline: edit a
configuration, regenerate outputs on every change, and download the current
output set as a dated zip archive.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the ergoweb configuration file (YAML)")
}
