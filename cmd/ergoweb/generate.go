package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/ergoweb/internal/config"
	"github.com/aretw0/ergoweb/internal/logging"
	"github.com/aretw0/ergoweb/pkg/domain"
)

// generateCmd runs the pipeline once, without a server: read a
// configuration, generate, and write the dated zip archive.
var generateCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate once and write the output archive",
	Long: `Runs the generation pipeline for a single ergogen configuration and
writes the resulting artifact set as a zip archive named ergogen-YYYY-MM-DD.zip.
Reads the configuration from the given file, or from Stdin when omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		output, _ := cmd.Flags().GetString("output")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		var source []byte
		if len(args) == 1 {
			source, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
		} else {
			source, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read configuration from stdin: %w", err)
			}
		}

		studio, err := buildStudio(cfg, logging.New(slog.LevelWarn), domain.LifecycleHooks{})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := studio.SetConfig(ctx, string(source)); err != nil {
			return err
		}
		if _, err := studio.WaitForArtifacts(ctx); err != nil {
			return err
		}

		bundle, err := studio.DownloadArchive(ctx)
		if err != nil {
			return err
		}

		if output == "" {
			output = bundle.Filename
		}
		if err := os.WriteFile(output, bundle.Content, 0644); err != nil {
			return fmt.Errorf("failed to write archive: %w", err)
		}

		fmt.Printf("Wrote %s (%d bytes)\n", output, len(bundle.Content))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("output", "o", "", "Archive output path (defaults to the dated archive name)")
}
