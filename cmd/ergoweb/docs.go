package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/ergoweb/internal/presentation/tui"
)

const usageDoc = `# ErgoWeb

A browser-oriented studio for the **ergogen** keyboard layout generator.

## Commands

- ` + "`ergoweb serve`" + ` starts the studio HTTP server. The editor talks to it
  over the JSON API and the SSE event stream.
- ` + "`ergoweb generate my-board.yaml`" + ` runs the pipeline once and writes the
  dated zip archive.
- ` + "`ergoweb mcp`" + ` exposes the pipeline to MCP agents over stdio or SSE.

## Configuration

The studio reads an optional YAML file via ` + "`--config`" + `:

` + "```yaml" + `
listen: ":8080"
breakpoint: 768
store:
  backend: redis       # memory | file | redis
  options:
    addr: "localhost:6379"
generator:
  command: ergogen
  timeout: 2m
` + "```" + `

## Pipeline semantics

Every accepted edit is persisted and immediately regenerated. If a newer
edit arrives while a run is in flight, the newer run wins: the older result
is discarded, never shown. The download is always a single zip named
` + "`ergogen-YYYY-MM-DD.zip`" + ` for the day it was packaged.
`

// docsCmd renders the built-in manual to the terminal.
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the built-in documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		render := tui.NewRenderer()
		out, err := render(usageDoc)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
