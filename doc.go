/*
Package ergoweb is a browser-oriented studio for the ergogen keyboard
layout generator: edit a configuration, regenerate outputs on every change,
and download the current output set as a dated zip archive.

It separates the editing pipeline (configuration, generation, artifacts)
from the presentation state (which pane is visible on a constrained
viewport) and from the delivery adapters (HTTP, MCP, CLI). This Hexagonal
Architecture allows the studio core to be embedded in any interface.

# Key Features

  - Latest wins: every configuration change supersedes the in-flight
    generation run, so the visible output always reflects the most recent
    submission.
  - Durable configuration: the current source is persisted on every accepted
    edit and restored on startup, in memory, on disk, or in Redis.
  - Deterministic packaging: the download is always a single zip named
    ergogen-YYYY-MM-DD.zip for the packaging date, never a partial archive.
  - Panel state machine: on narrow viewports exactly one of the two panes is
    visible; widening restores both without losing the selection.

# Usage

Initialize a Studio, bootstrap it from the persisted store, and drive it
with configuration edits:

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/ergoweb"
	)

	func main() {
		studio := ergoweb.New()

		ctx := context.Background()
		if err := studio.Bootstrap(ctx); err != nil {
			log.Fatal(err)
		}

		// Submit a configuration; generation runs asynchronously.
		err := studio.SetConfig(ctx, "points:\n  zones:\n    matrix:\n")
		if err != nil {
			log.Fatal(err)
		}

		// Wait for the run and download the archive.
		if _, err := studio.WaitForArtifacts(ctx); err != nil {
			log.Fatal(err)
		}
		bundle, err := studio.DownloadArchive(ctx)
		if err != nil {
			log.Fatal(err)
		}
		os.WriteFile(bundle.Filename, bundle.Content, 0644)
	}
*/
package ergoweb
