/*
Package domain contains the core domain models for the ErgoWeb studio.

It defines the fundamental entities of the configuration-to-archive pipeline,
such as the Configuration, Artifacts produced by a generation run, and the
Panel/Viewport enumerations that govern the constrained-viewport layout.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Configuration: The user's opaque layout definition, persisted under one key.
  - Artifact / ArtifactSet: The outputs of a single generation run.
  - PanelMode / ViewportClass: The two-state panel machine vocabulary.
  - Archive: A one-shot, date-stamped zip bundle of the current artifact set.
*/
package domain
