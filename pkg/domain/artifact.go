package domain

import "time"

// Artifact is one named output unit produced by a generation run:
// a preview or a downloadable file.
type Artifact struct {
	// Name is the artifact's filename inside the set (e.g. "points.yaml",
	// "pcb.kicad_pcb", "preview.svg"). Unique within a set.
	Name string `json:"name"`

	// MIMEType describes the content for preview rendering and download.
	MIMEType string `json:"mime_type"`

	// Content holds the artifact bytes. Artifacts live in memory only;
	// the next successful run supersedes the whole set.
	Content []byte `json:"-"`
}

// ArtifactSet is the full ordered collection of artifacts from the most
// recent successful generation run. Exactly one set is current at any time.
type ArtifactSet struct {
	// Seq is the sequence number of the generation run that produced the
	// set. Sequence numbers increase monotonically per submission, so a
	// higher Seq always corresponds to a more recently submitted
	// configuration.
	Seq uint64 `json:"seq"`

	// GeneratedAt is the completion time of the run.
	GeneratedAt time.Time `json:"generated_at"`

	// Artifacts preserves the generator's output order.
	Artifacts []Artifact `json:"artifacts"`
}

// Empty reports whether the set contains no artifacts.
func (s *ArtifactSet) Empty() bool {
	return s == nil || len(s.Artifacts) == 0
}

// Names returns the artifact names in set order.
func (s *ArtifactSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.Artifacts))
	for i, a := range s.Artifacts {
		names[i] = a.Name
	}
	return names
}

// Find returns the artifact with the given name, if present.
func (s *ArtifactSet) Find(name string) (Artifact, bool) {
	if s == nil {
		return Artifact{}, false
	}
	for _, a := range s.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// Archive is a derived, one-shot bundle of an entire artifact set.
// It is never persisted; it exists only for the duration of a download.
type Archive struct {
	// Filename follows the contract "ergogen-YYYY-MM-DD.zip", dated at the
	// moment of packaging.
	Filename string

	// Content is the complete zip payload.
	Content []byte
}
