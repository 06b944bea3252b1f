// Package archive assembles the current artifact set into a single
// downloadable zip bundle with a contractually predictable filename.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// Packager bundles artifact sets into dated zip archives.
type Packager struct {
	clock func() time.Time
}

// Option configures a Packager.
type Option func(*Packager)

// WithClock injects the clock used to date the archive filename.
// The filename reflects the packaging moment, not the generation time.
func WithClock(clock func() time.Time) Option {
	return func(p *Packager) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// New creates a Packager using the local wall clock.
func New(opts ...Option) *Packager {
	p := &Packager{clock: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Package bundles every artifact of the set into one compressed archive
// named "ergogen-YYYY-MM-DD.zip" for the current local calendar date.
// It fails with a *domain.PackagingError on an empty set or a zip write
// failure; no partial archive is ever returned.
func (p *Packager) Package(set *domain.ArtifactSet) (domain.Archive, error) {
	if set.Empty() {
		return domain.Archive{}, &domain.PackagingError{Stage: "gather", Err: domain.ErrNoArtifacts}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, a := range set.Artifacts {
		f, err := zw.Create(a.Name)
		if err != nil {
			return domain.Archive{}, &domain.PackagingError{Stage: "create " + a.Name, Err: err}
		}
		if _, err := f.Write(a.Content); err != nil {
			return domain.Archive{}, &domain.PackagingError{Stage: "write " + a.Name, Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return domain.Archive{}, &domain.PackagingError{Stage: "finalize", Err: err}
	}

	return domain.Archive{
		Filename: Filename(p.clock()),
		Content:  buf.Bytes(),
	}, nil
}

// Filename formats the archive name for a packaging moment, with
// zero-padded month and day in the moment's location.
func Filename(now time.Time) string {
	return fmt.Sprintf("ergogen-%04d-%02d-%02d.zip", now.Year(), int(now.Month()), now.Day())
}
