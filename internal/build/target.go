package build

import (
	"path/filepath"

	"github.com/clickat/extbuild/internal/manifest"
)

// ManifestFileName is the manifest name inside every target tree.
const ManifestFileName = "manifest.json"

// Target is a browser platform that receives its own manifest variant,
// output tree and release archive.
type Target struct {
	// Name is the output subdirectory under the dist root.
	Name string
	// Label describes the archive in release reports.
	Label string
	// ArchiveName is the release archive file name in the dist root.
	ArchiveName string
	// Derive produces the target manifest from the base manifest.
	Derive func(base *manifest.Manifest, opts manifest.Options) (*manifest.Manifest, error)
}

var (
	Chrome = Target{
		Name:        "chrome",
		Label:       "Chrome extension",
		ArchiveName: "chrome-release.zip",
		Derive:      manifest.ForChrome,
	}
	Firefox = Target{
		Name:        "firefox",
		Label:       "Firefox add-on",
		ArchiveName: "firefox-release.zip",
		Derive:      manifest.ForFirefox,
	}
)

// Targets returns every supported target in build order.
func Targets() []Target {
	return []Target{Chrome, Firefox}
}

// TargetDir is the output tree of t.
func (b *Builder) TargetDir(t Target) string {
	return filepath.Join(b.cfg.DistPath(), t.Name)
}

// ArchivePath is the release archive of t.
func (b *Builder) ArchivePath(t Target) string {
	return filepath.Join(b.cfg.DistPath(), t.ArchiveName)
}
