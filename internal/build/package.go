package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/clickat/extbuild/internal/manifest"
	"github.com/clickat/extbuild/pkg/table"
	"github.com/clickat/extbuild/pkg/util"
	"github.com/pterm/pterm"
)

// ErrReleaseIncomplete is returned by Package when at least one archive could
// not be created. Archives that were created are left in place.
var ErrReleaseIncomplete = errors.New("release completed with errors")

// Archive describes one release archive written by Package.
type Archive struct {
	Target Target
	Path   string
	Size   int64
	Files  int
}

// Package zips every target tree into its release archive in the dist root.
// Every target is attempted even when an earlier one fails.
func (b *Builder) Package(ctx context.Context) ([]Archive, error) {
	pterm.Info.Println("Creating release packages...")

	var archives []Archive
	var failed []string
	for _, t := range b.targets {
		if err := ctx.Err(); err != nil {
			return archives, err
		}
		archive, err := b.createArchive(t)
		if err != nil {
			pterm.Error.Printf("Failed to create zip %s: %v\n", b.ArchivePath(t), err)
			failed = append(failed, t.Name)
			continue
		}
		pterm.Info.Printf("Created %s (%d bytes)\n", archive.Path, archive.Size)
		archives = append(archives, archive)
	}

	b.printReleaseReport(archives)

	if len(failed) > 0 {
		pterm.Error.Println("Release completed with errors")
		return archives, fmt.Errorf("%w: %d of %d archives failed (%v)", ErrReleaseIncomplete, len(failed), len(b.targets), failed)
	}
	pterm.Success.Println("Release completed successfully!")
	return archives, nil
}

func (b *Builder) createArchive(t Target) (Archive, error) {
	path := b.ArchivePath(t)
	stats, err := util.CreateZip(b.TargetDir(t), path)
	if err != nil {
		return Archive{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Archive{}, fmt.Errorf("failed to stat archive: %w", err)
	}
	pterm.Debug.Printf("%s: %d files, %s uncompressed\n", path, stats.FilesIncluded, util.FormatBytes(stats.BytesIncluded))
	for _, entry := range stats.Entries {
		pterm.Debug.Printf("  %s\n", entry)
	}
	return Archive{
		Target: t,
		Path:   path,
		Size:   info.Size(),
		Files:  stats.FilesIncluded,
	}, nil
}

func (b *Builder) printReleaseReport(archives []Archive) {
	if len(archives) == 0 {
		return
	}
	pterm.Println()
	pterm.Info.Printf("Release packages created (version %s):\n", util.OrDash(b.packagedVersion(archives[0].Target)))

	rows := pterm.TableData{{"Archive", "Bytes", "Size", "Files", "Target"}}
	for _, a := range archives {
		rows = append(rows, []string{
			a.Path,
			strconv.FormatInt(a.Size, 10),
			util.FormatBytes(a.Size),
			strconv.Itoa(a.Files),
			a.Target.Label,
		})
	}
	table.PrintTableNoPad(rows, true)
}

// packagedVersion reads the version field from the manifest that went into
// t's archive. Versions that parse as semver are normalised; anything else,
// such as Chrome's four-part versions, is reported as written.
func (b *Builder) packagedVersion(t Target) string {
	m, err := manifest.Load(filepath.Join(b.TargetDir(t), ManifestFileName))
	if err != nil {
		return ""
	}
	return normaliseVersion(m.Get("version").String())
}

func normaliseVersion(v string) string {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	return parsed.String()
}
