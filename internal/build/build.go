// Package build turns the extension sources into per-browser output trees
// and release archives.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clickat/extbuild/internal/config"
	"github.com/clickat/extbuild/internal/manifest"
	"github.com/clickat/extbuild/pkg/util"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
)

// Builder runs the build, package and clean stages for one project.
type Builder struct {
	cfg     *config.Config
	targets []Target
}

// New returns a Builder for every supported target.
func New(cfg *config.Config) *Builder {
	return &Builder{
		cfg:     cfg,
		targets: Targets(),
	}
}

// Build regenerates every target tree: it writes the derived manifests and
// copies the static assets. A missing or invalid base manifest is fatal;
// missing assets are only warned about.
func (b *Builder) Build(ctx context.Context) error {
	pterm.Info.Println("Build started")

	targetDirs := lo.Map(b.targets, func(t Target, _ int) string {
		return b.TargetDir(t)
	})
	for _, dir := range append([]string{b.cfg.DistPath()}, targetDirs...) {
		created, err := util.EnsureDir(dir)
		if err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if created {
			pterm.Info.Printf("Created directory: %s\n", dir)
		}
	}

	manifestPath := b.cfg.ManifestPath()
	base, err := manifest.Load(manifestPath)
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			pterm.Error.Printf("Manifest not found: %s\n", manifestPath)
		} else {
			pterm.Error.Printf("Failed to load manifest: %v\n", err)
		}
		return err
	}

	opts := b.manifestOptions()
	for _, t := range b.targets {
		derived, err := t.Derive(base, opts)
		if err != nil {
			return fmt.Errorf("failed to derive %s manifest: %w", t.Name, err)
		}
		if err := derived.WriteFile(filepath.Join(b.TargetDir(t), ManifestFileName)); err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
		pterm.Debug.Printf("Wrote %s manifest\n", t.Name)
	}

	for _, asset := range b.cfg.AssetPaths() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, t := range b.targets {
			if err := copyAsset(asset, b.TargetDir(t)); err != nil {
				return err
			}
		}
	}

	pterm.Success.Printf("Build completed: %s\n", strings.Join(targetDirs, ", "))
	return nil
}

func (b *Builder) manifestOptions() manifest.Options {
	return manifest.Options{
		BackgroundScript:      filepath.Base(b.cfg.Background),
		ExtensionID:           b.cfg.ExtensionID,
		GeckoStrictMinVersion: b.cfg.GeckoStrictMinVersion,
	}
}

// copyAsset copies path into destDir under its base name. A missing source
// is skipped with a warning.
func copyAsset(path, destDir string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			pterm.Warning.Printf("File does not exist, skipping: %s\n", path)
			return nil
		}
		return fmt.Errorf("failed to access %s: %w", path, err)
	}

	destPath := filepath.Join(destDir, filepath.Base(path))
	if err := util.CopyFile(path, destPath); err != nil {
		return fmt.Errorf("failed to copy %s: %w", path, err)
	}
	pterm.Debug.Printf("Copied %s -> %s\n", path, destPath)
	return nil
}
