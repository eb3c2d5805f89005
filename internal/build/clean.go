package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
)

// Clean removes the dist root and everything under it. A missing dist root
// is not an error.
func (b *Builder) Clean(ctx context.Context) error {
	pterm.Info.Println("Cleaning up...")
	if err := ctx.Err(); err != nil {
		return err
	}

	dist := b.cfg.DistPath()
	if contains(dist, b.cfg.Root) || contains(dist, b.cfg.Path(b.cfg.SrcDir)) {
		return fmt.Errorf("refusing to remove %s: it contains the project sources", dist)
	}

	if _, err := os.Lstat(dist); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access %s: %w", dist, err)
		}
		pterm.Info.Printf("%s directory does not exist\n", dist)
	} else {
		if err := os.RemoveAll(dist); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dist, err)
		}
		pterm.Info.Printf("Removed %s directory\n", dist)
	}

	pterm.Success.Println("Cleanup completed!")
	return nil
}

// contains reports whether path is dir or lies beneath it.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
