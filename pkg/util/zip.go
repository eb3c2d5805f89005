package util

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/boyter/gocodewalker"
)

// ZipStats tracks statistics about the zipping operation
type ZipStats struct {
	FilesIncluded int
	BytesIncluded int64
	Entries       []string
}

func (s *ZipStats) AddIncluded(name string, bytes int64) {
	s.FilesIncluded++
	s.BytesIncluded += bytes
	s.Entries = append(s.Entries, name)
}

// CreateZip writes every file under srcDir into a deflate-compressed archive
// at destZip. Entry names are slash-separated paths relative to srcDir, so the
// archive root is the tree root. Hidden files are included and ignore files
// are not consulted. Entry order follows the walker and is not stable.
//
// On failure the partially written archive is removed.
func CreateZip(srcDir, destZip string) (stats *ZipStats, err error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", srcDir)
	}

	zipFile, err := os.Create(destZip)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			os.Remove(destZip)
		}
	}()

	stats, err = writeZip(zipFile, srcDir)
	if closeErr := zipFile.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	return stats, err
}

func writeZip(w io.Writer, srcDir string) (*ZipStats, error) {
	stats := &ZipStats{}
	zipWriter := zip.NewWriter(w)

	fileQueue := make(chan *gocodewalker.File, 256)
	walker := gocodewalker.NewFileWalker(srcDir, fileQueue)
	walker.IncludeHidden = true
	walker.IgnoreGitIgnore = true
	walker.IgnoreIgnoreFile = true

	errChan := make(chan error, 1)
	go func() {
		errChan <- walker.Start()
	}()

	for f := range fileQueue {
		if err := addFileToZip(zipWriter, srcDir, f.Location, stats); err != nil {
			// Let the walker finish so its goroutine exits.
			for range fileQueue {
			}
			<-errChan
			zipWriter.Close()
			return stats, err
		}
	}

	if err := <-errChan; err != nil {
		zipWriter.Close()
		return stats, fmt.Errorf("directory walk failed: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return stats, err
	}
	return stats, nil
}

func addFileToZip(zipWriter *zip.Writer, srcDir, path string, stats *ZipStats) error {
	relPath, err := filepath.Rel(srcDir, path)
	if err != nil {
		return err
	}
	relPath = filepath.ToSlash(relPath)

	fileInfo, err := os.Lstat(path)
	if err != nil {
		return err
	}

	hdr, err := zip.FileInfoHeader(fileInfo)
	if err != nil {
		return err
	}
	hdr.Name = relPath

	// Symlinks are stored uncompressed with the link target as content.
	if fileInfo.Mode()&os.ModeSymlink != 0 {
		linkTarget, err := os.Readlink(path)
		if err != nil {
			return err
		}
		hdr.Method = zip.Store

		zipFileWriter, err := zipWriter.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if _, err := zipFileWriter.Write([]byte(linkTarget)); err != nil {
			return err
		}
		stats.AddIncluded(relPath, int64(len(linkTarget)))
		return nil
	}

	if !fileInfo.Mode().IsRegular() {
		return nil
	}

	hdr.Method = zip.Deflate
	zipFileWriter, err := zipWriter.CreateHeader(hdr)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}

	written, err := io.Copy(zipFileWriter, file)
	closeErr := file.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	stats.AddIncluded(relPath, written)
	return nil
}
