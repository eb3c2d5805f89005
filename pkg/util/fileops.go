package util

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

const (
	DefaultDirMode  = 0755
	DefaultFileMode = 0644
)

// EnsureDir creates path and any missing parents. created reports whether the
// directory had to be made; an existing directory is not an error.
func EnsureDir(path string) (created bool, err error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("not a directory")}
		}
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(path, DefaultDirMode); err != nil {
		return false, err
	}
	return true, nil
}

// CopyFile copies a single file from src to dst, carrying over the
// permission bits and modification time of src.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	if err := destFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, sourceInfo.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())
}
