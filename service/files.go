package service

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Exists returns true if the path exists (file or directory)
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// CopyDir recursively copies the content of src into dst, merging with the existing content of dst.
// Existing files are overwritten. On failure, dst is left partially merged.
// Returns the number of copied files.
func CopyDir(src, dst string) (int, error) {
	copied := 0
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := os.Stat(p) // follows symlinks
		if err != nil {
			return err
		}
		switch {
		case info.IsDir():
			if d.Type()&fs.ModeSymlink != 0 {
				// symlinked directories are not followed
				return nil
			}
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode().IsRegular():
			if err := copyFile(p, target, info); err != nil {
				return err
			}
			copied++
		}
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("CopyDir[%s]: %w", src, err)
	}
	return copied, nil
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// CountFiles counts the regular files under root whose name ends with ext
func CountFiles(root, ext string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), ext) {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("CountFiles[%s]: %w", root, err)
	}
	return n, nil
}
