// Package fsutil holds the small filesystem helpers the build plugins share:
// newer-wins copying and marker file creation.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob returns the regular files in dir matching pattern, as slash separated
// paths relative to dir. Patterns support ** and {a,b} alternatives.
func Glob(dir, pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %q in %s: %w", pattern, dir, err)
	}

	files := matches[:0]
	for _, m := range matches {
		info, err := fs.Stat(fsys, m)
		if err != nil {
			return nil, err
		}
		if info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	return files, nil
}

// MustGlob is Glob for patterns that have to match: no match is ErrNoMatch.
func MustGlob(dir, pattern string) ([]string, error) {
	matches, err := Glob(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: %w", path.Join(filepath.ToSlash(dir), pattern), ErrNoMatch)
	}
	return matches, nil
}

// CopyNewer copies every file under srcDir matching pattern into dstDir,
// keeping its relative path, when the destination is missing or older than
// the source. It returns the destination paths that were written.
func CopyNewer(srcDir, pattern, dstDir string) ([]string, error) {
	matches, err := Glob(srcDir, pattern)
	if err != nil {
		return nil, err
	}

	var copied []string
	for _, m := range matches {
		src := filepath.Join(srcDir, filepath.FromSlash(m))
		dst := filepath.Join(dstDir, filepath.FromSlash(m))
		ok, err := CopyFileNewer(src, dst)
		if err != nil {
			return copied, err
		}
		if ok {
			copied = append(copied, dst)
		}
	}
	return copied, nil
}

// CopyNewerTo copies the single file under srcDir matching pattern to dst.
// No match is not an error; more than one match is.
func CopyNewerTo(srcDir, pattern, dst string) ([]string, error) {
	matches, err := Glob(srcDir, pattern)
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%s: %w", path.Join(filepath.ToSlash(srcDir), pattern), ErrAmbiguousTarget)
	}

	ok, err := CopyFileNewer(filepath.Join(srcDir, filepath.FromSlash(matches[0])), dst)
	if err != nil || !ok {
		return nil, err
	}
	return []string{dst}, nil
}

// IsNewer reports whether src should replace dst: dst is missing or its
// modification time is before src's.
func IsNewer(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}

	dstInfo, err := os.Stat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	return dstInfo.ModTime().Before(srcInfo.ModTime()), nil
}

// CopyFileNewer copies src to dst if IsNewer says so, creating parent
// directories and carrying over the source modification time. It reports
// whether a copy happened.
func CopyFileNewer(src, dst string) (bool, error) {
	newer, err := IsNewer(src, dst)
	if err != nil || !newer {
		return false, err
	}
	if err := copyFile(src, dst); err != nil {
		return false, err
	}
	return true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", src, ErrNotRegular)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// EnsureFile creates an empty file at name, along with its parent
// directories, unless something already exists there.
func EnsureFile(name string) error {
	if _, err := os.Stat(name); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
