// Package packager zips a project directory for upload.
package packager

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultExclude is always left out of archives.
var DefaultExclude = []string{".git", ".hg", ".svn", ".DS_Store"}

// Archive is a zip file built in the temp directory.
type Archive struct {
	Path  string
	Size  int64
	Files int
}

// Open opens the archive for reading.
func (a *Archive) Open() (*os.File, error) {
	return os.Open(a.Path)
}

// Remove deletes the archive.
func (a *Archive) Remove() error {
	err := os.Remove(a.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Build zips dir, skipping DefaultExclude and the exclude globs. Globs
// use path.Match syntax against the slash-separated path relative to
// dir; a pattern without a slash also matches any single path element.
// Symlinks are skipped.
func Build(dir string, exclude []string) (*Archive, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	patterns := append(append([]string(nil), DefaultExclude...), exclude...)
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("bad exclude pattern %q: %w", p, err)
		}
	}

	tmp, err := os.CreateTemp("", "xervo-deploy-*.zip")
	if err != nil {
		return nil, err
	}
	archive := &Archive{Path: tmp.Name()}
	fail := func(err error) (*Archive, error) {
		tmp.Close()
		_ = archive.Remove()
		return nil, err
	}

	zw := zip.NewWriter(tmp)
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil || rel == "." {
			return err
		}
		rel = filepath.ToSlash(rel)
		if Excluded(rel, patterns) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if err := addFile(zw, p, rel); err != nil {
			return err
		}
		archive.Files++
		return nil
	})
	if err != nil {
		return fail(fmt.Errorf("packaging %s: %w", dir, err))
	}
	if err := zw.Close(); err != nil {
		return fail(err)
	}
	st, err := tmp.Stat()
	if err != nil {
		return fail(err)
	}
	archive.Size = st.Size()
	if err := tmp.Close(); err != nil {
		_ = archive.Remove()
		return nil, err
	}
	return archive, nil
}

// Excluded reports whether the slash-separated relative path matches
// any pattern.
func Excluded(rel string, patterns []string) bool {
	elems := strings.Split(rel, "/")
	for _, p := range patterns {
		p = strings.TrimSuffix(p, "/")
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
		if strings.Contains(p, "/") {
			continue
		}
		for _, e := range elems {
			if ok, _ := path.Match(p, e); ok {
				return true
			}
		}
	}
	return false
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
