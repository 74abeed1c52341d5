// Package archive decodes downloaded release archives into a directory
// tree. The updater treats it as an opaque unpack capability.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractZip extracts a .zip file into dst. Release archives commonly
// wrap everything in a single root directory (github/gitlab exports do);
// that root is stripped so the payload lands directly under dst.
func ExtractZip(zipPath, dst string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("zip open %q: %w", zipPath, err)
	}
	defer r.Close()

	baseDir := archiveRoot(r.File)

	for _, f := range r.File {
		if f.Name == "./" || f.Name == "." {
			continue
		}

		name := strings.TrimPrefix(f.Name, "./")
		name = strings.TrimPrefix(name, baseDir)
		if name == "" {
			continue
		}

		target, err := safeJoin(dst, name)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("zip extract %q: %w", f.Name, err)
		}

		// directories are created by MkdirAll above
		if f.FileInfo().IsDir() {
			continue
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("zip open file %q: %w", f.Name, err)
	}
	defer rc.Close()

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("zip extract file %q: %w", target, err)
	}

	_, err = io.Copy(outFile, rc)
	if cerr := outFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("zip extract file %q: %w", f.Name, err)
	}

	return nil
}

// archiveRoot returns the single top-level directory shared by every
// entry, or "" when the archive has no such wrapper.
func archiveRoot(files []*zip.File) string {
	if len(files) == 0 {
		return ""
	}

	first := strings.TrimPrefix(files[0].Name, "./")
	idx := strings.Index(first, "/")
	if idx < 0 {
		return ""
	}
	root := first[:idx+1]

	// never treat traversal segments as a wrapper dir
	if root == "../" || root == "./" {
		return ""
	}

	for _, f := range files {
		name := strings.TrimPrefix(f.Name, "./")
		if name == "." || name == "" {
			continue
		}
		if !strings.HasPrefix(name, root) {
			return ""
		}
	}

	return root
}

// safeJoin joins name onto dst and rejects entries that would escape it.
func safeJoin(dst, name string) (string, error) {
	target := filepath.Join(dst, filepath.FromSlash(name))

	cleanDst := filepath.Clean(dst)
	if target != cleanDst && !strings.HasPrefix(target, cleanDst+string(os.PathSeparator)) {
		return "", fmt.Errorf("zip entry %q escapes destination", name)
	}

	return target, nil
}
