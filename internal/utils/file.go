package utils

import (
	"crypto/md5"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileHash calculates the MD5 hash of a file. Used only for content
// comparison, not for integrity.
func FileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// CopyFile copies a file from src to dst, creating dst's parent
// directories as needed.
func CopyFile(src, dst string) error {
	if err := EnsureParent(dst); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// CopyDir recursively copies the contents of srcDir into dstDir,
// preserving relative layout. Regular files only.
func CopyDir(srcDir, dstDir string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dstDir, relPath)

		if d.IsDir() {
			return EnsureDir(target)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		return CopyFile(path, target)
	})
}
