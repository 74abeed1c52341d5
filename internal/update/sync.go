package update

import (
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/otasync/otasync/internal/utils"
)

// SyncTree merges the unpacked source tree into the target directory.
// Every file under srcRoot ends up at the same relative path under
// dstRoot with source content; files under dstRoot with no source
// counterpart are never touched or deleted. Missing directories are
// created. Copies are independent of traversal order.
//
// Returns the number of files copied. A copy with identical content on
// both sides is skipped and not counted. The first failed copy aborts
// the merge with a *SyncError; files copied before the failure remain.
func SyncTree(srcRoot, dstRoot string) (int, error) {
	copied := 0

	err := filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dstRoot, relPath)

		if sameContent(path, target) {
			return nil
		}

		if err := utils.CopyFile(path, target); err != nil {
			return &SyncError{Path: relPath, Err: err}
		}
		copied++
		slog.Debug("synced file", "path", relPath)

		return nil
	})

	return copied, err
}

// sameContent reports whether dst exists with content identical to src.
// Hash failures count as different, so the copy still happens.
func sameContent(src, dst string) bool {
	if !utils.FileExists(dst) {
		return false
	}

	srcHash, err := utils.FileHash(src)
	if err != nil {
		return false
	}
	dstHash, err := utils.FileHash(dst)
	if err != nil {
		return false
	}

	return srcHash == dstHash
}
