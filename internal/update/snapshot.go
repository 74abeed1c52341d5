package update

import (
	"fmt"
	"os"

	"github.com/otasync/otasync/internal/utils"
)

// Snapshot is a recursive copy of the target directory taken before the
// merge. It is discarded after a successful run and intentionally left
// on disk when a run fails, so an operator can recover by hand.
type Snapshot struct {
	// Dir is where the copy lives, a `.bak` sibling of the target.
	Dir string

	target string
}

// TakeSnapshot copies targetDir into a `.bak` sibling. A stale snapshot
// from an earlier failed run is replaced.
func TakeSnapshot(targetDir string) (*Snapshot, error) {
	backupDir := targetDir + ".bak"

	if err := os.RemoveAll(backupDir); err != nil {
		return nil, fmt.Errorf("update: snapshot %s: %w", targetDir, err)
	}
	if err := utils.CopyDir(targetDir, backupDir); err != nil {
		return nil, fmt.Errorf("update: snapshot %s: %w", targetDir, err)
	}

	return &Snapshot{Dir: backupDir, target: targetDir}, nil
}

// Restore copies the snapshot back over the target directory. Never
// called by the updater itself; recovery is an operator decision.
func (s *Snapshot) Restore() error {
	if err := utils.CopyDir(s.Dir, s.target); err != nil {
		return fmt.Errorf("update: restore snapshot %s: %w", s.Dir, err)
	}
	return nil
}

// Discard removes the snapshot after a successful run.
func (s *Snapshot) Discard() error {
	return os.RemoveAll(s.Dir)
}
