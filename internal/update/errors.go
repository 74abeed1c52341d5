package update

import (
	"errors"
	"fmt"
)

var (
	// ErrMarkerAbsent signals a missing local version marker. Not a
	// failure: it forces the update path.
	ErrMarkerAbsent = errors.New("update: version marker absent")

	// ErrAlreadyRunning signals that another updater holds the
	// advisory lock for the same marker.
	ErrAlreadyRunning = errors.New("update: another instance is already running")
)

// Stage names the step of a run that failed.
type Stage string

const (
	StageReadLocal    Stage = "read-local-version"
	StageProbe        Stage = "probe-remote-version"
	StageFetchArchive Stage = "fetch-archive"
	StageUnpack       Stage = "unpack"
	StageEnsureTarget Stage = "ensure-target"
	StageBackup       Stage = "backup"
	StageSync         Stage = "sync"
	StageCommit       Stage = "commit-marker"
	StageLock         Stage = "lock"
)

// MarkerError reports a version marker that does not match the
// `V<major>.<minor>.<patch>` grammar. Path is set when the marker came
// from a local file.
type MarkerError struct {
	Raw  string
	Path string
}

func (e *MarkerError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("update: malformed version marker %q in %s", e.Raw, e.Path)
	}
	return fmt.Sprintf("update: malformed version marker %q", e.Raw)
}

// UnpackError reports an archive that could not be decoded.
type UnpackError struct {
	Archive string
	Err     error
}

func (e *UnpackError) Error() string {
	return fmt.Sprintf("update: unpack %s: %v", e.Archive, e.Err)
}

func (e *UnpackError) Unwrap() error { return e.Err }

// SyncError reports a file copy that failed mid-merge. Path is relative
// to the source tree.
type SyncError struct {
	Path string
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("update: sync %q: %v", e.Path, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// StageError wraps a failure with the run stage it occurred in. No
// stage after the failed one has run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("update: stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
