// Package update implements the version comparison and selective sync
// engine: marker parsing and ordering, the update decision, the
// overwrite-only merge and the run orchestration around them.
package update

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/otasync/otasync/internal/config"
	"github.com/otasync/otasync/internal/utils"
)

// Fetcher is the remote transport capability. internal/fetch provides
// the HTTP implementation.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
	FetchFile(ctx context.Context, url, destDir string) (string, error)
}

// UnpackFunc decodes a downloaded archive into destDir.
// internal/archive provides the zip implementation.
type UnpackFunc func(archivePath, destDir string) error

// Report describes a completed (or checked) run.
type Report struct {
	Decision  Decision
	Local     string // raw local marker, "" when absent
	Remote    string // raw remote marker
	Copied    int
	Changelog []string
}

// Updater drives one run: probe, decide, download, unpack, snapshot,
// merge, commit. One instance per target directory at a time; the
// advisory lock enforces that across processes.
type Updater struct {
	cfg     *config.Config
	fetcher Fetcher
	unpack  UnpackFunc
}

func New(cfg *config.Config, fetcher Fetcher, unpack UnpackFunc) *Updater {
	return &Updater{
		cfg:     cfg,
		fetcher: fetcher,
		unpack:  unpack,
	}
}

// Check probes the remote version and reports the decision without
// mutating anything.
func (u *Updater) Check(ctx context.Context) (*Report, error) {
	local, localRaw := u.readLocal()

	remote, remoteRaw, err := u.probeRemote(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		Decision: Decide(local, remote),
		Local:    localRaw,
		Remote:   remoteRaw,
	}, nil
}

// Run performs a full update run. On failure the returned error is a
// *StageError naming the stage; nothing past the failed stage has run,
// the marker is never committed ahead of the merge, and a snapshot
// taken before the failure stays on disk for manual recovery.
func (u *Updater) Run(ctx context.Context) (*Report, error) {
	report, err := u.Check(ctx)
	if err != nil {
		return nil, err
	}

	if report.Decision == UpToDate {
		slog.Info("already up to date", "version", report.Remote)
		return report, nil
	}

	slog.Info("update available", "local", displayMarker(report.Local), "remote", report.Remote)

	// the advisory lock guards the mutation stages below; it is taken
	// lazily so a run that dies at the probe touches nothing on disk.
	// The lock file lives next to the marker.
	if err := utils.EnsureParent(u.cfg.MarkerPath); err != nil {
		return nil, stageErr(StageLock, err)
	}
	lock := flock.New(u.cfg.MarkerPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, stageErr(StageLock, err)
	}
	if !locked {
		return nil, stageErr(StageLock, ErrAlreadyRunning)
	}
	defer lock.Unlock()

	// best-effort, never affects the outcome
	report.Changelog = u.fetchChangelog(ctx)

	scratch, err := os.MkdirTemp("", "otasync-*")
	if err != nil {
		return nil, stageErr(StageFetchArchive, err)
	}
	defer func() {
		if u.cfg.KeepScratch {
			slog.Info("keeping scratch dir", "path", scratch)
			return
		}
		if err := os.RemoveAll(scratch); err != nil {
			slog.Warn("failed to remove scratch dir", "path", scratch, "error", err)
		}
	}()

	slog.Info("downloading archive", "url", u.cfg.ArchiveURL)
	archivePath, err := u.fetcher.FetchFile(ctx, u.cfg.ArchiveURL, scratch)
	if err != nil {
		return nil, stageErr(StageFetchArchive, err)
	}

	unpackDir := filepath.Join(scratch, "unpacked")
	if err := utils.EnsureDir(unpackDir); err != nil {
		return nil, stageErr(StageUnpack, err)
	}
	if err := u.unpack(archivePath, unpackDir); err != nil {
		return nil, stageErr(StageUnpack, &UnpackError{Archive: archivePath, Err: err})
	}

	if err := utils.EnsureDir(u.cfg.PayloadDir); err != nil {
		return nil, stageErr(StageEnsureTarget, err)
	}

	snapshot, err := TakeSnapshot(u.cfg.PayloadDir)
	if err != nil {
		return nil, stageErr(StageBackup, err)
	}

	copied, err := SyncTree(unpackDir, u.cfg.PayloadDir)
	if err != nil {
		slog.Error("sync failed, snapshot kept for recovery", "snapshot", snapshot.Dir)
		return nil, stageErr(StageSync, err)
	}
	report.Copied = copied

	if err := WriteMarker(u.cfg.MarkerPath, report.Remote); err != nil {
		slog.Error("marker commit failed, snapshot kept for recovery", "snapshot", snapshot.Dir)
		return nil, stageErr(StageCommit, err)
	}

	if err := snapshot.Discard(); err != nil {
		slog.Warn("failed to remove snapshot", "path", snapshot.Dir, "error", err)
	}

	slog.Info("update complete", "version", report.Remote, "files", copied)
	return report, nil
}

// readLocal resolves the local version. Absent markers become the zero
// version. A malformed local marker is treated the same: the marker is
// derived state owned by this tool, so the next successful run rewrites
// it rather than bricking updates.
func (u *Updater) readLocal() (Version, string) {
	local, raw, err := ReadMarker(u.cfg.MarkerPath)
	switch {
	case errors.Is(err, ErrMarkerAbsent):
		slog.Debug("no local version marker", "path", u.cfg.MarkerPath)
		return Version{}, ""
	case err != nil:
		slog.Warn("local version marker unreadable, forcing update", "path", u.cfg.MarkerPath, "error", err)
		return Version{}, ""
	default:
		return local, raw
	}
}

// probeRemote fetches and parses the remote marker. Unlike the local
// side, failure here is fatal: no decision can be made.
func (u *Updater) probeRemote(ctx context.Context) (Version, string, error) {
	body, err := u.fetcher.FetchText(ctx, u.cfg.VersionURL)
	if err != nil {
		return Version{}, "", stageErr(StageProbe, err)
	}

	remote, err := ParseVersion(body)
	if err != nil {
		return Version{}, "", stageErr(StageProbe, err)
	}

	// keep the remote's exact trimmed string; the marker file gets it
	// verbatim, never a re-serialization
	return remote, strings.TrimSpace(body), nil
}

func (u *Updater) fetchChangelog(ctx context.Context) []string {
	if u.cfg.ChangelogURL == "" {
		return nil
	}

	body, err := u.fetcher.FetchText(ctx, u.cfg.ChangelogURL)
	if err != nil {
		slog.Warn("changelog unavailable", "url", u.cfg.ChangelogURL, "error", err)
		return nil
	}

	return changelogHead(body, changelogMaxLines)
}

func displayMarker(raw string) string {
	if raw == "" {
		return "(none)"
	}
	return raw
}
