package update

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/otasync/otasync/internal/utils"
)

// ReadMarker reads and parses the local version marker file. A missing
// file returns the zero Version and ErrMarkerAbsent. Unparsable content
// returns a *MarkerError carrying the path.
func ReadMarker(path string) (Version, string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Version{}, "", ErrMarkerAbsent
	}
	if err != nil {
		return Version{}, "", fmt.Errorf("update: read marker %s: %w", path, err)
	}

	raw := strings.TrimSpace(string(data))
	v, err := ParseVersion(raw)
	if err != nil {
		var me *MarkerError
		if errors.As(err, &me) {
			me.Path = path
		}
		return Version{}, raw, err
	}

	return v, raw, nil
}

// WriteMarker persists the marker string exactly as received from the
// remote source (trimmed, single line, trailing newline). The write
// goes to a temp file in the same directory followed by a rename, so a
// crash mid-write never corrupts a previously valid marker.
func WriteMarker(path, raw string) error {
	if err := utils.EnsureParent(path); err != nil {
		return fmt.Errorf("update: write marker %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".marker-*")
	if err != nil {
		return fmt.Errorf("update: write marker %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.WriteString(strings.TrimSpace(raw) + "\n")
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("update: write marker %s: %w", path, err)
	}

	return nil
}
