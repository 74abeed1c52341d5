package update

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMarker_Absent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")

	v, raw, err := ReadMarker(path)
	require.ErrorIs(t, err, ErrMarkerAbsent)
	assert.True(t, v.IsZero())
	assert.Empty(t, raw)
}

func TestReadMarker_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")
	require.NoError(t, os.WriteFile(path, []byte("  V1.2.3\n"), 0o644))

	v, raw, err := ReadMarker(path)
	require.NoError(t, err)
	assert.Equal(t, Version{1, 2, 3}, v)
	assert.Equal(t, "V1.2.3", raw)
}

func TestReadMarker_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")
	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0o644))

	_, _, err := ReadMarker(path)
	var me *MarkerError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, path, me.Path)
	assert.Equal(t, "garbage", me.Raw)
}

func TestWriteMarker_Verbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")

	require.NoError(t, WriteMarker(path, " V1.2.0 \n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "V1.2.0\n", string(data))
}

func TestWriteMarker_CreatesParentAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "VERSION")

	require.NoError(t, WriteMarker(path, "V1.0.0"))
	require.NoError(t, WriteMarker(path, "V2.0.0"))

	v, raw, err := ReadMarker(path)
	require.NoError(t, err)
	assert.Equal(t, Version{2, 0, 0}, v)
	assert.Equal(t, "V2.0.0", raw)
}

func TestWriteMarker_FailedWriteKeepsExistingMarker(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "VERSION")
	require.NoError(t, WriteMarker(path, "V1.0.0"))

	// a read-only directory makes the temp-file creation fail before
	// anything can touch the existing marker
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	require.Error(t, WriteMarker(path, "V2.0.0"))

	v, raw, err := ReadMarker(path)
	require.NoError(t, err)
	assert.Equal(t, Version{1, 0, 0}, v)
	assert.Equal(t, "V1.0.0", raw)
}

func TestWriteMarker_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "VERSION")

	require.NoError(t, WriteMarker(path, "V1.0.0"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "VERSION", entries[0].Name())
}
