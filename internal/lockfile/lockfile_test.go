package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir)
	require.NoError(t, err)
	defer lock.Release()

	assert.Equal(t, filepath.Join(dir, LockFileName), lock.Path())
	content, err := os.ReadFile(lock.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), fmt.Sprintf("pid=%d\n", os.Getpid())))
	assert.Contains(t, string(content), "started=")
}

func TestAcquire_Conflict(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir)
	require.NoError(t, err)
	defer first.Release()

	second, err := Acquire(dir)
	if second != nil {
		second.Release()
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)

	var lockErr *LockError
	require.True(t, errors.As(err, &lockErr))
	assert.Equal(t, first.Path(), lockErr.Path)
	assert.Equal(t, fmt.Sprintf("pid %d (running)", os.Getpid()), lockErr.Holder)
	assert.Contains(t, err.Error(), dir)

	content, err := os.ReadFile(first.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), fmt.Sprintf("pid=%d", os.Getpid()), "a failed attempt must not clobber the holder info")
}

func TestRelease(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
	assert.NoFileExists(t, filepath.Join(dir, LockFileName))
	assert.NoError(t, lock.Release(), "release is idempotent")

	again, err := Acquire(dir)
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}

func TestAcquire_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")

	lock, err := Acquire(dir)
	require.NoError(t, err)
	defer lock.Release()
	assert.DirExists(t, dir)
}

func TestParsePID(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"pid=12345\n", 12345},
		{"pid=67890\nstarted=2026-01-01T00:00:00Z\n", 67890},
		{"started=2026-01-01T00:00:00Z\npid=42", 42},
		{"other=info", 0},
		{"", 0},
		{"pid=abc", 0},
		{"pid12345", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePID(tt.content), "content %q", tt.content)
	}
}

func TestDescribeHolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockFileName)

	assert.Empty(t, describeHolder(path), "missing file")

	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("pid=%d\n", os.Getpid())), 0o644))
	assert.Equal(t, fmt.Sprintf("pid %d (running)", os.Getpid()), describeHolder(path))

	require.NoError(t, os.WriteFile(path, []byte("legacy lock\n"), 0o644))
	assert.Equal(t, "legacy lock", describeHolder(path))
}

func TestProcessAlive(t *testing.T) {
	assert.True(t, processAlive(os.Getpid()))
}
