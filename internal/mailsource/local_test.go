package mailsource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-ledger/internal/logging"
)

func TestLocalSourceListAndFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("second"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	source := NewLocal(dir, logging.NewMockLogger())

	ids, err := source.List(time.Time{})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	}, ids, "directories are skipped, names sorted")

	messages, err := source.Fetch(ids)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), messages[ids[0]])
	assert.Equal(t, []byte("second"), messages[ids[1]])

	assert.NoError(t, source.Close())
}

func TestLocalSourceIgnoresSinceBound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.txt"), []byte("x"), 0o644))

	source := NewLocal(dir, logging.NewMockLogger())
	ids, err := source.List(time.Now())
	require.NoError(t, err)
	assert.Len(t, ids, 1, "local listings are always complete")
}

func TestLocalSourceMissingDir(t *testing.T) {
	source := NewLocal(filepath.Join(t.TempDir(), "nope"), logging.NewMockLogger())
	_, err := source.List(time.Time{})
	assert.Error(t, err)
}

func TestLocalSourceMissingFile(t *testing.T) {
	source := NewLocal(t.TempDir(), logging.NewMockLogger())
	_, err := source.Fetch([]string{"/does/not/exist"})
	assert.Error(t, err)
}
