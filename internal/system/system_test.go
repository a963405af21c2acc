package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatestImage(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		filepath.Join(dir, "scan_a.png"),
		filepath.Join(dir, "scan_b.JPG"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "scan_c.tiff"),
	}

	base := time.Now().Add(-time.Hour)
	for i, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("test"), 0644))
		modTime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(f, modTime, modTime))
	}

	latest, err := FindLatestImage(dir)
	require.NoError(t, err)
	assert.Equal(t, files[3], latest)

	// a file path searches its directory
	latest, err = FindLatestImage(files[0])
	require.NoError(t, err)
	assert.Equal(t, files[3], latest)

	t.Logf("Latest image: %s", latest)
}

func TestFindLatestImageEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0644))

	_, err := FindLatestImage(dir)
	assert.Error(t, err)

	_, err = FindLatestImage(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCountsPool(t *testing.T) {
	a := GetCounts(16)
	require.Len(t, a, 16)
	a[3] = 42
	PutCounts(a)

	for i := 0; i < 4; i++ {
		b := GetCounts(16)
		require.Len(t, b, 16)
		for _, v := range b {
			assert.Zero(t, v)
		}
		PutCounts(b)
	}

	assert.Len(t, GetCounts(3), 3)
	PutCounts(nil)
}

func TestDefaultWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(context.Background()), 1)
}
