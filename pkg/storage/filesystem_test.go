package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLocalStorageSaveUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }

	ref, err := store.SaveUpload("my school logo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/1700000000123-my_school_logo.png", ref)

	content, err := os.ReadFile(filepath.Join(dir, "1700000000123-my_school_logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
	assert.Equal(t, filepath.Join(dir, "1700000000123-my_school_logo.png"), store.Path(ref))
}

func TestLocalStorageSaveUploadStripsDirectories(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(42) }

	ref, err := store.SaveUpload(`..\..\etc/passwd`, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/42-passwd", ref)
}

func TestLocalStorageSaveUploadSameMillisecond(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(500) }

	first, err := store.SaveUpload("file.png", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.SaveUpload("file.png", strings.NewReader("b"))
	require.NoError(t, err)

	assert.Equal(t, "uploads/500-file.png", first)
	assert.Equal(t, "uploads/501-file.png", second)
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("uploads/never-written.pdf"))
	assert.NoError(t, store.Delete(""))
}

func TestLocalStorageDeleteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-a.pdf"), []byte("x"), 0o644))

	require.NoError(t, store.Delete("http://localhost:5000/uploads/1-a.pdf"))
	_, err = os.Stat(filepath.Join(dir, "1-a.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageList(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-a.png"), []byte("abc"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "1-a.png", files[0].Name)
	assert.Equal(t, int64(3), files[0].Size)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                                     "",
		"uploads/1-a.png":                      "uploads/1-a.png",
		"/uploads/1-a.png":                     "uploads/1-a.png",
		"uploads/uploads/1-a.png":              "uploads/1-a.png",
		`uploads\1-a.png`:                      "uploads/1-a.png",
		"1-a.png":                              "uploads/1-a.png",
		"http://localhost:5000/uploads/1-a.png": "uploads/1-a.png",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ref := rapid.StringMatching(`[/\\]?(uploads[/\\]){0,3}[A-Za-z0-9_.-]{0,20}`).Draw(t, "ref")
		once := Normalize(ref)
		if Normalize(once) != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", ref, once, Normalize(once))
		}
		if once != "" && !strings.HasPrefix(once, "uploads/") {
			t.Fatalf("missing prefix: %q", once)
		}
		if once != "" && strings.Count(once, "/") != 1 {
			t.Fatalf("nested path: %q", once)
		}
	})
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000/uploads/1-a.png", PublicURL("http://localhost:5000/", "uploads/1-a.png"))
	assert.Equal(t, "", PublicURL("http://localhost:5000", ""))
}
