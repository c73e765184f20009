package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFolderName(t *testing.T) {
	assert.Equal(t, "Breaking_Bad", SanitizeFolderName("Breaking Bad"))
	assert.Equal(t, "What_s_Next_", SanitizeFolderName(`What"s/Next?`))
	assert.Equal(t, "Unknown_Series", SanitizeFolderName("..."))
	assert.Equal(t, "a_b", SanitizeFolderName("a   b"))
}

func TestAllowedFile(t *testing.T) {
	assert.True(t, AllowedFile("movie.mp4", AllowedVideoExtensions))
	assert.True(t, AllowedFile("MOVIE.MKV", AllowedVideoExtensions))
	assert.False(t, AllowedFile("movie.exe", AllowedVideoExtensions))
	assert.False(t, AllowedFile("noext", AllowedVideoExtensions))

	assert.True(t, AllowedFile("poster.jpeg", AllowedImageExtensions))
	assert.False(t, AllowedFile("poster.svg", AllowedImageExtensions))
}

func TestFilenames(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	t.Run("standalone video", func(t *testing.T) {
		name := VideoFilename("clip.mp4", "", 0, 0, now)
		assert.Equal(t, "20260314_150926_clip.mp4", name)
		assert.Equal(t, name, VideoRelPath(name, ""))
	})

	t.Run("series episode", func(t *testing.T) {
		name := VideoFilename("clip.mp4", "The Wire", 1, 3, now)
		assert.Equal(t, "The_Wire_S01E03_20260314_150926_clip.mp4", name)
		assert.Equal(t, filepath.Join("The_Wire", name), VideoRelPath(name, "The Wire"))
	})

	t.Run("thumbnails", func(t *testing.T) {
		assert.Equal(t, "thumb_20260314_150926.jpg", ThumbnailFilename("thumb", "", 0, 0, now))
		assert.Equal(t, "custom_The_Wire_S01E03_20260314_150926.jpg", ThumbnailFilename("custom", "The Wire", 1, 3, now))
	})

	t.Run("upload path traversal stripped", func(t *testing.T) {
		name := VideoFilename("../../etc/passwd", "", 0, 0, now)
		assert.Equal(t, "20260314_150926_passwd", name)
	})
}

func TestStore_RemoveVideo(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, "videos"), filepath.Join(dir, "thumbs"))

	t.Run("prunes empty series folder", func(t *testing.T) {
		rel := filepath.Join("Some_Show", "ep1.mp4")
		full := store.VideoPath(rel)
		assert.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		assert.NoError(t, os.WriteFile(full, []byte("x"), 0o644))

		assert.NoError(t, store.RemoveVideo(rel))

		_, err := os.Stat(filepath.Dir(full))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("keeps folder with remaining episodes", func(t *testing.T) {
		relA := filepath.Join("Other_Show", "ep1.mp4")
		relB := filepath.Join("Other_Show", "ep2.mp4")
		assert.NoError(t, os.MkdirAll(filepath.Dir(store.VideoPath(relA)), 0o755))
		assert.NoError(t, os.WriteFile(store.VideoPath(relA), []byte("x"), 0o644))
		assert.NoError(t, os.WriteFile(store.VideoPath(relB), []byte("x"), 0o644))

		assert.NoError(t, store.RemoveVideo(relA))

		_, err := os.Stat(store.VideoPath(relB))
		assert.NoError(t, err)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		assert.NoError(t, store.RemoveVideo("never-existed.mp4"))
	})
}

func TestStore_Cleanup(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, "videos"), filepath.Join(dir, "thumbs"))
	assert.NoError(t, os.MkdirAll(store.VideoDir, 0o755))
	assert.NoError(t, os.MkdirAll(store.ThumbnailDir, 0o755))

	assert.NoError(t, os.WriteFile(store.VideoPath("v.mp4"), []byte("x"), 0o644))
	assert.NoError(t, os.WriteFile(store.ThumbnailPath("t.jpg"), []byte("x"), 0o644))

	store.Cleanup("v.mp4", "t.jpg")

	_, err := os.Stat(store.VideoPath("v.mp4"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(store.ThumbnailPath("t.jpg"))
	assert.True(t, os.IsNotExist(err))
}
