// Package storage lays out uploaded videos and thumbnails on disk. Videos
// live under the video dir, series episodes inside a per-series folder;
// thumbnails live flat in the thumbnail dir. The database stores paths
// relative to these roots.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	invalidFolderChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns     = regexp.MustCompile(`\s+`)
)

// AllowedVideoExtensions are the accepted upload container formats.
var AllowedVideoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mkv": true, ".mov": true, ".wmv": true,
}

// AllowedImageExtensions are the accepted custom thumbnail formats.
var AllowedImageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
}

// Store reads and writes media files under the configured roots.
type Store struct {
	VideoDir     string
	ThumbnailDir string
}

func New(videoDir, thumbnailDir string) *Store {
	return &Store{VideoDir: videoDir, ThumbnailDir: thumbnailDir}
}

// SanitizeFolderName makes a series name safe for use as a directory name.
func SanitizeFolderName(name string) string {
	s := invalidFolderChars.ReplaceAllString(name, "_")
	s = whitespaceRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, ". ")
	if s == "" {
		s = "Unknown_Series"
	}
	return s
}

// AllowedFile reports whether the filename's extension is in the given set.
func AllowedFile(filename string, allowed map[string]bool) bool {
	return allowed[strings.ToLower(filepath.Ext(filename))]
}

// VideoFilename builds a unique, timestamped filename for an upload. Series
// episodes embed the series name and SxxEyy marker.
func VideoFilename(original, seriesName string, season, episode int, now time.Time) string {
	base := filepath.Base(original)
	stamp := now.Format("20060102_150405")
	if seriesName != "" {
		return fmt.Sprintf("%s_S%02dE%02d_%s_%s", SanitizeFolderName(seriesName), season, episode, stamp, base)
	}
	return fmt.Sprintf("%s_%s", stamp, base)
}

// ThumbnailFilename builds the filename for a thumbnail matching the naming
// of VideoFilename. prefix distinguishes custom uploads from generated ones.
func ThumbnailFilename(prefix, seriesName string, season, episode int, now time.Time) string {
	stamp := now.Format("20060102_150405")
	if seriesName != "" {
		return fmt.Sprintf("%s_%s_S%02dE%02d_%s.jpg", prefix, SanitizeFolderName(seriesName), season, episode, stamp)
	}
	return fmt.Sprintf("%s_%s.jpg", prefix, stamp)
}

// VideoRelPath returns the database-stored relative path for a video file,
// placing series episodes inside their series folder.
func VideoRelPath(filename, seriesName string) string {
	if seriesName == "" {
		return filename
	}
	return filepath.Join(SanitizeFolderName(seriesName), filename)
}

// VideoPath resolves a stored relative path to an absolute filesystem path.
func (s *Store) VideoPath(relPath string) string {
	return filepath.Join(s.VideoDir, relPath)
}

// ThumbnailPath resolves a thumbnail filename to an absolute path.
func (s *Store) ThumbnailPath(filename string) string {
	return filepath.Join(s.ThumbnailDir, filename)
}

// SaveVideo writes the uploaded file to its final location, creating the
// series folder as needed. Returns the stored relative path.
func (s *Store) SaveVideo(file *multipart.FileHeader, filename, seriesName string) (string, error) {
	relPath := VideoRelPath(filename, seriesName)
	fullPath := s.VideoPath(relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create series folder: %w", err)
	}
	if err := saveUpload(file, fullPath); err != nil {
		return "", err
	}
	return relPath, nil
}

// SaveThumbnail writes an uploaded thumbnail into the thumbnail dir.
func (s *Store) SaveThumbnail(file *multipart.FileHeader, filename string) error {
	return saveUpload(file, s.ThumbnailPath(filename))
}

// RemoveVideo deletes a stored video and, for series episodes, prunes the
// series folder once it is empty.
func (s *Store) RemoveVideo(relPath string) error {
	fullPath := s.VideoPath(relPath)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	dir := filepath.Dir(fullPath)
	if dir != filepath.Clean(s.VideoDir) {
		if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
			_ = os.Remove(dir)
		}
	}
	return nil
}

// RemoveThumbnail deletes a stored thumbnail. Missing files are not errors.
func (s *Store) RemoveThumbnail(filename string) error {
	if filename == "" {
		return nil
	}
	if err := os.Remove(s.ThumbnailPath(filename)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Cleanup removes files written during a failed upload. This is the
// compensating action for a database insert that failed after the files
// landed on disk; file storage and the database are separate systems, so
// there is no transaction to lean on.
func (s *Store) Cleanup(videoRelPath, thumbnailFile string) {
	if videoRelPath != "" {
		_ = s.RemoveVideo(videoRelPath)
	}
	_ = s.RemoveThumbnail(thumbnailFile)
}

func saveUpload(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
