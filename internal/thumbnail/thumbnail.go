// Package thumbnail extracts preview images from uploaded videos. Frame
// extraction shells out to ffmpeg; when that fails or ffmpeg is absent, a
// generated placeholder keeps the catalog rendering.
package thumbnail

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/reelhaven/reelhaven/internal/logger"
)

const (
	thumbWidth   = 320
	thumbHeight  = 240
	grabTimeout  = 30 * time.Second
	defaultPoint = 10 * time.Second // seek point for the frame grab
)

// Executor runs the external ffmpeg/ffprobe binaries. Abstracted so tests
// can substitute a fake.
type Executor interface {
	Duration(ctx context.Context, videoPath string) (time.Duration, error)
	GrabFrame(ctx context.Context, videoPath, thumbnailPath string, at time.Duration) error
}

// FFmpegExecutor implements Executor using OS processes.
type FFmpegExecutor struct {
	Binary string // ffmpeg binary name or path
}

func NewFFmpegExecutor(binary string) *FFmpegExecutor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegExecutor{Binary: binary}
}

func (e *FFmpegExecutor) probeBinary() string {
	if strings.HasSuffix(e.Binary, "ffmpeg") {
		return strings.TrimSuffix(e.Binary, "ffmpeg") + "ffprobe"
	}
	return "ffprobe"
}

// Duration asks ffprobe for the container duration in seconds.
func (e *FFmpegExecutor) Duration(ctx context.Context, videoPath string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, e.probeBinary(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// GrabFrame extracts one frame at the given offset, scaled to the thumbnail width.
func (e *FFmpegExecutor) GrabFrame(ctx context.Context, videoPath, thumbnailPath string, at time.Duration) error {
	cmd := exec.CommandContext(ctx, e.Binary,
		"-ss", fmt.Sprintf("%.2f", at.Seconds()),
		"-i", videoPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:-1", thumbWidth),
		"-y", thumbnailPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg frame grab: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Generator produces thumbnails for videos.
type Generator struct {
	exec Executor
}

func NewGenerator(exec Executor) *Generator {
	return &Generator{exec: exec}
}

// Generate writes a thumbnail for videoPath to thumbnailPath. The returned
// flag reports whether the image is an authentic video frame; a placeholder
// is produced when extraction fails, so the caller always gets an image or
// an error, never silence.
func (g *Generator) Generate(videoPath, thumbnailPath string) (isFrame bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), grabTimeout)
	defer cancel()

	if err := g.grab(ctx, videoPath, thumbnailPath); err == nil {
		return true, nil
	} else {
		logger.WithFields(map[string]interface{}{"video": filepath.Base(videoPath)}).
			WithError(err).Warn("frame extraction failed, generating placeholder")
	}

	if err := writePlaceholder(thumbnailPath); err != nil {
		return false, fmt.Errorf("placeholder thumbnail: %w", err)
	}
	return false, nil
}

func (g *Generator) grab(ctx context.Context, videoPath, thumbnailPath string) error {
	at := defaultPoint
	// Short videos: grab at 10% of the duration instead of a fixed 10s.
	if dur, err := g.exec.Duration(ctx, videoPath); err == nil && dur > 0 {
		if tenth := dur / 10; tenth < at {
			at = tenth
		}
	}
	return g.exec.GrabFrame(ctx, videoPath, thumbnailPath, at)
}

// writePlaceholder renders a dark card so the catalog grid has something to
// show. Stdlib image only; no imaging dependency.
func writePlaceholder(thumbnailPath string) error {
	img := image.NewRGBA(image.Rect(0, 0, thumbWidth, thumbHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}}, image.Point{}, draw.Src)

	// A simple film-strip band; text rendering would need a font library.
	band := color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}
	for y := thumbHeight/2 - 12; y < thumbHeight/2+12; y++ {
		for x := 0; x < thumbWidth; x++ {
			img.Set(x, y, band)
		}
	}

	out, err := os.Create(thumbnailPath)
	if err != nil {
		return err
	}
	defer out.Close()

	return jpeg.Encode(out, img, &jpeg.Options{Quality: 85})
}
