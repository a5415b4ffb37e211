package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installFakeFFmpeg drops a shell script named ffmpeg at the front of PATH.
// The script records its arguments to the file named by FFMPEG_ARGS_FILE and
// writes body to its last argument (the output file).
func installFakeFFmpeg(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\n" +
		"if [ -n \"$FFMPEG_ARGS_FILE\" ]; then echo \"$@\" > \"$FFMPEG_ARGS_FILE\"; fi\n" +
		body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestCompressionServiceUnavailable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	svc := NewCompressionService()
	assert.False(t, svc.IsAvailable())

	result := svc.CompressVideo(context.Background(), []byte("data"), "clip.mp4", "standard")
	assert.False(t, result.Success)
	assert.Equal(t, "FFmpeg not available on this system", result.Error)
	assert.Equal(t, 4, result.OriginalSize)
}

func TestCompressVideoSuccess(t *testing.T) {
	installFakeFFmpeg(t, `for last; do :; done; printf 'tiny' > "$last"`)
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FFMPEG_ARGS_FILE", argsFile)

	svc := NewCompressionService()
	require.True(t, svc.IsAvailable())

	content := bytes.Repeat([]byte{0xAB}, 5000)
	result := svc.CompressVideo(context.Background(), content, "clip.mov", "high")

	require.True(t, result.Success)
	assert.Equal(t, []byte("tiny"), result.Content)
	assert.Equal(t, 5000, result.OriginalSize)
	assert.Equal(t, 4, result.CompressedSize)
	assert.Equal(t, "video/mp4", result.ContentType)
	assert.Equal(t, ".mp4", filepath.Ext(result.OutputFilename))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-crf 20")
	assert.Contains(t, string(args), "-preset slow")
	assert.Contains(t, string(args), "-maxrate 4M")
	assert.Contains(t, string(args), "min(1920,iw)")
	assert.Contains(t, string(args), "+faststart")
}

func TestCompressVideoUnknownPresetFallsBackToStandard(t *testing.T) {
	installFakeFFmpeg(t, `for last; do :; done; printf 'tiny' > "$last"`)
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FFMPEG_ARGS_FILE", argsFile)

	svc := NewCompressionService()
	result := svc.CompressVideo(context.Background(), bytes.Repeat([]byte{1}, 100), "clip.mp4", "ultra")
	require.True(t, result.Success)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-crf 23")
	assert.Contains(t, string(args), "-preset medium")
}

func TestCompressVideoKeepsOriginalWhenOutputGrows(t *testing.T) {
	installFakeFFmpeg(t, `for last; do :; done; printf '%0200d' 0 > "$last"`)

	svc := NewCompressionService()
	content := []byte("short input")
	result := svc.CompressVideo(context.Background(), content, "clip.avi", "standard")

	require.True(t, result.Success)
	assert.Equal(t, content, result.Content)
	assert.Equal(t, result.OriginalSize, result.CompressedSize)
	// Original bytes keep the original container extension.
	assert.Equal(t, ".avi", filepath.Ext(result.OutputFilename))
}

func TestCompressVideoFailure(t *testing.T) {
	installFakeFFmpeg(t, `echo "moov atom not found" >&2; exit 1`)

	svc := NewCompressionService()
	result := svc.CompressVideo(context.Background(), []byte("broken"), "clip.mp4", "standard")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Video compression failed")
	assert.Contains(t, result.Error, "moov atom not found")
}

func TestCompressImageWebP(t *testing.T) {
	installFakeFFmpeg(t, `for last; do :; done; printf 'tiny' > "$last"`)
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FFMPEG_ARGS_FILE", argsFile)

	svc := NewCompressionService()
	content := bytes.Repeat([]byte{0xCD}, 2000)
	result := svc.CompressImage(context.Background(), content, "photo.png", "standard", "webp")

	require.True(t, result.Success)
	assert.Equal(t, "image/webp", result.ContentType)
	assert.Equal(t, ".webp", filepath.Ext(result.OutputFilename))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-quality 85")
	assert.Contains(t, string(args), "min(1920,iw)")
}

func TestCompressImageJPEGQualityMapping(t *testing.T) {
	installFakeFFmpeg(t, `for last; do :; done; printf 'tiny' > "$last"`)
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FFMPEG_ARGS_FILE", argsFile)

	svc := NewCompressionService()
	result := svc.CompressImage(context.Background(), bytes.Repeat([]byte{1}, 2000), "photo.png", "high", "jpeg")

	require.True(t, result.Success)
	assert.Equal(t, "image/jpeg", result.ContentType)
	assert.Equal(t, ".jpg", filepath.Ext(result.OutputFilename))

	// Quality 90 maps to q:v 5 on the inverted 2-31 scale.
	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-q:v 5")
	assert.Contains(t, string(args), "min(2560,iw)")
}

func TestCompressAudio(t *testing.T) {
	installFakeFFmpeg(t, `for last; do :; done; printf 'tiny' > "$last"`)
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FFMPEG_ARGS_FILE", argsFile)

	svc := NewCompressionService()
	content := bytes.Repeat([]byte{0xEF}, 3000)
	result := svc.CompressAudio(context.Background(), content, "track.wav", "low")

	require.True(t, result.Success)
	assert.Equal(t, "audio/mp4", result.ContentType)
	assert.Equal(t, ".m4a", filepath.Ext(result.OutputFilename))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-b:a 96k")
	assert.Contains(t, string(args), "-ar 44100")
}

func TestCompressionResultSavings(t *testing.T) {
	result := &CompressionResult{OriginalSize: 1000, CompressedSize: 250}
	assert.InDelta(t, 0.75, result.CompressionRatio(), 0.001)
	assert.Equal(t, "75.0%", result.SavingsPercent())

	empty := &CompressionResult{}
	assert.Equal(t, 0.0, empty.CompressionRatio())
}

func TestExtractVideoFrame(t *testing.T) {
	installFakeFFmpeg(t, `for last; do :; done; printf 'frame' > "$last"`)
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FFMPEG_ARGS_FILE", argsFile)

	svc := NewCompressionService()
	frame, err := svc.ExtractVideoFrame(context.Background(), []byte("mp4 bytes"), "clip.mp4", 512)

	require.NoError(t, err)
	assert.Equal(t, []byte("frame"), frame)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-ss 00:00:01.000")
	assert.Contains(t, string(args), "-vframes 1")
	assert.Contains(t, string(args), "scale=512:-2")
}

func TestExtractVideoFrameFailure(t *testing.T) {
	installFakeFFmpeg(t, `echo "no video stream" >&2; exit 1`)

	svc := NewCompressionService()
	frame, err := svc.ExtractVideoFrame(context.Background(), []byte("not video"), "clip.mp4", 512)

	require.Error(t, err)
	assert.Nil(t, frame)
	assert.Contains(t, err.Error(), "Frame extraction failed")
	assert.Contains(t, err.Error(), "no video stream")
}

func TestCompressVideoTimeout(t *testing.T) {
	installFakeFFmpeg(t, `sleep 1`)

	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	svc := NewCompressionService(WithTimeouts(50*time.Millisecond, 0, 0))
	require.True(t, svc.IsAvailable())

	result := svc.CompressVideo(context.Background(), []byte("data"), "clip.mp4", "standard")
	assert.False(t, result.Success)
	assert.Equal(t, "Video compression timed out. File may be too large.", result.Error)
	assert.Equal(t, 4, result.OriginalSize)

	// The working directory is removed even when ffmpeg is killed.
	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
