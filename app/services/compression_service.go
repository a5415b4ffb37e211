package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default compression timeouts per media kind.
const (
	defaultVideoTimeout = 10 * time.Minute
	defaultImageTimeout = 1 * time.Minute
	defaultAudioTimeout = 3 * time.Minute
)

// videoPreset holds H.264 encoding parameters.
// CRF: 0=lossless, 51=worst. 18-28 is the typical range.
type videoPreset struct {
	CRF          int
	Preset       string
	MaxWidth     int
	MaxHeight    int
	AudioBitrate string
	VideoBitrate string
}

type imagePreset struct {
	Quality      int
	MaxDimension int
}

type audioPreset struct {
	Bitrate    string
	SampleRate int
}

var videoPresets = map[string]videoPreset{
	"high":     {CRF: 20, Preset: "slow", MaxWidth: 1920, MaxHeight: 1080, AudioBitrate: "192k", VideoBitrate: "4M"},
	"standard": {CRF: 23, Preset: "medium", MaxWidth: 1920, MaxHeight: 1080, AudioBitrate: "128k", VideoBitrate: "2M"},
	"low":      {CRF: 28, Preset: "fast", MaxWidth: 1280, MaxHeight: 720, AudioBitrate: "96k", VideoBitrate: "1M"},
}

var imagePresets = map[string]imagePreset{
	"high":     {Quality: 90, MaxDimension: 2560},
	"standard": {Quality: 85, MaxDimension: 1920},
	"low":      {Quality: 75, MaxDimension: 1280},
}

var audioPresets = map[string]audioPreset{
	"high":     {Bitrate: "192k", SampleRate: 48000},
	"standard": {Bitrate: "128k", SampleRate: 44100},
	"low":      {Bitrate: "96k", SampleRate: 44100},
}

// CompressionResult carries the outcome of a single compression attempt.
// Success with Content equal to the input means compression would have
// grown the file and the original bytes were kept.
type CompressionResult struct {
	Success        bool
	Content        []byte
	OutputFilename string
	OriginalSize   int
	CompressedSize int
	ContentType    string
	Error          string
}

// CompressionRatio returns the fraction of bytes saved, 0.0 to 1.0.
func (r *CompressionResult) CompressionRatio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return 1 - float64(r.CompressedSize)/float64(r.OriginalSize)
}

// SavingsPercent returns a human-readable savings percentage.
func (r *CompressionResult) SavingsPercent() string {
	return fmt.Sprintf("%.1f%%", r.CompressionRatio()*100)
}

// CompressionService transcodes media through FFmpeg subprocesses.
// Output standards: H.264+AAC in MP4 for video, WebP or JPEG for images,
// AAC in M4A for audio.
type CompressionService interface {
	IsAvailable() bool
	CompressVideo(ctx context.Context, content []byte, originalFilename, preset string) *CompressionResult
	CompressImage(ctx context.Context, content []byte, originalFilename, preset, outputFormat string) *CompressionResult
	CompressAudio(ctx context.Context, content []byte, originalFilename, preset string) *CompressionResult
	ExtractVideoFrame(ctx context.Context, content []byte, originalFilename string, maxEdge int) ([]byte, error)
}

type CompressionServiceImpl struct {
	ffmpegAvailable bool
	videoTimeout    time.Duration
	imageTimeout    time.Duration
	audioTimeout    time.Duration
}

// CompressionOption customizes a compression service.
type CompressionOption func(*CompressionServiceImpl)

// WithTimeouts overrides the per-kind ffmpeg timeouts. Zero values keep
// the defaults.
func WithTimeouts(video, image, audio time.Duration) CompressionOption {
	return func(s *CompressionServiceImpl) {
		if video > 0 {
			s.videoTimeout = video
		}
		if image > 0 {
			s.imageTimeout = image
		}
		if audio > 0 {
			s.audioTimeout = audio
		}
	}
}

func NewCompressionService(opts ...CompressionOption) CompressionService {
	s := &CompressionServiceImpl{
		videoTimeout: defaultVideoTimeout,
		imageTimeout: defaultImageTimeout,
		audioTimeout: defaultAudioTimeout,
	}
	if _, err := exec.LookPath("ffmpeg"); err == nil {
		s.ffmpegAvailable = true
		log.Printf("FFmpeg compression service initialized")
	} else {
		log.Printf("FFmpeg not found, media compression disabled")
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsAvailable reports whether the ffmpeg binary was found on PATH.
func (s *CompressionServiceImpl) IsAvailable() bool {
	return s.ffmpegAvailable
}

// CompressVideo transcodes video to H.264/AAC in an MP4 container, capped
// at the preset's resolution and bitrate.
func (s *CompressionServiceImpl) CompressVideo(ctx context.Context, content []byte, originalFilename, preset string) *CompressionResult {
	originalSize := len(content)
	if !s.ffmpegAvailable {
		return &CompressionResult{Error: "FFmpeg not available on this system", OriginalSize: originalSize}
	}

	settings, ok := videoPresets[preset]
	if !ok {
		settings = videoPresets["standard"]
	}

	inputExt := inputExtension(originalFilename, ".mp4")

	inputFile, outputFile, cleanup, err := tempFilePair(inputExt, ".mp4", content)
	if err != nil {
		return &CompressionResult{Error: err.Error(), OriginalSize: originalSize}
	}
	defer cleanup()

	scaleFilter := fmt.Sprintf(
		"scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease",
		settings.MaxWidth, settings.MaxHeight,
	)

	args := []string{
		"-i", inputFile,
		"-c:v", "libx264",
		"-preset", settings.Preset,
		"-crf", fmt.Sprintf("%d", settings.CRF),
		"-maxrate", settings.VideoBitrate,
		"-bufsize", settings.VideoBitrate,
		"-vf", scaleFilter,
		"-c:a", "aac",
		"-b:a", settings.AudioBitrate,
		"-ac", "2",
		"-movflags", "+faststart",
		"-pix_fmt", "yuv420p",
		"-y",
		outputFile,
	}

	log.Printf("Compressing video: %s (%.2fMB)", originalFilename, float64(originalSize)/1024/1024)

	if errMsg := s.runFFmpeg(ctx, args, s.videoTimeout, "Video compression"); errMsg != "" {
		return &CompressionResult{Error: errMsg, OriginalSize: originalSize}
	}

	compressed, err := os.ReadFile(outputFile)
	if err != nil {
		return &CompressionResult{Error: err.Error(), OriginalSize: originalSize}
	}

	if len(compressed) >= originalSize {
		log.Printf("Compression did not reduce size, using original")
		return &CompressionResult{
			Success:        true,
			Content:        content,
			OutputFilename: uuid.New().String() + inputExt,
			OriginalSize:   originalSize,
			CompressedSize: originalSize,
			ContentType:    "video/mp4",
		}
	}

	log.Printf("Video compressed: %.2fMB -> %.2fMB",
		float64(originalSize)/1024/1024, float64(len(compressed))/1024/1024)

	return &CompressionResult{
		Success:        true,
		Content:        compressed,
		OutputFilename: uuid.New().String() + ".mp4",
		OriginalSize:   originalSize,
		CompressedSize: len(compressed),
		ContentType:    "video/mp4",
	}
}

// CompressImage transcodes an image to WebP or JPEG, capped at the preset's
// longest edge.
func (s *CompressionServiceImpl) CompressImage(ctx context.Context, content []byte, originalFilename, preset, outputFormat string) *CompressionResult {
	originalSize := len(content)
	if !s.ffmpegAvailable {
		return &CompressionResult{Error: "FFmpeg not available on this system", OriginalSize: originalSize}
	}

	settings, ok := imagePresets[preset]
	if !ok {
		settings = imagePresets["standard"]
	}

	inputExt := inputExtension(originalFilename, ".jpg")

	outputExt := ".webp"
	contentType := "image/webp"
	if outputFormat != "webp" {
		outputExt = ".jpg"
		contentType = "image/jpeg"
	}

	inputFile, outputFile, cleanup, err := tempFilePair(inputExt, outputExt, content)
	if err != nil {
		return &CompressionResult{Error: err.Error(), OriginalSize: originalSize}
	}
	defer cleanup()

	scaleFilter := fmt.Sprintf(
		"scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease",
		settings.MaxDimension, settings.MaxDimension,
	)

	var args []string
	if outputFormat == "webp" {
		args = []string{
			"-i", inputFile,
			"-vf", scaleFilter,
			"-quality", fmt.Sprintf("%d", settings.Quality),
			"-compression_level", "4",
			"-y",
			outputFile,
		}
	} else {
		// JPEG q:v scale is 2-31, lower is better.
		jpegQuality := 31 - int(float64(settings.Quality)/100*29)
		if jpegQuality < 2 {
			jpegQuality = 2
		}
		args = []string{
			"-i", inputFile,
			"-vf", scaleFilter,
			"-q:v", fmt.Sprintf("%d", jpegQuality),
			"-y",
			outputFile,
		}
	}

	log.Printf("Compressing image: %s (%.1fKB)", originalFilename, float64(originalSize)/1024)

	if errMsg := s.runFFmpeg(ctx, args, s.imageTimeout, "Image compression"); errMsg != "" {
		return &CompressionResult{Error: errMsg, OriginalSize: originalSize}
	}

	compressed, err := os.ReadFile(outputFile)
	if err != nil {
		return &CompressionResult{Error: err.Error(), OriginalSize: originalSize}
	}

	if len(compressed) >= originalSize {
		log.Printf("Compression did not reduce size, using original")
		return &CompressionResult{
			Success:        true,
			Content:        content,
			OutputFilename: uuid.New().String() + inputExt,
			OriginalSize:   originalSize,
			CompressedSize: originalSize,
			ContentType:    contentType,
		}
	}

	log.Printf("Image compressed: %.1fKB -> %.1fKB",
		float64(originalSize)/1024, float64(len(compressed))/1024)

	return &CompressionResult{
		Success:        true,
		Content:        compressed,
		OutputFilename: uuid.New().String() + outputExt,
		OriginalSize:   originalSize,
		CompressedSize: len(compressed),
		ContentType:    contentType,
	}
}

// CompressAudio transcodes audio to AAC in an M4A container.
func (s *CompressionServiceImpl) CompressAudio(ctx context.Context, content []byte, originalFilename, preset string) *CompressionResult {
	originalSize := len(content)
	if !s.ffmpegAvailable {
		return &CompressionResult{Error: "FFmpeg not available on this system", OriginalSize: originalSize}
	}

	settings, ok := audioPresets[preset]
	if !ok {
		settings = audioPresets["standard"]
	}

	inputExt := inputExtension(originalFilename, ".mp3")

	inputFile, outputFile, cleanup, err := tempFilePair(inputExt, ".m4a", content)
	if err != nil {
		return &CompressionResult{Error: err.Error(), OriginalSize: originalSize}
	}
	defer cleanup()

	args := []string{
		"-i", inputFile,
		"-c:a", "aac",
		"-b:a", settings.Bitrate,
		"-ar", fmt.Sprintf("%d", settings.SampleRate),
		"-ac", "2",
		"-y",
		outputFile,
	}

	log.Printf("Compressing audio: %s (%.2fMB)", originalFilename, float64(originalSize)/1024/1024)

	if errMsg := s.runFFmpeg(ctx, args, s.audioTimeout, "Audio compression"); errMsg != "" {
		return &CompressionResult{Error: errMsg, OriginalSize: originalSize}
	}

	compressed, err := os.ReadFile(outputFile)
	if err != nil {
		return &CompressionResult{Error: err.Error(), OriginalSize: originalSize}
	}

	if len(compressed) >= originalSize {
		log.Printf("Compression did not reduce size, using original")
		return &CompressionResult{
			Success:        true,
			Content:        content,
			OutputFilename: uuid.New().String() + inputExt,
			OriginalSize:   originalSize,
			CompressedSize: originalSize,
			ContentType:    "audio/mpeg",
		}
	}

	log.Printf("Audio compressed: %.2fMB -> %.2fMB",
		float64(originalSize)/1024/1024, float64(len(compressed))/1024/1024)

	return &CompressionResult{
		Success:        true,
		Content:        compressed,
		OutputFilename: uuid.New().String() + ".m4a",
		OriginalSize:   originalSize,
		CompressedSize: len(compressed),
		ContentType:    "audio/mp4",
	}
}

// ExtractVideoFrame grabs a single frame one second in, scaled to maxEdge,
// encoded as JPEG.
func (s *CompressionServiceImpl) ExtractVideoFrame(ctx context.Context, content []byte, originalFilename string, maxEdge int) ([]byte, error) {
	if !s.ffmpegAvailable {
		return nil, fmt.Errorf("FFmpeg not available on this system")
	}

	inputExt := inputExtension(originalFilename, ".mp4")

	inputFile, outputFile, cleanup, err := tempFilePair(inputExt, ".jpg", content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	args := []string{
		"-i", inputFile,
		"-ss", "00:00:01.000",
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", maxEdge),
		"-y",
		outputFile,
	}

	if errMsg := s.runFFmpeg(ctx, args, s.imageTimeout, "Frame extraction"); errMsg != "" {
		return nil, fmt.Errorf("%s", errMsg)
	}

	return os.ReadFile(outputFile)
}

// runFFmpeg executes ffmpeg with the given args under a timeout. Returns ""
// on success, an error message otherwise.
func (s *CompressionServiceImpl) runFFmpeg(ctx context.Context, args []string, timeout time.Duration, operation string) string {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return ""
	}

	if runCtx.Err() == context.DeadlineExceeded {
		log.Printf("%s timed out after %s", operation, timeout)
		return fmt.Sprintf("%s timed out. File may be too large.", operation)
	}

	errMsg := strings.TrimSpace(string(output))
	if errMsg == "" {
		errMsg = "Unknown FFmpeg error"
	}
	if len(errMsg) > 200 {
		errMsg = errMsg[:200]
	}
	log.Printf("FFmpeg %s failed: %s", strings.ToLower(operation), errMsg)
	return fmt.Sprintf("%s failed: %s", operation, errMsg)
}

// tempFilePair writes content to a temp input file and allocates an output
// path next to it. The returned cleanup removes both unconditionally.
func tempFilePair(inputExt, outputExt string, content []byte) (inputFile, outputFile string, cleanup func(), err error) {
	tmpDir, err := os.MkdirTemp("", "media-compress-")
	if err != nil {
		return "", "", nil, err
	}

	inputFile = filepath.Join(tmpDir, "input"+inputExt)
	if err := os.WriteFile(inputFile, content, 0o600); err != nil {
		os.RemoveAll(tmpDir)
		return "", "", nil, err
	}

	outputFile = filepath.Join(tmpDir, "output"+outputExt)
	cleanup = func() { os.RemoveAll(tmpDir) }
	return inputFile, outputFile, cleanup, nil
}

// inputExtension returns the lowercase extension of a filename, or def when
// the filename has none.
func inputExtension(filename, def string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return def
	}
	return ext
}
