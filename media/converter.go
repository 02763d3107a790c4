package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Converter abstracts the external audio tooling so the chunker can be tested
// without ffmpeg installed.
type Converter interface {
	// ToWAV normalizes src into a mono 16-bit PCM WAV file at dst.
	ToWAV(ctx context.Context, src, dst string) error

	// ToMP3 encodes the audio file at src into an MP3 file at dst.
	ToMP3(ctx context.Context, src, dst string) error

	// Probe returns the duration of the media file at src in seconds.
	Probe(ctx context.Context, src string) (float64, error)
}

// FFmpeg implements Converter by shelling out to ffmpeg and ffprobe.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	sampleRate  int
	logger      *slog.Logger
}

var _ Converter = (*FFmpeg)(nil)

// NewFFmpeg creates a converter using the ffmpeg and ffprobe binaries on PATH.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		sampleRate:  16000,
		logger:      slog.Default().With("component", "ffmpeg"),
	}
}

// ToWAV extracts and normalizes the audio track of src: single channel,
// 16-bit signed PCM, fixed sample rate. Video inputs lose their video track.
func (f *FFmpeg) ToWAV(ctx context.Context, src, dst string) error {
	return f.run(ctx, f.ffmpegPath,
		"-y", "-i", src,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(f.sampleRate),
		"-acodec", "pcm_s16le",
		dst)
}

// ToMP3 encodes src to MP3 at a quality suitable for speech transcription.
func (f *FFmpeg) ToMP3(ctx context.Context, src, dst string) error {
	return f.run(ctx, f.ffmpegPath,
		"-y", "-i", src,
		"-codec:a", "libmp3lame",
		"-qscale:a", "4",
		dst)
}

// Probe returns the container duration in seconds.
func (f *FFmpeg) Probe(ctx context.Context, src string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		src)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", src, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparsable duration %q: %w", src, out, err)
	}
	return duration, nil
}

func (f *FFmpeg) run(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.logger.Debug("running converter", "bin", bin, "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", bin, err, tail(stderr.String(), 512))
	}
	return nil
}

// tail returns the last maxLen bytes of s.
func tail(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[len(s)-maxLen:]
}
