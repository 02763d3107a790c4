package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPartCeiling is the per-request size limit of the transcription API.
const DefaultPartCeiling = 24 * 1024 * 1024 // 24 MiB

// SplitResult describes the outcome of splitting one media asset.
type SplitResult struct {
	// Parts is the ordered list of encoded part files. Transcribing the
	// parts in order and concatenating the text reconstructs the asset.
	Parts []string

	// DurationSeconds is the probed duration of the source asset.
	DurationSeconds float64
}

// Chunker splits a media asset into byte-budgeted parts that each fit the
// transcription API's size ceiling. The budget is applied to the normalized
// PCM bytes consumed per part; the MP3 encoding of a part is strictly smaller
// than its PCM input, so encoded parts stay under the upload ceiling too.
type Chunker struct {
	conv    Converter
	ceiling int64
	logger  *slog.Logger
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithCeiling overrides the per-part byte budget.
func WithCeiling(n int64) ChunkerOption {
	return func(c *Chunker) {
		if n > 0 {
			c.ceiling = n
		}
	}
}

// WithChunkerLogger sets a custom logger.
func WithChunkerLogger(logger *slog.Logger) ChunkerOption {
	return func(c *Chunker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChunker creates a chunker around the given converter.
func NewChunker(conv Converter, opts ...ChunkerOption) *Chunker {
	c := &Chunker{
		conv:    conv,
		ceiling: DefaultPartCeiling,
		logger:  slog.Default().With("component", "media-chunker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split divides the media asset at srcPath into ordered encoded parts, each
// within the byte budget.
//
// A compressed audio source already under the ceiling is copied through as a
// single part. Anything else is normalized to an intermediate WAV, walked in
// ceiling-sized PCM windows, and each window encoded to MP3. The intermediate
// WAV is always removed; on failure any parts written so far are removed as
// well, so a retried tick starts clean.
//
// Sources that are neither audio nor video fail with ErrUnsupportedMedia.
func (c *Chunker) Split(ctx context.Context, srcPath string) (*SplitResult, error) {
	kind, err := classifyMedia(srcPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", srcPath, err)
	}

	duration, err := c.conv.Probe(ctx, srcPath)
	if err != nil {
		return nil, err
	}

	// Small compressed audio goes straight through.
	if kind == mediaKindAudio && info.Size() < c.ceiling {
		part := partPath(srcPath, 0)
		if err := copyFile(srcPath, part); err != nil {
			return nil, err
		}
		c.logger.Debug("media under ceiling, copied through", "src", srcPath, "part", part)
		return &SplitResult{Parts: []string{part}, DurationSeconds: duration}, nil
	}

	wavPath := changeExtension(srcPath, ".wav")
	if err := c.conv.ToWAV(ctx, srcPath, wavPath); err != nil {
		return nil, err
	}
	defer os.Remove(wavPath)

	parts, err := c.splitWAV(ctx, wavPath)
	if err != nil {
		removeAll(parts)
		return nil, err
	}

	c.logger.Info("media split complete", "src", srcPath, "parts", len(parts), "duration_s", duration)
	return &SplitResult{Parts: parts, DurationSeconds: duration}, nil
}

// splitWAV walks the PCM data of wavPath and writes sequential encoded parts,
// each bounded by the byte ceiling measured on the PCM bytes consumed.
func (c *Chunker) splitWAV(ctx context.Context, wavPath string) ([]string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", wavPath, err)
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 1<<20)
	format, dataLen, err := readWAVHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", wavPath, err)
	}

	var parts []string
	remaining := int64(dataLen)
	for index := 0; remaining > 0; index++ {
		partLen := remaining
		if partLen > c.ceiling {
			partLen = c.ceiling
		}

		partWAV := changeExtension(wavPath, fmt.Sprintf("_%d.wav", index))
		if err := writeWAVPart(reader, partWAV, format, uint32(partLen)); err != nil {
			os.Remove(partWAV)
			return parts, err
		}

		partMP3 := changeExtension(wavPath, fmt.Sprintf("_%d.mp3", index))
		encodeErr := c.conv.ToMP3(ctx, partWAV, partMP3)
		os.Remove(partWAV)
		if encodeErr != nil {
			return parts, encodeErr
		}

		parts = append(parts, partMP3)
		remaining -= partLen
	}

	return parts, nil
}

// writeWAVPart copies partLen PCM bytes from r into a standalone WAV file.
func writeWAVPart(r io.Reader, path string, format wavFormat, partLen uint32) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	w := bufio.NewWriterSize(out, 1<<20)
	if err := writeWAVHeader(w, format, partLen); err != nil {
		return err
	}
	if _, err := io.CopyN(w, r, int64(partLen)); err != nil {
		return fmt.Errorf("copy PCM to %s: %w", path, err)
	}
	return w.Flush()
}

type mediaKind int

const (
	mediaKindAudio mediaKind = iota
	mediaKindVideo
)

// classifyMedia decides by content type whether the source is audio or video.
// Anything else is an explicit error rather than a silent zero-part result.
func classifyMedia(path string) (mediaKind, error) {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	switch {
	case strings.HasPrefix(contentType, "audio/"):
		return mediaKindAudio, nil
	case strings.HasPrefix(contentType, "video/"):
		return mediaKindVideo, nil
	default:
		return 0, fmt.Errorf("%w: %s (%s)", ErrUnsupportedMedia, filepath.Base(path), contentType)
	}
}

// partPath names the numbered part next to the source file, keeping its
// extension: lecture.mp3 -> lecture_0.mp3
func partPath(src string, index int) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + fmt.Sprintf("_%d%s", index, ext)
}

// changeExtension swaps the file extension of path for newExt.
func changeExtension(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
