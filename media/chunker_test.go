package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConverter stands in for ffmpeg: ToWAV writes a synthetic WAV with a
// configurable PCM payload, ToMP3 copies the input bytes verbatim.
type fakeConverter struct {
	pcmLen     int
	truncate   int // bytes withheld from the end of the written WAV
	duration   float64
	wavErr     error
	mp3Err     error
	mp3ErrPart int // fail encoding at this part index, -1 to disable
	mp3Calls   int
}

func (f *fakeConverter) ToWAV(ctx context.Context, src, dst string) error {
	if f.wavErr != nil {
		return f.wavErr
	}
	data := buildWAV(f.pcmLen)
	return os.WriteFile(dst, data[:len(data)-f.truncate], 0644)
}

func (f *fakeConverter) ToMP3(ctx context.Context, src, dst string) error {
	call := f.mp3Calls
	f.mp3Calls++
	if f.mp3Err != nil && call == f.mp3ErrPart {
		return f.mp3Err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func (f *fakeConverter) Probe(ctx context.Context, src string) (float64, error) {
	return f.duration, nil
}

// buildWAV produces a minimal mono 16-bit WAV with pcmLen bytes of data.
func buildWAV(pcmLen int) []byte {
	var buf bytes.Buffer
	format := wavFormat{Channels: 1, SampleRate: 16000, BitsPerSample: 16}
	if err := writeWAVHeader(&buf, format, uint32(pcmLen)); err != nil {
		panic(err)
	}
	pcm := make([]byte, pcmLen)
	for i := range pcm {
		pcm[i] = byte(i % 251)
	}
	buf.Write(pcm)
	return buf.Bytes()
}

func writeSource(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func TestSplitSmallAudioPassThrough(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "lecture.mp3", 1024)
	conv := &fakeConverter{duration: 12.5, mp3ErrPart: -1}

	c := NewChunker(conv, WithCeiling(4096))
	result, err := c.Split(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, result.Parts, 1)
	assert.Equal(t, filepath.Join(dir, "lecture_0.mp3"), result.Parts[0])
	assert.Equal(t, 12.5, result.DurationSeconds)

	// Copied through unchanged.
	data, err := os.ReadFile(result.Parts[0])
	require.NoError(t, err)
	assert.Len(t, data, 1024)
}

func TestSplitPartCount(t *testing.T) {
	tests := []struct {
		name      string
		pcmLen    int
		ceiling   int64
		wantParts int
	}{
		{"exact multiple", 4096, 1024, 4},
		{"remainder", 4097, 1024, 5},
		{"single part", 100, 1024, 1},
		{"one byte over", 1025, 1024, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			// Video sources always go through normalization.
			src := writeSource(t, dir, "talk.mp4", 10)
			conv := &fakeConverter{pcmLen: tt.pcmLen, duration: 60, mp3ErrPart: -1}

			c := NewChunker(conv, WithCeiling(tt.ceiling))
			result, err := c.Split(context.Background(), src)
			require.NoError(t, err)
			assert.Len(t, result.Parts, tt.wantParts)

			// Parts are numbered in order.
			for i, p := range result.Parts {
				assert.Equal(t, filepath.Join(dir, fmt.Sprintf("talk_%d.mp3", i)), p)
			}

			// The intermediate WAV is gone.
			_, statErr := os.Stat(filepath.Join(dir, "talk.wav"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestSplitLargeAudioIsRechunked(t *testing.T) {
	dir := t.TempDir()
	// Audio at or over the ceiling goes through normalization like video.
	src := writeSource(t, dir, "long.mp3", 5000)
	conv := &fakeConverter{pcmLen: 3000, duration: 300, mp3ErrPart: -1}

	c := NewChunker(conv, WithCeiling(2048))
	result, err := c.Split(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, result.Parts, 2)
}

func TestSplitUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "notes.txt", 10)

	c := NewChunker(&fakeConverter{mp3ErrPart: -1})
	_, err := c.Split(context.Background(), src)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestSplitConversionFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "talk.mp4", 10)
	conv := &fakeConverter{wavErr: errors.New("codec missing"), mp3ErrPart: -1}

	c := NewChunker(conv, WithCeiling(1024))
	_, err := c.Split(context.Background(), src)
	assert.Error(t, err)
}

func TestSplitEncodeFailureCleansUpParts(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "talk.mp4", 10)
	conv := &fakeConverter{
		pcmLen:     4096,
		duration:   60,
		mp3Err:     errors.New("encoder crashed"),
		mp3ErrPart: 2,
	}

	c := NewChunker(conv, WithCeiling(1024))
	_, err := c.Split(context.Background(), src)
	require.Error(t, err)

	// No stray part files survive a failed split.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	for _, e := range entries {
		assert.Equal(t, "talk.mp4", e.Name(), "unexpected leftover %s", e.Name())
	}
}

func TestSplitTruncatedWAVLeavesNoPartFiles(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "talk.mp4", 10)
	// The header claims 2048 PCM bytes but only 1536 are present, so the
	// second part fails mid-copy.
	conv := &fakeConverter{pcmLen: 2048, truncate: 512, duration: 30, mp3ErrPart: -1}

	c := NewChunker(conv, WithCeiling(1024))
	_, err := c.Split(context.Background(), src)
	require.Error(t, err)

	// Neither the finished first part nor the half-written WAV survives.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	for _, e := range entries {
		assert.Equal(t, "talk.mp4", e.Name(), "unexpected leftover %s", e.Name())
	}
}

func TestReadWAVHeaderRejectsGarbage(t *testing.T) {
	_, _, err := readWAVHeader(bytes.NewReader([]byte("definitely not a wav file")))
	assert.Error(t, err)
}

func TestWAVHeaderRoundTrip(t *testing.T) {
	format := wavFormat{Channels: 1, SampleRate: 16000, BitsPerSample: 16}
	var buf bytes.Buffer
	require.NoError(t, writeWAVHeader(&buf, format, 2048))
	buf.Write(make([]byte, 2048))

	got, dataLen, err := readWAVHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, format, got)
	assert.Equal(t, uint32(2048), dataLen)
}
