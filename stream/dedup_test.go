package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicatorExactRepeat(t *testing.T) {
	d := NewDeduplicator()

	assert.True(t, d.Admit("Hello"))
	assert.False(t, d.Admit("Hello"), "immediate repeat must be suppressed")
	assert.Equal(t, "Hello", d.Text())
}

func TestDeduplicatorShortTailResend(t *testing.T) {
	d := NewDeduplicator()

	assert.True(t, d.Admit("...the"))
	assert.True(t, d.Admit(" cat"))
	assert.True(t, d.Admit(" sat"))
	// Re-send of a short fragment already at the buffer tail, but not the
	// immediately preceding delta.
	d.last = ""
	assert.False(t, d.Admit(" sat"))
	assert.Equal(t, "...the cat sat", d.Text())
}

func TestDeduplicatorOverlapContinuation(t *testing.T) {
	d := NewDeduplicator()

	assert.True(t, d.Admit("The quick brown fox jumps over"))
	// A 30-byte fragment fully present at the tail is suppressed by the
	// overlap rule even though it exceeds the 16 byte exact-match bound.
	overlap := "quick brown fox jumps over"
	inRange := len(overlap) > maxExactDedupLen && len(overlap) <= maxOverlapDedupLen
	assert.True(t, inRange)
	assert.False(t, d.Admit(overlap))
}

func TestDeduplicatorLongDeltaNotChecked(t *testing.T) {
	d := NewDeduplicator()

	long := strings.Repeat("abcdefg", 10) // 70 bytes
	assert.True(t, d.Admit(long))
	d.last = ""
	// Over the 64-byte overlap bound: emitted again as-is even though the
	// buffer ends with it.
	assert.True(t, d.Admit(long))
	assert.Equal(t, long+long, d.Text())
}

func TestDeduplicatorEmptyDelta(t *testing.T) {
	d := NewDeduplicator()
	assert.False(t, d.Admit(""))
	assert.Equal(t, "", d.Text())
}

func TestDeduplicatorPartialOverlapIsEmitted(t *testing.T) {
	d := NewDeduplicator()

	assert.True(t, d.Admit("warm"))
	// Shares a prefix with the buffer tail but extends past it, so the
	// overlap never covers the whole delta and it must be emitted.
	assert.True(t, d.Admit("mth and light"))
	assert.Equal(t, "warmmth and light", d.Text())
}

func TestDeduplicatorAccumulates(t *testing.T) {
	d := NewDeduplicator()

	parts := []string{"Photo", "synthesis", " converts", " light", " into", " sugar."}
	for _, p := range parts {
		assert.True(t, d.Admit(p))
	}
	assert.Equal(t, "Photosynthesis converts light into sugar.", d.Text())
	assert.Equal(t, len(d.Text()), d.Len())
}
