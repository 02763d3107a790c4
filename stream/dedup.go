package stream

import "strings"

// Duplicate-detection cost bounds. Short deltas are checked for an exact
// tail match, slightly longer ones for an overlap continuation; anything
// larger is passed through unchecked.
const (
	maxExactDedupLen   = 16
	maxOverlapDedupLen = 64
)

// Deduplicator filters repeated and overlapping fragments out of a raw delta
// sequence. Upstream providers occasionally re-emit a fragment they already
// sent, or re-send a fragment whose tail overlaps the text so far; this is a
// heuristic guard against both, not a general diff algorithm.
//
// A Deduplicator belongs to exactly one stream session and is not safe for
// concurrent use.
type Deduplicator struct {
	built strings.Builder
	last  string
}

// NewDeduplicator creates a deduplicator with an empty buffer.
func NewDeduplicator() *Deduplicator {
	d := &Deduplicator{}
	d.built.Grow(4096)
	return d
}

// Admit decides whether delta should be emitted. Rules, applied in order:
//
//  1. Exact repeat of the immediately preceding delta: suppress.
//  2. Delta of at most 16 bytes that the buffer already ends with: suppress.
//  3. Delta of at most 64 bytes fully covered by an overlap at the buffer's
//     tail: suppress.
//  4. Otherwise append to the buffer and emit.
//
// The buffer and the last-delta state are only updated when the delta is
// admitted, so a run of identical deltas collapses to a single emission.
func (d *Deduplicator) Admit(delta string) bool {
	if delta == "" {
		return false
	}
	if delta == d.last {
		return false
	}
	if len(delta) <= maxExactDedupLen && d.endsWith(delta) {
		return false
	}
	if len(delta) <= maxOverlapDedupLen && d.endsWithOverlap(delta) {
		return false
	}

	d.last = delta
	d.built.WriteString(delta)
	return true
}

// Text returns the accumulated emitted text.
func (d *Deduplicator) Text() string {
	return d.built.String()
}

// Len returns the size of the accumulated buffer in bytes.
func (d *Deduplicator) Len() int {
	return d.built.Len()
}

// endsWith reports whether the buffer ends with exactly tail.
func (d *Deduplicator) endsWith(tail string) bool {
	s := d.built.String()
	if tail == "" || len(s) < len(tail) {
		return false
	}
	return strings.HasSuffix(s, tail)
}

// endsWithOverlap scans for a prefix of delta matching the buffer's tail and
// reports true only when the overlap covers the whole delta. Bounded by the
// delta length, so the scan stays cheap for the short deltas it is applied to.
func (d *Deduplicator) endsWithOverlap(delta string) bool {
	s := d.built.String()
	n := len(delta)
	if n == 0 || len(s) == 0 {
		return false
	}

	maxCheck := n
	if len(s) < maxCheck {
		maxCheck = len(s)
	}
	for k := 1; k <= maxCheck; k++ {
		if s[len(s)-k:] == delta[:k] && n <= k {
			return true
		}
	}
	return false
}
