package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/courseforge/core"
)

// Key prefixes for different data types
const (
	courseRecordPrefix = "courec"
	courseIDSeq        = "courecseq"
	vectorChunkPrefix  = "vecchu"
)

// makeCourseKey generates a key for a course by ID.
func makeCourseKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", courseRecordPrefix, id))
}

// makeChunkKey generates a composite key for a vector chunk.
// Format: prefix:courseID:seq
func makeChunkKey(courseID core.ID, seq int) []byte {
	prefix := vectorChunkPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for courseID + 8 bytes for seq
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(courseID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makePartialChunkKey generates a partial key for scanning a course's chunks.
// Format: prefix:courseID
func makePartialChunkKey(courseID core.ID) []byte {
	prefix := vectorChunkPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for courseID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(courseID))
	return buf
}
