package badger

import (
	"encoding/binary"

	"github.com/poiesic/conceptmap/core"
)

// Key prefixes for different data types
const (
	annotationPrefix = "annrec:"
)

// makeAnnotationKey generates a key for a cached annotation by content ID.
// Format: prefix + 8 byte BigEndian ID
func makeAnnotationKey(id core.ID) []byte {
	buf := make([]byte, len(annotationPrefix)+8)
	offset := copy(buf, annotationPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
