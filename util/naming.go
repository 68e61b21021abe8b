package util

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/taigrr/colorhash"
)

// Record file name prefixes for the on-disk layout.
const (
	SegmentPrefix    = "journal"
	CheckpointPrefix = "checkpoint"
)

// RecordExt is the extension shared by segment and checkpoint files.
const RecordExt = ".json"

// shortSuffixLen is how much of the record id is embedded in the file name.
const shortSuffixLen = 8

// TimestampedFileName generates a record file name embedding the creation
// timestamp, a bucket derived from a color hash of the record id, and a short
// id suffix for uniqueness:
//
//	<prefix>-<unixnano>-<bucket>-<suffix>.json
//
// The timestamp is authoritative for ordering; file mtimes are never trusted.
func TimestampedFileName(prefix, id string, ts time.Time) string {
	bucket := colorhash.HashString(id) % 1000
	suffix := id
	if len(suffix) > shortSuffixLen {
		suffix = suffix[:shortSuffixLen]
	}
	return fmt.Sprintf("%s-%d-%d-%s%s", prefix, ts.UnixNano(), bucket, suffix, RecordExt)
}

// TimestampFromFileName extracts the embedded creation timestamp from a
// record file name produced by TimestampedFileName. The argument may be a
// full path or a bare file name.
func TimestampFromFileName(name string) (time.Time, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, RecordExt)
	parts := strings.Split(base, "-")
	if len(parts) != 4 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidRecordName, name)
	}
	nanos, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidRecordName, name)
	}
	return time.Unix(0, nanos), nil
}

// HasRecordPrefix reports whether a record file name carries the given
// prefix component.
func HasRecordPrefix(name, prefix string) bool {
	return strings.HasPrefix(filepath.Base(name), prefix+"-")
}
