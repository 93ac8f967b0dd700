package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Pool is one of the independent snapshot retention pools.
type Pool string

const (
	PoolShortTerm Pool = "short_term"
	PoolLongTerm  Pool = "long_term"
	PoolRedo      Pool = "redo"
)

var Pools = []Pool{PoolShortTerm, PoolLongTerm, PoolRedo}

func ParsePool(value string) (Pool, error) {
	switch Pool(strings.ReplaceAll(strings.TrimSpace(value), "-", "_")) {
	case PoolShortTerm, "":
		return PoolShortTerm, nil
	case PoolLongTerm:
		return PoolLongTerm, nil
	case PoolRedo:
		return PoolRedo, nil
	default:
		return "", fmt.Errorf("unknown snapshot pool %q", value)
	}
}

// Journal descriptions written by the recovery controller and the gateway.
const (
	DescriptionManual     = "Manual backup"
	DescriptionForRedo    = "For Redo"
	DescriptionUndo       = "Undo operation"
	DescriptionForUndo    = "For Undo (Redo operation)"
	DescriptionRedo       = "Redo operation"
	DescriptionRestore    = "Restored from backup"
	DescriptionPreRestore = "Before restoring from backup."
	DescriptionDaily      = "Daily auto backup before first mutation of the day."
	DescriptionRebuild    = "Before reconstructing the database from JSON."
)

// SnapshotRef points at one immutable snapshot file.
type SnapshotRef struct {
	Pool    Pool
	Name    string
	Path    string
	TakenAt time.Time
	ModTime time.Time
	Size    int64
}

const (
	namePrefix = "study_log_"
	nameSuffix = ".db"
	nameLayout = "20060102_150405"
)

// SnapshotName renders study_log_YYYYMMDD_HHMMSS_ffffff.db. Microseconds keep
// names unique and lexically sortable under rapid successive snapshots.
func SnapshotName(t time.Time) string {
	return fmt.Sprintf("%s%s_%06d%s", namePrefix, t.Format(nameLayout), t.Nanosecond()/int(time.Microsecond), nameSuffix)
}

// IsSnapshotName reports whether name follows the snapshot naming scheme.
func IsSnapshotName(name string) bool {
	_, err := ParseSnapshotName(name, time.UTC)
	return err == nil
}

// ParseSnapshotName recovers the capture time encoded in a snapshot name.
func ParseSnapshotName(name string, loc *time.Location) (time.Time, error) {
	if !strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, nameSuffix) {
		return time.Time{}, fmt.Errorf("not a snapshot name: %q", name)
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), nameSuffix)
	idx := strings.LastIndex(stamp, "_")
	if idx < 0 || len(stamp)-idx-1 != 6 {
		return time.Time{}, fmt.Errorf("not a snapshot name: %q", name)
	}
	micros, err := strconv.Atoi(stamp[idx+1:])
	if err != nil {
		return time.Time{}, fmt.Errorf("not a snapshot name: %q", name)
	}
	if loc == nil {
		loc = time.Local
	}
	base, err := time.ParseInLocation(nameLayout, stamp[:idx], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a snapshot name: %q", name)
	}
	return base.Add(time.Duration(micros) * time.Microsecond), nil
}

// Older orders snapshots by modification time, falling back to the name so
// equal timestamps on coarse filesystems still sort chronologically.
func Older(a, b SnapshotRef) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.Before(b.ModTime)
	}
	return a.Name < b.Name
}

// Outcome reports what an undo or redo did. Applied=false means the pool was
// empty; that is informational, not a failure.
type Outcome struct {
	Applied   bool
	Message   string
	Restored  SnapshotRef
	Preserved SnapshotRef
}
