package reload

import (
	"os"

	"github.com/markdingo/autozone/zone"
)

// Status is the change classification of one zone's source file.
type Status int

const (
	NotFound Status = iota // File absent or unreadable
	New                    // No instance currently served
	Current                // Unchanged since the served instance was loaded
	Updated                // Changed since the served instance was loaded
)

func (t Status) String() string {
	switch t {
	case NotFound:
		return "not-found"
	case New:
		return "new"
	case Current:
		return "current"
	case Updated:
		return "updated"
	}

	return "unknown"
}

// Classify compares the file at path with the zone currently served under the same name,
// which may be nil. It has no side effects.
func Classify(old *zone.Zone, path string) Status {
	fi, err := os.Stat(path)
	if err != nil {
		return NotFound
	}
	if old == nil {
		return New
	}
	if old.ModTime().Equal(fi.ModTime()) {
		return Current
	}

	return Updated
}
