package history

import "time"

// SchemaVersion is the newest snapshot schema this package writes.
const SchemaVersion = 2

// Snapshot records the outcome of one registry load.
type Snapshot struct {
	// ID is the build ID that produced the snapshot.
	ID            string
	ProjectKey    string
	SchemaVersion int
	Timestamp     time.Time

	ToolVersion     string
	SchemaName      string
	DeclaredVersion string

	PackageCount int
	ClassCount   int
	// Registry is the registry's JSON encoding; empty for failed loads.
	Registry string

	ErrorCode    string
	ErrorMessage string
}

// Failed reports whether the load that produced s was rejected.
func (s Snapshot) Failed() bool {
	return s.ErrorCode != ""
}
