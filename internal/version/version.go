package version

import "fmt"

var (
	// Version is the semantic version (injected at build time).
	Version = "dev"
	// Commit is the git commit SHA (injected at build time).
	Commit = "unknown"
	// BuildDate is the build timestamp (injected at build time).
	BuildDate = "unknown"
)

// Info returns formatted version information.
func Info() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, BuildDate)
}

// DocumentVersion is the backup document format version written into
// exported metadata and checked on import.
const DocumentVersion = "1.0.0"
