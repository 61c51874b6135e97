package remote

import (
	"fmt"
	"strings"
	"time"
)

// BackupFilePrefix is the fixed prefix shared by every backup file name.
const BackupFilePrefix = "echoes_learn_backup_"

// BackupFileName builds a backup file name from the prefix and a
// caller-supplied suffix (default: current UTC date).
func BackupFileName(suffix string, now time.Time) string {
	s := strings.TrimSpace(suffix)
	if s == "" {
		s = now.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("%s%s.json", BackupFilePrefix, s)
}
