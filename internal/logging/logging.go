package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath builds a per-run log file path under logsDir, stamped with
// the run start time.
func LogFilePath(logsDir, appName string, runStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, runStart.Format("20060102_150405")),
	)
}
