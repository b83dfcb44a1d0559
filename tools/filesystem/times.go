package filesystem

import (
	"os"
	"time"
)

type fileTimes struct {
	created  time.Time
	accessed time.Time
}

// timesOf falls back to the modification time for any timestamp the
// platform does not expose.
func timesOf(info os.FileInfo) fileTimes {
	t := fileTimes{created: info.ModTime(), accessed: info.ModTime()}
	platformTimes(info, &t)
	return t
}
