package filesystem

import (
	"os"
	"syscall"
	"time"
)

func platformTimes(info os.FileInfo, t *fileTimes) {
	attr, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return
	}
	t.accessed = time.Unix(0, attr.LastAccessTime.Nanoseconds())
	t.created = time.Unix(0, attr.CreationTime.Nanoseconds())
}
