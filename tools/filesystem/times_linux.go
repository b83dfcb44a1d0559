package filesystem

import (
	"os"
	"syscall"
	"time"
)

// Linux has no portable birth time; the inode change time stands in.
func platformTimes(info os.FileInfo, t *fileTimes) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	t.accessed = time.Unix(st.Atim.Unix())
	t.created = time.Unix(st.Ctim.Unix())
}
