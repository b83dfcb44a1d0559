package filesystem

import (
	"os"
	"syscall"
	"time"
)

func platformTimes(info os.FileInfo, t *fileTimes) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	t.accessed = time.Unix(st.Atimespec.Unix())
	t.created = time.Unix(st.Birthtimespec.Unix())
}
