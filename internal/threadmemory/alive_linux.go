//go:build linux

package threadmemory

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// threadAlive reports whether tid is still a running task of this
// process, by statting /proc/<pid>/task/<tid> the way the original
// tracker does — a thread id can be reused by the kernel once it exits,
// but only after this process's own task directory entry disappears, so
// the check is race-free with respect to this process's own threads.
func threadAlive(tid int32) bool {
	path := "/proc/" + strconv.Itoa(os.Getpid()) + "/task/" + strconv.Itoa(int(tid))
	var st unix.Stat_t
	return unix.Stat(path, &st) == nil
}
