//go:build darwin

package threadmemory

import "golang.org/x/sys/unix"

func gettid() int32 { return int32(unix.Gettid()) }
