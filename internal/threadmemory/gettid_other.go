//go:build !linux && !darwin

package threadmemory

import "sync/atomic"

// counter stands in for a real OS thread id on platforms without a cheap
// gettid-equivalent. Every call returns a fresh number, so it does not
// identify the calling thread; nothing here depends on it, since
// threadAlive never reports anyone dead on these platforms.
var counter int32

func gettid() int32 { return atomic.AddInt32(&counter, 1) }
