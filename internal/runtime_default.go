//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// one runtime per goroutine, so frames of concurrent goroutines never interleave
var runtimes sync.Map

func GetRuntime() *Runtime {
	gid := getGID()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := NewRuntime()
	runtimes.Store(gid, r)
	return r
}

// ReleaseRuntime forgets the calling goroutine's runtime if it is idle.
// Goroutines that touched signals should call it before exiting.
func ReleaseRuntime() bool {
	gid := getGID()

	v, ok := runtimes.Load(gid)
	if !ok {
		return true
	}

	if !v.(*Runtime).idle() {
		return false
	}

	runtimes.Delete(gid)
	return true
}

func getGID() int64 {
	return goid.Get()
}
