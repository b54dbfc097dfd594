package crypto

import (
	"crypto/subtle"
	"runtime"
)

// Wipe zeroes b. Best-effort: the copy goes through crypto/subtle and b is
// kept alive past the write so the store is not elided.
//
//go:noinline
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
	runtime.KeepAlive(&b)
}

// WipeAll zeroes every buffer in bufs.
func WipeAll(bufs ...[]byte) {
	for _, b := range bufs {
		Wipe(b)
	}
}
