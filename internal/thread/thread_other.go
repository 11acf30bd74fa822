//go:build !linux

package thread

import (
	"bytes"
	"runtime"
	"strconv"
)

// Outside Linux the goroutine id stands in for the thread id. Callers are
// expected to hold runtime.LockOSThread, which makes the two equivalent.
func current() ID {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(field, ' '); i > 0 {
		field = field[:i]
	}
	id, _ := strconv.ParseInt(string(field), 10, 64)
	return ID(id)
}
