//go:build linux

package thread

import "golang.org/x/sys/unix"

func current() ID {
	return ID(unix.Gettid())
}
