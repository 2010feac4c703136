//go:build linux

package cli

import "golang.org/x/sys/unix"

// ioctl requests for reading and writing terminal attributes.
const (
	termiosReadRequest  = unix.TCGETS
	termiosWriteRequest = unix.TCSETS
)
