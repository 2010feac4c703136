//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import (
	"errors"
	"os"
)

var errNoEchoUnsupported = errors.New("hidden password input is not supported on this platform")

func disableEcho(_ *os.File) (func(), error) {
	return nil, errNoEchoUnsupported
}
