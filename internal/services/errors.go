package services

import "errors"

// ErrInvalidArgument is the root of every input rejection raised by the
// calculators in this package.
var ErrInvalidArgument = errors.New("invalid argument")
