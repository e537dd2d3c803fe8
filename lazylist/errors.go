package lazylist

import "errors"

var (
	ErrLockTimeout     = errors.New("lazylist: lock timeout")
	ErrLockInterrupted = errors.New("lazylist: lock wait interrupted")
)
