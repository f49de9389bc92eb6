package media

import "errors"

var (
	// ErrStorageUnavailable indicates no object store has been configured.
	ErrStorageUnavailable = errors.New("media storage unavailable")
	// ErrProbeUnavailable indicates no media prober has been configured.
	ErrProbeUnavailable = errors.New("media prober unavailable")
)
