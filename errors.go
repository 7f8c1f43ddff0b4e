package fsc

import "errors"

var (
	ErrVersionFileMissing = errors.New("version file not found")
	ErrNoImageName        = errors.New("imagename entry not found")
	ErrNoFirmwareName     = errors.New("response has no firmware filename")
	ErrHALUnsupported     = errors.New("hal operation not supported")
	ErrHALRejected        = errors.New("hal rejected request")
	ErrHALUnavailable     = errors.New("hal unavailable")
	ErrNotConnected       = errors.New("not connected")
)
