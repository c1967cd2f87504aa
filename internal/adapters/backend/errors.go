package backend

import "errors"

// Sentinel error kinds for payload decoding.
var (
	ErrNotOK         = errors.New("result is not a successful answer")
	ErrInvalidSchema = errors.New("payload does not match schema")
	ErrDecode        = errors.New("payload decode failed")
)
