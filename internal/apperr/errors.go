// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound indicates the directory does not know the requested username.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates a transport or server failure while talking
	// to the remote directory.
	ErrUnavailable = errors.New("directory unavailable")
)
