package ports

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrCorruptSave marks a save blob that exists but cannot be decoded.
	ErrCorruptSave = errors.New("corrupt save")
)
