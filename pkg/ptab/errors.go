package ptab

import "errors"

var (
	ErrInvalidMagic       = errors.New("invalid PTAB magic")
	ErrUnsupportedVersion = errors.New("unsupported PTAB version")
	ErrCorruptFile        = errors.New("corrupt PTAB file")
)
