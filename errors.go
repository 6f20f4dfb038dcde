package vpk0

import "errors"

// Failure kinds reported by the codec. Returned errors wrap one of these,
// so callers test with errors.Is.
var (
	ErrFormat            = errors.New("vpk0: bad container format")
	ErrUnsupportedMethod = errors.New("vpk0: unsupported method")
	ErrParse             = errors.New("vpk0: malformed tree")
	ErrCorruptStream     = errors.New("vpk0: corrupt stream")
	ErrUnexpectedEOF     = errors.New("vpk0: unexpected end of stream")
	ErrEncode            = errors.New("vpk0: input cannot be encoded")
	ErrSizeLimit         = errors.New("vpk0: size exceeds limit")
)
