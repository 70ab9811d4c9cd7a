package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyCredentials = errors.New("username and password are required")
	ErrInvalidUsn       = errors.New("invalid usn")
	ErrInvalidID        = errors.New("invalid object id")
	ErrInvalidReference = errors.New("invalid reference to another object")
	ErrEmptyName        = errors.New("name is required")
	ErrEmptyGUID        = errors.New("note guid is required")
	ErrEmptyTag         = errors.New("tag cannot be empty")
	ErrNegativeCount    = errors.New("sanity counts cannot be negative")
	ErrChunkTooLarge    = errors.New("chunk carries too many rows")
)
