package adapter

import "errors"

var (
	ErrEmptyAddress   = errors.New("empty address")
	ErrAddressInvalid = errors.New("address must include host and scheme")
)
