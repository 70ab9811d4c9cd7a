package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrHostKeyInvalid     = errors.New("host key is expired or invalid")
	ErrHostKeyNotProvided = errors.New("host key not provided")
	ErrHostKeyCreation    = errors.New("host key creation failed")

	ErrInvalidLogin       = errors.New("login is not usable as a folder name")
	ErrInvalidUserSeed    = errors.New(`user seed must look like "login:password"`)
	ErrClientTooOld       = errors.New("sync protocol version not supported")
	ErrSessionConflict    = errors.New("no sync session matches the session key")
	ErrCollectionTooLarge = errors.New("collection exceeds the upload size limit")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
