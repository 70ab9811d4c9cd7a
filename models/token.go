package models

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// HostKey is a signed credential handed out by the hostKey method and sent
// back in every SyncHeader.
//
// The "sub" claim holds the account login; the collection folder on the
// server is derived from it.
type HostKey struct {
	// Token is the parsed JWT. Only set on the verifying side.
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact JWS form sent over the wire.
	SignedString string `json:"-"`
}

// Login returns the account login the key was issued for.
func (k *HostKey) Login() (string, error) {
	login, err := k.GetSubject()
	if err != nil {
		return "", err
	}
	if login == "" {
		return "", errors.New("host key has no subject")
	}
	return login, nil
}

// String returns the compact JWS serialization.
func (k *HostKey) String() string {
	return k.SignedString
}
