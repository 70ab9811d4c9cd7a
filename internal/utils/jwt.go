package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-collection-sync/models"
)

// GenerateHostKey creates a signed HMAC-SHA256 host key for login.
//
// The key includes the following standard claims:
//   - Issuer    (iss): identifies the server that issued the key
//   - Subject   (sub): the account login
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus duration
//
// All parameters are required. Returns an error if any of them are empty or zero.
//
// Example usage:
//
//	key, err := utils.GenerateHostKey("go-collection-sync", "alice", 720*time.Hour, "secret")
func GenerateHostKey(issuer, login string, duration time.Duration, signKey string) (models.HostKey, error) {
	if issuer == "" || login == "" || duration == 0 || signKey == "" {
		return models.HostKey{}, errors.New("invalid params for generating host key")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   login,
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.HostKey{}, fmt.Errorf("error occurred during singing host key: %w", err)
	}

	return models.HostKey{Token: token, RegisteredClaims: claims, SignedString: signed}, nil
}

// ValidateAndParseHostKey verifies the signature, issuer and expiry of a host
// key and returns its claims.
//
// Example usage:
//
//	key, err := utils.ValidateAndParseHostKey(raw, "secret", "go-collection-sync")
//	if err != nil {
//	    // handle invalid or expired key
//	}
func ValidateAndParseHostKey(signed, signKey, issuer string) (models.HostKey, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (any, error) {
		return []byte(signKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.HostKey{}, fmt.Errorf("error occurred validating and parsing host key: %w", err)
	}

	key := models.HostKey{Token: token, RegisteredClaims: *claims, SignedString: signed}
	if _, err = key.Login(); err != nil {
		return models.HostKey{}, err
	}

	return key, nil
}
