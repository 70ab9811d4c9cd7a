package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/utils"
	"github.com/MKhiriev/go-collection-sync/models"
)

// authService is the concrete implementation of AuthService.
// It handles account registration, credential verification and the host key
// lifecycle using an AccountRepository for persistence and bcrypt for
// password hashes.
type authService struct {
	// accounts is the data-access layer used to create and look up users.
	accounts store.AccountRepository

	// bcryptCost is the work factor for new password hashes.
	bcryptCost int

	// tokenSignKey is the HMAC secret used to sign and verify host keys.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued host key.
	// Keys whose issuer does not match this value are rejected.
	tokenIssuer string

	// tokenDuration controls how long a newly issued host key remains valid.
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given
// AccountRepository and populated with host key parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(accounts store.AccountRepository, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		accounts:      accounts,
		bcryptCost:    bcrypt.DefaultCost,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        logger,
	}
}

// RegisterUser creates a new account with a bcrypt hash of password.
//
// Returns the persisted user or:
//   - ErrInvalidDataProvided if login or password is empty.
//   - ErrInvalidLogin if login cannot serve as a collection folder name.
//   - A wrapped storage error if the repository call fails (e.g. login already
//     taken, see store.ErrLoginAlreadyExists).
func (a *authService) RegisterUser(ctx context.Context, login, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	if login == "" || password == "" {
		log.Error().Str("login", login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}
	if err := ValidateLogin(login); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("error hashing password: %w", err)
	}

	registered, err := a.accounts.CreateUser(ctx, models.User{Login: login, PasswordHash: string(hash)})
	if err != nil {
		log.Err(err).Str("login", login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registered, nil
}

// HostKey authenticates the account and issues a signed host key.
//
// Returns:
//   - ErrInvalidDataProvided if the username or password is empty.
//   - A wrapped store.ErrNoUserWasFound if the account does not exist.
//   - ErrWrongPassword if the password does not match.
func (a *authService) HostKey(ctx context.Context, req models.HostKeyRequest) (models.HostKey, error) {
	log := logger.FromContext(ctx)

	if req.Username == "" || req.Password == "" {
		log.Error().Str("login", req.Username).Msg("invalid credentials provided")
		return models.HostKey{}, ErrInvalidDataProvided
	}

	found, err := a.accounts.FindUserByLogin(ctx, req.Username)
	if err != nil {
		log.Err(err).Str("login", req.Username).Msg("user search by login failed")
		return models.HostKey{}, fmt.Errorf("user search by login failed: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn().Str("login", found.Login).Msg("wrong password")
		return models.HostKey{}, ErrWrongPassword
	}

	key, err := utils.GenerateHostKey(a.tokenIssuer, found.Login, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.HostKey{}, fmt.Errorf("%w: %w", ErrHostKeyCreation, err)
	}

	return key, nil
}

// ParseHostKey validates a signed host key and returns the login it carries.
// Any validation failure (expired, wrong issuer, malformed) is normalised to
// ErrHostKeyInvalid.
func (a *authService) ParseHostKey(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrHostKeyNotProvided
	}

	parsed, err := utils.ValidateAndParseHostKey(key, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("host key rejected")
		return "", ErrHostKeyInvalid
	}

	login, err := parsed.Login()
	if err != nil {
		return "", ErrHostKeyInvalid
	}

	return login, nil
}

func (a *authService) SeedUsers(ctx context.Context, pairs []string) error {
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		login, password, ok := strings.Cut(pair, ":")
		if !ok || login == "" || password == "" {
			return fmt.Errorf("%w: %q", ErrInvalidUserSeed, login)
		}

		_, err := a.RegisterUser(ctx, login, password)
		switch {
		case err == nil:
			a.logger.Info().Str("login", login).Msg("account seeded")
		case errors.Is(err, store.ErrLoginAlreadyExists):
			a.logger.Debug().Str("login", login).Msg("account already exists")
		default:
			return err
		}
	}

	return nil
}

// ValidateLogin rejects logins that could escape the collections folder.
func ValidateLogin(login string) error {
	if login == "" || login == "." || login == ".." || strings.ContainsAny(login, `/\`) || strings.Contains(login, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidLogin, login)
	}
	return nil
}
