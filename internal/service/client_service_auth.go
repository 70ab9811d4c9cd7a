package service

import (
	"context"

	"github.com/MKhiriev/go-collection-sync/internal/adapter"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/models"
)

type clientAuthService struct {
	remote adapter.SyncProtocol

	logger *logger.Logger
}

func NewClientAuthService(remote adapter.SyncProtocol, logger *logger.Logger) ClientAuthService {
	return &clientAuthService{remote: remote, logger: logger}
}

func (s *clientAuthService) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return models.NewSyncError(models.SyncErrorAuthFailed, "username and password are required")
	}

	resp, err := s.remote.HostKey(ctx, models.HostKeyRequest{Username: username, Password: password})
	if err != nil {
		s.logger.Err(err).Str("login", username).Msg("host key request failed")
		return err
	}
	if resp.Key == "" {
		return models.NewSyncError(models.SyncErrorAuthFailed, "server returned an empty host key")
	}

	s.remote.SetHostKey(resp.Key)
	s.logger.Info().Str("login", username).Msg("logged in")
	return nil
}
