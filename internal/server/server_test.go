package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/handler"
	httpx "github.com/MKhiriev/go-collection-sync/internal/handler/http"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/workers"
)

type workerFunc func(ctx context.Context) error

func (f workerFunc) Run(ctx context.Context) error { return f(ctx) }

func testHandlers() *handler.Handlers {
	return &handler.Handlers{HTTP: httpx.NewHandler(nil, config.Sync{}, logger.Nop())}
}

func TestNewServer_NoHandlers(t *testing.T) {
	_, err := NewServer(nil, config.Server{HTTPAddress: ":0"}, nil, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)

	_, err = NewServer(testHandlers(), config.Server{}, nil, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)
}

func TestRun_StopsOnCancel(t *testing.T) {
	started := make(chan struct{})
	bg := workers.NewWorkers(workerFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}))

	srv, err := NewServer(testHandlers(), config.Server{HTTPAddress: "127.0.0.1:0"}, bg, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.(*server).run(ctx) }()

	<-started
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_WorkerFailureStopsServer(t *testing.T) {
	boom := errors.New("boom")
	bg := workers.NewWorkers(workerFunc(func(context.Context) error { return boom }))

	srv, err := NewServer(testHandlers(), config.Server{HTTPAddress: "127.0.0.1:0"}, bg, logger.Nop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.(*server).run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
