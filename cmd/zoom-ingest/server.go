// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
)

const gracefulShutdownSeconds = 25

// newRouter mounts the webhook and health endpoints.
func newRouter(webhookHandler http.Handler, svc service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(constants.ZoomWebhookPath, webhookHandler)
	mux.HandleFunc("GET "+constants.LivenessPath, handlers.Livez)
	mux.Handle("GET "+constants.ReadinessPath, handlers.Readyz(svc))
	return mux
}

// newHandler wraps the router with the middleware chain.
func newHandler(mux http.Handler, maxBodyBytes int64) http.Handler {
	var handler = mux

	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is executed in reverse order.
	handler = middleware.WebhookBodyCaptureMiddleware(maxBodyBytes)(handler)
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)
	handler = otelhttp.NewHandler(handler, "zoom-ingest",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != constants.LivenessPath && r.URL.Path != constants.ReadinessPath
		}),
	)
	return handler
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, handler http.Handler, gracefulCloseWG *sync.WaitGroup) *http.Server {
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}

// gracefulShutdown stops the HTTP server, then drains NATS, within a bounded time.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("graceful shutdown via signal")

	// Cancel the background context so the NATS closed handler treats the close as expected.
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
	defer shutdownCancel()

	go func() {
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.With(logging.ErrKey, err).Error("http shutdown error")
		}
		// Decrement the wait group only after Shutdown returns.
		gracefulCloseWG.Done()
	}()

	if natsConn != nil && !natsConn.IsClosed() && !natsConn.IsDraining() {
		slog.Info("draining NATS connections")
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	waited := make(chan struct{})
	go func() {
		gracefulCloseWG.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		slog.Info("graceful shutdown complete")
	case <-ctx.Done():
		slog.Error("graceful shutdown timed out")
	}
}
