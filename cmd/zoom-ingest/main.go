// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the zoom ingest service: it receives Zoom webhook calls,
// audits them, and writes normalized participant and recording records.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/infrastructure/zoom/webhook"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/utils"
)

func main() {
	flags := parseFlags(defaultPort())

	logging.InitStructureLogConfig()

	env, err := parseEnv()
	if err != nil {
		slog.With(logging.ErrKey, err).Error("invalid configuration")
		os.Exit(1)
	}

	validator, err := webhook.NewZoomWebhookValidator(env.ZoomSecretToken, webhook.WithTolerance(env.SignatureTolerance))
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up zoom webhook validator")
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry")
		os.Exit(1)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry")
		}
	}()

	var natsConn *nats.Conn
	if env.needsNATS() {
		natsConn, err = setupNATS(ctx, env, &gracefulCloseWG, done)
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting up NATS")
			return
		}
	}

	gateway, closeGateway, err := setupGateway(ctx, env, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err, "store_backend", env.StoreBackend).Error("error setting up persistence gateway")
		return
	}
	defer closeGateway()

	var serviceOpts []service.ServiceOption
	if env.PublishEvents {
		serviceOpts = append(serviceOpts, service.WithPublisher(messaging.NewMessageBuilder(natsConn)))
	}
	ingestService := service.NewZoomWebhookService(gateway, validator, serviceOpts...)

	var signatureValidator handlers.SignatureValidator
	if env.VerifySignature {
		signatureValidator = validator
	}
	webhookHandler := handlers.NewZoomWebhookHandler(ingestService, signatureValidator)

	handler := newHandler(newRouter(webhookHandler, ingestService), env.MaxBodyBytes)
	httpServer := setupHTTPServer(flags, handler, &gracefulCloseWG)

	slog.Info("zoom ingest service started",
		"store_backend", env.StoreBackend,
		"verify_signature", env.VerifySignature,
		"publish_events", env.PublishEvents,
	)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}

// defaultPort lets PORT seed the -p flag default.
func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}
