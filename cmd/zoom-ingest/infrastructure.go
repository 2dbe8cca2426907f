// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/infrastructure/store/postgres"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/concurrent"
)

const (
	natsDrainTimeout   = 15 * time.Second
	natsReconnectWait  = 2 * time.Second
	natsConnectTimeout = 5 * time.Second
)

// setupNATS connects to NATS. The closed handler releases gracefulCloseWG
// and, if the connection closes outside of shutdown, signals done.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	slog.With("nats_url", env.NatsURL).InfoContext(ctx, "attempting to connect to NATS")

	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Name("lfx-v2-zoom-ingest-service"),
		nats.DrainTimeout(natsDrainTimeout),
		nats.Timeout(natsConnectTimeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(natsReconnectWait),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection established")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.WarnContext(ctx, "NATS disconnected", logging.ErrKey, err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if ctx.Err() != nil {
				// Expected during graceful shutdown.
				gracefulCloseWG.Done()
				return
			}
			slog.Error("NATS connection closed unexpectedly")
			gracefulCloseWG.Done()
			done <- os.Interrupt
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return natsConn, nil
}

// getKeyValueStores binds the KV buckets the NATS gateway writes to.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (store.NatsStores, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return store.NatsStores{}, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	var (
		audit, participants, recordings, identities jetstream.KeyValue
	)
	bind := func(bucket string, target *jetstream.KeyValue) func(context.Context) error {
		return func(ctx context.Context) error {
			kv, err := js.KeyValue(ctx, bucket)
			if err != nil {
				slog.With(logging.ErrKey, err, "bucket", bucket).ErrorContext(ctx, "error getting NATS KV bucket")
				return fmt.Errorf("failed to bind KV bucket %s: %w", bucket, err)
			}
			*target = kv
			return nil
		}
	}

	pool := concurrent.NewWorkerPool(4)
	err = pool.Run(ctx,
		bind(store.KVStoreNameWebhookAudit, &audit),
		bind(store.KVStoreNameParticipantEvents, &participants),
		bind(store.KVStoreNameRecordingArtifacts, &recordings),
		bind(store.KVStoreNameIdentities, &identities),
	)
	if err != nil {
		return store.NatsStores{}, err
	}

	return store.NatsStores{
		Audit:              audit,
		ParticipantEvents:  participants,
		RecordingArtifacts: recordings,
		Identities:         identities,
	}, nil
}

// setupGateway builds the persistence gateway selected by STORE_BACKEND.
// The returned close function releases the backend's resources.
func setupGateway(ctx context.Context, env environment, natsConn *nats.Conn) (domain.PersistenceGateway, func(), error) {
	switch env.StoreBackend {
	case storeBackendNATS:
		stores, err := getKeyValueStores(ctx, natsConn)
		if err != nil {
			return nil, nil, err
		}
		return store.NewNatsGateway(natsConn, stores), func() {}, nil

	default:
		if env.DatabaseAutoMigrate {
			if err := postgres.Migrate(env.DatabaseURL); err != nil {
				return nil, nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, env.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewGateway(pool), pool.Close, nil
	}
}
