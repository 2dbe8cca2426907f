// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/utils"
)

// Store backends selectable through STORE_BACKEND.
const (
	storeBackendPostgres = "postgres"
	storeBackendNATS     = "nats"
)

// flags are the command line flags for the zoom ingest service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the zoom ingest service.
type environment struct {
	Port                string
	ZoomSecretToken     string
	VerifySignature     bool
	SignatureTolerance  time.Duration
	MaxBodyBytes        int64
	StoreBackend        string
	DatabaseURL         string
	DatabaseAutoMigrate bool
	NatsURL             string
	PublishEvents       bool
}

// needsNATS reports whether a NATS connection must be opened.
func (e environment) needsNATS() bool {
	return e.StoreBackend == storeBackendNATS || e.PublishEvents
}

// parseFlags parses command line flags for the zoom ingest service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the zoom ingest service.
// ZOOM_WEBHOOK_SECRET is accepted as a fallback name for the secret token.
// A missing webhook secret or an unusable store selection is a
// configuration error and stops the process.
func parseEnv() (environment, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	secret := utils.CoalesceString(os.Getenv("ZOOM_WEBHOOK_SECRET_TOKEN"), os.Getenv("ZOOM_WEBHOOK_SECRET"))
	if secret == "" {
		return environment{}, domain.ErrMissingSecret
	}

	tolerance, err := parseTolerance(os.Getenv("ZOOM_WEBHOOK_SIGNATURE_TOLERANCE"))
	if err != nil {
		return environment{}, err
	}

	maxBodyBytes := constants.MaxWebhookBodyBytes
	if raw := os.Getenv("ZOOM_WEBHOOK_MAX_BODY_BYTES"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return environment{}, domain.NewConfigurationError(
				fmt.Sprintf("invalid ZOOM_WEBHOOK_MAX_BODY_BYTES %q", raw), err)
		}
		maxBodyBytes = parsed
	}

	storeBackend := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND")))
	if storeBackend == "" {
		storeBackend = storeBackendPostgres
	}

	databaseURL := os.Getenv("DATABASE_URL")
	switch storeBackend {
	case storeBackendPostgres:
		if databaseURL == "" {
			return environment{}, domain.NewConfigurationError("DATABASE_URL is required for the postgres store backend")
		}
	case storeBackendNATS:
	default:
		return environment{}, domain.NewConfigurationError(
			fmt.Sprintf("unknown STORE_BACKEND %q, expected %q or %q", storeBackend, storeBackendPostgres, storeBackendNATS))
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	return environment{
		Port:                port,
		ZoomSecretToken:     secret,
		VerifySignature:     os.Getenv("ZOOM_WEBHOOK_VERIFY_SIGNATURE") == "true",
		SignatureTolerance:  tolerance,
		MaxBodyBytes:        maxBodyBytes,
		StoreBackend:        storeBackend,
		DatabaseURL:         databaseURL,
		DatabaseAutoMigrate: os.Getenv("DATABASE_AUTO_MIGRATE") != "false",
		NatsURL:             natsURL,
		PublishEvents:       os.Getenv("PUBLISH_EVENTS") == "true",
	}, nil
}

// parseTolerance accepts a Go duration ("5m") or a number of seconds.
// Zero disables the freshness check.
func parseTolerance(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return constants.DefaultZoomSignatureToleranceSeconds * time.Second, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, domain.NewConfigurationError(
			fmt.Sprintf("invalid ZOOM_WEBHOOK_SIGNATURE_TOLERANCE %q", raw), err)
	}
	return d, nil
}
