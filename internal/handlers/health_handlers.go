// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
)

// Livez reports that the process is up.
func Livez(w http.ResponseWriter, _ *http.Request) {
	writePlain(w, http.StatusOK, "OK")
}

// Readyz reports whether svc can reach its backing store.
func Readyz(svc service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ready(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "service not ready", logging.ErrKey, err)
			writePlain(w, http.StatusServiceUnavailable, "NOT READY")
			return
		}
		writePlain(w, http.StatusOK, "OK")
	}
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.Header().Set(constants.ContentTypeHeader, "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
