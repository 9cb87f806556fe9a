package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ZaguanLabs/glosslive"
	"github.com/ZaguanLabs/glosslive/history"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error    string                  `json:"error"`
	Category glosslive.ErrorCategory `json:"category,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders a pipeline error inline with its category.
func writeError(w http.ResponseWriter, err error) {
	category := glosslive.Category(err)
	writeJSON(w, statusFor(err), errorResponse{
		Error:    glosslive.UserMessage(err),
		Category: category,
	})
}

// statusFor maps an error to the HTTP status reported to the client.
// Provider failures keep the provider's own status when there was one.
func statusFor(err error) int {
	switch glosslive.Category(err) {
	case glosslive.CategoryValidation:
		return http.StatusBadRequest
	case glosslive.CategoryProviderAuth, glosslive.CategoryProviderQuota, glosslive.CategoryProviderOther:
		var providerErr *glosslive.ProviderError
		if errors.As(err, &providerErr) && providerErr.StatusCode >= 400 {
			return providerErr.StatusCode
		}
		return http.StatusBadGateway
	case glosslive.CategoryTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeStoreError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	if errors.Is(err, history.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeServerError(w, logger, err)
}

func writeServerError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	logger.Errorw("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
