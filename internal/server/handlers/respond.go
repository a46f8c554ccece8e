package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/shortify/internal/apperr"
	"github.com/iudanet/shortify/internal/result"
)

// StatusFor maps an error kind to HTTP status
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Unauthorized:
		if errors.Is(err, apperr.ErrForbidden) {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case apperr.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON отправляет JSON ответ
func WriteJSON(w http.ResponseWriter, logger *slog.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteFail отправляет неуспешный Result с сообщениями
func WriteFail(w http.ResponseWriter, logger *slog.Logger, statusCode int, messages ...string) {
	WriteJSON(w, logger, result.Fail[any](messages...), statusCode)
}

// writeOK отправляет успешный Result
func writeOK[T any](w http.ResponseWriter, logger *slog.Logger, v T, statusCode int) {
	WriteJSON(w, logger, result.Ok(v), statusCode)
}

// writeError отправляет ошибку сервиса; неклассифицированные ошибки логируются
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	} else {
		logger.WarnContext(r.Context(), msg, slog.String("reason", err.Error()))
	}
	WriteJSON(w, logger, result.From[any](nil, err), status)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

const maxBodyBytes = 1 << 20
