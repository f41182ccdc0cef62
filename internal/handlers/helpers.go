package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/service"
)

// envelope is the uniform response shape. success is the sole error signal;
// message is safe to surface to the player verbatim.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // nothing useful to do if write fails
}

func (h *Handler) writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func (h *Handler) writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

// writeError maps a service error onto the envelope. Internal faults never
// leak detail; the player sees the generic failure message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		h.logger.Error("unclassified handler error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{
			Success: false,
			Error:   service.ErrCodeInternalError,
			Message: "transaction failed",
		})
		return
	}

	if svcErr.Kind == service.KindIntegrity {
		h.logger.Error("internal service error", "path", r.URL.Path, "code", svcErr.Code, "error", svcErr.Err)
	}

	writeJSON(w, statusForKind(svcErr.Kind), envelope{
		Success: false,
		Error:   string(svcErr.Code),
		Message: svcErr.Message,
	})
}

func statusForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindPrecondition:
		return http.StatusPreconditionFailed
	case service.KindConflict:
		return http.StatusConflict
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &service.ServiceError{
			Kind:    service.KindValidation,
			Code:    "invalid_request",
			Message: "malformed request body",
		}
	}
	return nil
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &service.ServiceError{
			Kind:    service.KindValidation,
			Code:    "invalid_request",
			Message: "malformed " + name,
		}
	}
	return id, nil
}
