package handlers

import (
	"net/http"

	"github.com/citywide-rp/bankcore/internal/models"
	"github.com/citywide-rp/bankcore/internal/service"
)

type startHeistRequest struct {
	InitiatorID  string   `json:"initiator_id"`
	TargetID     string   `json:"target_id"`
	Method       string   `json:"method"`
	Participants []string `json:"participants"`
}

func (req *startHeistRequest) validate() error {
	if req.InitiatorID == "" || req.TargetID == "" || req.Method == "" {
		return &service.ServiceError{
			Kind:    service.KindValidation,
			Code:    "invalid_request",
			Message: "initiator_id, target_id and method are required",
		}
	}
	return nil
}

// StartBankHeist handles POST /api/v1/heists/bank
func (h *Handler) StartBankHeist(w http.ResponseWriter, r *http.Request) {
	var req startHeistRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	st, err := h.heists.StartBank(r.Context(), req.InitiatorID, req.TargetID, models.HeistMethod(req.Method), req.Participants)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, toHeistResponse(st))
}

// StartATMHeist handles POST /api/v1/heists/atm
func (h *Handler) StartATMHeist(w http.ResponseWriter, r *http.Request) {
	var req startHeistRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	st, err := h.heists.StartATM(r.Context(), req.InitiatorID, req.TargetID, models.HeistMethod(req.Method))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, toHeistResponse(st))
}

// GetHeistStatus handles GET /api/v1/heists/{targetId}
func (h *Handler) GetHeistStatus(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("targetId")

	st, ok := h.heists.Status(targetID)
	if !ok {
		h.writeError(w, r, &service.ServiceError{
			Kind:    service.KindNotFound,
			Code:    "no_active_heist",
			Message: "no heist in progress on this target",
		})
		return
	}

	h.writeData(w, toHeistResponse(st))
}

type cancelHeistRequest struct {
	Reason string `json:"reason"`
}

// CancelHeist handles POST /api/v1/heists/{targetId}/cancel. Cancelling a
// target with no live heist succeeds as a no-op.
func (h *Handler) CancelHeist(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("targetId")

	var req cancelHeistRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Reason == "" {
		h.writeError(w, r, &service.ServiceError{Kind: service.KindValidation, Code: "invalid_request", Message: "reason is required"})
		return
	}

	if err := h.heists.Cancel(r.Context(), targetID, req.Reason); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeMessage(w, "heist cancelled")
}
