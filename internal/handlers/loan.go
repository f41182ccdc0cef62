package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/service"
)

type applyLoanRequest struct {
	AccountID   string `json:"account_id"`
	AmountCents int64  `json:"amount_cents"`
	TermMonths  int    `json:"term_months"`
}

// ApplyForLoan handles POST /api/v1/loans
func (h *Handler) ApplyForLoan(w http.ResponseWriter, r *http.Request) {
	var req applyLoanRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.writeError(w, r, &service.ServiceError{Kind: service.KindValidation, Code: "invalid_request", Message: "malformed account_id"})
		return
	}

	loan, err := h.loans.ApplyForLoan(r.Context(), accountID, req.AmountCents, req.TermMonths)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, toLoanResponse(loan))
}

// GetLoan handles GET /api/v1/loans/{loanId}
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	loan, err := h.loans.GetLoan(r.Context(), loanID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, toLoanResponse(loan))
}

// ApproveLoan handles POST /api/v1/loans/{loanId}/approve
func (h *Handler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req managerActionRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.ActorID == "" {
		h.writeError(w, r, &service.ServiceError{Kind: service.KindValidation, Code: "invalid_request", Message: "actor_id is required"})
		return
	}

	loan, err := h.loans.ApproveLoan(r.Context(), loanID, req.ActorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, toLoanResponse(loan))
}

// DenyLoan handles POST /api/v1/loans/{loanId}/deny
func (h *Handler) DenyLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req managerActionRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.ActorID == "" {
		h.writeError(w, r, &service.ServiceError{Kind: service.KindValidation, Code: "invalid_request", Message: "actor_id is required"})
		return
	}

	loan, err := h.loans.DenyLoan(r.Context(), loanID, req.ActorID, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, toLoanResponse(loan))
}
