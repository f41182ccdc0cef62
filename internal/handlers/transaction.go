package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/service"
)

type moneyOpRequest struct {
	AccountID    string `json:"account_id"`
	SessionToken string `json:"session_token"`
	AmountCents  int64  `json:"amount_cents"`
	PIN          string `json:"pin"`
	RecipientRef string `json:"recipient_ref"`
	Location     string `json:"location"`
}

func (req *moneyOpRequest) ids() (uuid.UUID, uuid.UUID, error) {
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return uuid.Nil, uuid.Nil, &service.ServiceError{Kind: service.KindValidation, Code: "invalid_request", Message: "malformed account_id"}
	}
	token, err := uuid.Parse(req.SessionToken)
	if err != nil {
		return uuid.Nil, uuid.Nil, &service.ServiceError{Kind: service.KindValidation, Code: "invalid_request", Message: "malformed session_token"}
	}
	return accountID, token, nil
}

// Deposit handles POST /api/v1/transactions/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req moneyOpRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	accountID, token, err := req.ids()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	txn, err := h.transactions.Deposit(r.Context(), accountID, token, req.AmountCents, req.Location)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, toTransactionResponse(txn))
}

// Withdraw handles POST /api/v1/transactions/withdraw. The PIN travels with
// the request and is verified here before the engine is touched.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req moneyOpRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	accountID, token, err := req.ids()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	verified, err := h.verifyPIN(w, r, accountID, req.PIN)
	if err != nil {
		return
	}

	txn, err := h.transactions.Withdraw(r.Context(), accountID, token, req.AmountCents, verified, req.Location)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, toTransactionResponse(txn))
}

// Transfer handles POST /api/v1/transactions/transfer
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req moneyOpRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	accountID, token, err := req.ids()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	verified, err := h.verifyPIN(w, r, accountID, req.PIN)
	if err != nil {
		return
	}

	result, err := h.transactions.Transfer(r.Context(), accountID, token, req.RecipientRef, req.AmountCents, verified, req.Location)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := struct {
		Outgoing transactionResponse  `json:"outgoing"`
		Fee      *transactionResponse `json:"fee,omitempty"`
		Incoming transactionResponse  `json:"incoming"`
	}{
		Outgoing: toTransactionResponse(result.Outgoing),
		Incoming: toTransactionResponse(result.Incoming),
	}
	if result.Fee != nil {
		fee := toTransactionResponse(result.Fee)
		resp.Fee = &fee
	}
	h.writeData(w, resp)
}

// ApplyInterest handles POST /api/v1/transactions/interest-run. Intended for
// the scheduled caller, not players.
func (h *Handler) ApplyInterest(w http.ResponseWriter, r *http.Request) {
	run, err := h.transactions.ApplyInterest(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, struct {
		AccountsCredited int   `json:"accounts_credited"`
		TotalCents       int64 `json:"total_cents"`
		Skipped          int   `json:"skipped"`
	}{run.AccountsCredited, run.TotalCents, run.Skipped})
}

// verifyPIN gates PIN-protected operations. A missing or wrong PIN writes the
// error response itself and reports failure to the caller.
func (h *Handler) verifyPIN(w http.ResponseWriter, r *http.Request, accountID uuid.UUID, pin string) (bool, error) {
	if pin == "" {
		err := &service.ServiceError{Kind: service.KindPrecondition, Code: service.ErrCodeRequiresPIN, Message: "PIN verification required"}
		h.writeError(w, r, err)
		return false, err
	}

	ok, err := h.accounts.VerifyPIN(r.Context(), accountID, pin)
	if err != nil {
		h.writeError(w, r, err)
		return false, err
	}
	if !ok {
		err := &service.ServiceError{Kind: service.KindPrecondition, Code: service.ErrCodeInvalidCredential, Message: "PIN does not match"}
		h.writeError(w, r, err)
		return false, err
	}
	return true, nil
}
