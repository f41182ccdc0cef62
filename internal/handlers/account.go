package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/citywide-rp/bankcore/internal/models"
	"github.com/citywide-rp/bankcore/internal/service"
)

type createAccountRequest struct {
	OwnerID             string `json:"owner_id"`
	Type                string `json:"type"`
	InitialBalanceCents int64  `json:"initial_balance_cents"`
}

// CreateAccount handles POST /api/v1/accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.accounts.CreateAccount(r.Context(), req.OwnerID, models.AccountType(req.Type), req.InitialBalanceCents)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, struct {
		Account accountResponse `json:"account"`
		PIN     string          `json:"pin"`
	}{toAccountResponse(created.Account), created.PIN})
}

// GetAccount handles GET /api/v1/accounts/{accountId}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, toAccountResponse(account))
}

// GetStatement handles GET /api/v1/accounts/{accountId}/statement
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	limit := queryInt(r, "limit")
	txns, err := h.accounts.Statement(r.Context(), accountID, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	entries := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		entries = append(entries, toTransactionResponse(t))
	}
	h.writeData(w, entries)
}

type changePINRequest struct {
	OldPIN string `json:"old_pin"`
	NewPIN string `json:"new_pin"`
}

// ChangePIN handles POST /api/v1/accounts/{accountId}/pin
func (h *Handler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req changePINRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.accounts.ChangePIN(r.Context(), accountID, req.OldPIN, req.NewPIN); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeMessage(w, "PIN changed")
}

type verifyPINRequest struct {
	PIN string `json:"pin"`
}

// VerifyPIN handles POST /api/v1/accounts/{accountId}/pin/verify
func (h *Handler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req verifyPINRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ok, err := h.accounts.VerifyPIN(r.Context(), accountID, req.PIN)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, struct {
		Valid bool `json:"valid"`
	}{ok})
}

type issueCardRequest struct {
	HolderName string `json:"holder_name"`
}

// IssueCard handles POST /api/v1/accounts/{accountId}/cards
func (h *Handler) IssueCard(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req issueCardRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	issued, err := h.accounts.IssueCard(r.Context(), accountID, req.HolderName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, struct {
		Card cardResponse `json:"card"`
		CVV  string       `json:"cvv"`
		PIN  string       `json:"pin"`
	}{toCardResponse(issued.Card), issued.CVV, issued.PIN})
}

type managerActionRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

// FreezeAccount handles POST /api/v1/accounts/{accountId}/freeze
func (h *Handler) FreezeAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountStatus(w, r, h.accounts.FreezeAccount, "account frozen")
}

// UnfreezeAccount handles POST /api/v1/accounts/{accountId}/unfreeze
func (h *Handler) UnfreezeAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountStatus(w, r, h.accounts.UnfreezeAccount, "account unfrozen")
}

func (h *Handler) setAccountStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID, actorID, reason string) error, message string) {
	accountID, err := pathUUID(r, "accountId")
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

	if err := op(r.Context(), accountID, req.ActorID, req.Reason); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeMessage(w, message)
}

// StartSession handles POST /api/v1/accounts/{accountId}/sessions
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Existence check so a session is never issued for an unknown account.
	if _, err := h.accounts.GetAccount(r.Context(), accountID); err != nil {
		h.writeError(w, r, err)
		return
	}

	token := h.sessions.StartSession(accountID)
	h.writeData(w, struct {
		SessionToken string `json:"session_token"`
	}{token.String()})
}

// EndSession handles DELETE /api/v1/accounts/{accountId}/sessions
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.sessions.EndSession(accountID)
	h.writeMessage(w, "session ended")
}
