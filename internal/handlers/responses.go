package handlers

import (
	"time"

	"github.com/citywide-rp/bankcore/internal/heist"
	"github.com/citywide-rp/bankcore/internal/models"
)

// Response DTOs. Models carry secret hashes and store-only fields; only the
// shapes below ever cross the wire.

type accountResponse struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	AccountNumber string `json:"account_number"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	BalanceCents  int64  `json:"balance_cents"`
	InterestBps   int64  `json:"interest_bps"`
	CreatedAt     string `json:"created_at"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		ID:            a.ID.String(),
		OwnerID:       a.OwnerID,
		AccountNumber: a.AccountNumber,
		Type:          string(a.Type),
		Status:        string(a.Status),
		BalanceCents:  a.BalanceCents,
		InterestBps:   a.InterestBps,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

type transactionResponse struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	Type            string `json:"type"`
	AmountCents     int64  `json:"amount_cents"`
	ReferenceNumber string `json:"reference_number"`
	Counterparty    string `json:"counterparty,omitempty"`
	Location        string `json:"location,omitempty"`
	CreatedAt       string `json:"created_at"`
}

func toTransactionResponse(t *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:              t.ID.String(),
		AccountID:       t.AccountID.String(),
		Type:            string(t.Type),
		AmountCents:     t.AmountCents,
		ReferenceNumber: t.ReferenceNumber,
		Counterparty:    t.Counterparty,
		Location:        t.Location,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}
}

type loanResponse struct {
	ID                  string `json:"id"`
	AccountID           string `json:"account_id"`
	Status              string `json:"status"`
	PrincipalCents      int64  `json:"principal_cents"`
	AnnualRateBps       int64  `json:"annual_rate_bps"`
	TermMonths          int    `json:"term_months"`
	MonthlyPaymentCents int64  `json:"monthly_payment_cents"`
	ApproverID          string `json:"approver_id,omitempty"`
	DecisionReason      string `json:"decision_reason,omitempty"`
	CreatedAt           string `json:"created_at"`
}

func toLoanResponse(l *models.Loan) loanResponse {
	return loanResponse{
		ID:                  l.ID.String(),
		AccountID:           l.AccountID.String(),
		Status:              string(l.Status),
		PrincipalCents:      l.PrincipalCents,
		AnnualRateBps:       l.AnnualRateBps,
		TermMonths:          l.TermMonths,
		MonthlyPaymentCents: l.MonthlyPaymentCents,
		ApproverID:          l.ApproverID,
		DecisionReason:      l.DecisionReason,
		CreatedAt:           l.CreatedAt.Format(time.RFC3339),
	}
}

type cardResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	CardNumber  string `json:"card_number"`
	HolderName  string `json:"holder_name"`
	Status      string `json:"status"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
}

func toCardResponse(c *models.Card) cardResponse {
	return cardResponse{
		ID:          c.ID.String(),
		AccountID:   c.AccountID.String(),
		CardNumber:  c.CardNumber,
		HolderName:  c.HolderName,
		Status:      string(c.Status),
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
	}
}

type heistResponse struct {
	TargetID    string `json:"target_id"`
	TargetName  string `json:"target_name"`
	Kind        string `json:"kind"`
	InitiatorID string `json:"initiator_id"`
	Method      string `json:"method"`
	Stage       string `json:"stage"`
	Progress    int    `json:"progress"`
	LootCents   int64  `json:"loot_cents"`
	StartedAt   string `json:"started_at"`
	EndsAt      string `json:"ends_at"`
}

func toHeistResponse(st heist.State) heistResponse {
	return heistResponse{
		TargetID:    st.TargetID,
		TargetName:  st.TargetName,
		Kind:        string(st.Kind),
		InitiatorID: st.InitiatorID,
		Method:      string(st.Method),
		Stage:       string(st.Stage),
		Progress:    st.Progress,
		LootCents:   st.LootCents,
		StartedAt:   st.StartedAt.Format(time.RFC3339),
		EndsAt:      st.StartedAt.Add(st.Duration).Format(time.RFC3339),
	}
}
