package handlers

import (
	"log/slog"
	"net/http"

	"github.com/citywide-rp/bankcore/internal/api"
	"github.com/citywide-rp/bankcore/internal/middleware"
)

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(
	handler *Handler,
	checker HealthChecker,
	events http.Handler,
	apiKey string,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux)

	mux.HandleFunc("GET /health", handler.GetHealth(checker))
	mux.Handle("GET /api/v1/events", events)

	mux.HandleFunc("POST /api/v1/accounts", handler.CreateAccount)
	mux.HandleFunc("GET /api/v1/accounts/{accountId}", handler.GetAccount)
	mux.HandleFunc("GET /api/v1/accounts/{accountId}/statement", handler.GetStatement)
	mux.HandleFunc("POST /api/v1/accounts/{accountId}/pin", handler.ChangePIN)
	mux.HandleFunc("POST /api/v1/accounts/{accountId}/pin/verify", handler.VerifyPIN)
	mux.HandleFunc("POST /api/v1/accounts/{accountId}/cards", handler.IssueCard)
	mux.HandleFunc("POST /api/v1/accounts/{accountId}/freeze", handler.FreezeAccount)
	mux.HandleFunc("POST /api/v1/accounts/{accountId}/unfreeze", handler.UnfreezeAccount)
	mux.HandleFunc("POST /api/v1/accounts/{accountId}/sessions", handler.StartSession)
	mux.HandleFunc("DELETE /api/v1/accounts/{accountId}/sessions", handler.EndSession)

	mux.HandleFunc("POST /api/v1/transactions/deposit", handler.Deposit)
	mux.HandleFunc("POST /api/v1/transactions/withdraw", handler.Withdraw)
	mux.HandleFunc("POST /api/v1/transactions/transfer", handler.Transfer)
	mux.HandleFunc("POST /api/v1/transactions/interest-run", handler.ApplyInterest)

	mux.HandleFunc("POST /api/v1/loans", handler.ApplyForLoan)
	mux.HandleFunc("GET /api/v1/loans/{loanId}", handler.GetLoan)
	mux.HandleFunc("POST /api/v1/loans/{loanId}/approve", handler.ApproveLoan)
	mux.HandleFunc("POST /api/v1/loans/{loanId}/deny", handler.DenyLoan)

	mux.HandleFunc("POST /api/v1/heists/bank", handler.StartBankHeist)
	mux.HandleFunc("POST /api/v1/heists/atm", handler.StartATMHeist)
	mux.HandleFunc("GET /api/v1/heists/{targetId}", handler.GetHeistStatus)
	mux.HandleFunc("POST /api/v1/heists/{targetId}/cancel", handler.CancelHeist)

	var finalHandler http.Handler = mux
	finalHandler = middleware.RequestLogger(logger)(finalHandler)
	finalHandler = middleware.APIKey(apiKey, logger)(finalHandler)

	return finalHandler
}
