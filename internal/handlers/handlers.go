// Package handlers implements HTTP handlers for the engine API.
package handlers

import (
	"log/slog"

	"github.com/citywide-rp/bankcore/internal/heist"
	"github.com/citywide-rp/bankcore/internal/service"
	"github.com/citywide-rp/bankcore/internal/session"
)

// Handler carries the endpoint dependencies for all routes.
type Handler struct {
	accounts     service.AccountManager
	transactions service.Transactor
	loans        service.LoanManager
	heists       *heist.Manager
	sessions     *session.Guard
	logger       *slog.Logger
}

// NewHandler creates a new Handler with injected service dependencies.
func NewHandler(
	accounts service.AccountManager,
	transactions service.Transactor,
	loans service.LoanManager,
	heists *heist.Manager,
	sessions *session.Guard,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		accounts:     accounts,
		transactions: transactions,
		loans:        loans,
		heists:       heists,
		sessions:     sessions,
		logger:       logger,
	}
}
