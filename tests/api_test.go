//nolint:errcheck // unchecked errors are acceptable in test files
package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositAndWithdraw(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	accountID, pin := ts.OpenAccount(t, "player-1", "PERSONAL", 0)
	token := ts.StartSession(t, accountID)
	ts.Game.SetCash("player-1", 100000)

	status, body := ts.PostJSON(t, "/api/v1/transactions/deposit", map[string]any{
		"account_id":    accountID,
		"session_token": token,
		"amount_cents":  60000,
		"location":      "fleeca_legion",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	txn := body["data"].(map[string]any)
	assert.Equal(t, "DEPOSIT", txn["type"])
	assert.Equal(t, float64(60000), txn["amount_cents"])

	// Physical cash left the player's pockets.
	assert.Equal(t, int64(40000), ts.Game.Cash("player-1"))

	status, body = ts.PostJSON(t, "/api/v1/transactions/withdraw", map[string]any{
		"account_id":    accountID,
		"session_token": token,
		"amount_cents":  25000,
		"pin":           pin,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, int64(65000), ts.Game.Cash("player-1"))

	status, body = ts.GetJSON(t, "/api/v1/accounts/"+accountID)
	require.Equal(t, http.StatusOK, status)
	account := body["data"].(map[string]any)
	assert.Equal(t, float64(35000), account["balance_cents"])

	status, body = ts.GetJSON(t, "/api/v1/accounts/"+accountID+"/statement")
	require.Equal(t, http.StatusOK, status)
	entries := body["data"].([]any)
	assert.Len(t, entries, 2)

	// The withdrawal carried no location, so it was stamped with the
	// configured home branch; the deposit kept the one it was given.
	assert.Equal(t, "downtown", entries[0].(map[string]any)["location"])
	assert.Equal(t, "fleeca_legion", entries[1].(map[string]any)["location"])
}

func TestDepositRequiresCashOnHand(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	accountID, _ := ts.OpenAccount(t, "player-1", "PERSONAL", 0)
	token := ts.StartSession(t, accountID)
	ts.Game.SetCash("player-1", 500)

	status, body := ts.PostJSON(t, "/api/v1/transactions/deposit", map[string]any{
		"account_id":    accountID,
		"session_token": token,
		"amount_cents":  60000,
	})
	require.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "insufficient_cash", body["error"])

	// Nothing was taken and no ledger entry was written.
	assert.Equal(t, int64(500), ts.Game.Cash("player-1"))
	_, stmt := ts.GetJSON(t, "/api/v1/accounts/"+accountID+"/statement")
	assert.Empty(t, stmt["data"])
}

func TestWithdrawRequiresPIN(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	accountID, _ := ts.OpenAccount(t, "player-1", "PERSONAL", 50000)
	token := ts.StartSession(t, accountID)

	status, body := ts.PostJSON(t, "/api/v1/transactions/withdraw", map[string]any{
		"account_id":    accountID,
		"session_token": token,
		"amount_cents":  10000,
	})
	require.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, "requires_pin", body["error"])

	status, body = ts.PostJSON(t, "/api/v1/transactions/withdraw", map[string]any{
		"account_id":    accountID,
		"session_token": token,
		"amount_cents":  10000,
		"pin":           "0000",
	})
	require.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, "invalid_credential", body["error"])
}

func TestTransferChargesSenderFee(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	senderID, pin := ts.OpenAccount(t, "player-1", "PERSONAL", 100000)
	recipientID, _ := ts.OpenAccount(t, "player-2", "PERSONAL", 0)
	token := ts.StartSession(t, senderID)

	_, recipientBody := ts.GetJSON(t, "/api/v1/accounts/"+recipientID)
	recipientNumber := recipientBody["data"].(map[string]any)["account_number"].(string)

	status, body := ts.PostJSON(t, "/api/v1/transactions/transfer", map[string]any{
		"account_id":    senderID,
		"session_token": token,
		"amount_cents":  50000,
		"pin":           pin,
		"recipient_ref": recipientNumber,
	})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(-50000), data["outgoing"].(map[string]any)["amount_cents"])
	assert.Equal(t, float64(-500), data["fee"].(map[string]any)["amount_cents"])
	assert.Equal(t, float64(50000), data["incoming"].(map[string]any)["amount_cents"])

	_, senderBody := ts.GetJSON(t, "/api/v1/accounts/"+senderID)
	_, recipientBody = ts.GetJSON(t, "/api/v1/accounts/"+recipientID)
	assert.Equal(t, float64(49500), senderBody["data"].(map[string]any)["balance_cents"])
	assert.Equal(t, float64(50000), recipientBody["data"].(map[string]any)["balance_cents"])
}

func TestSecondSessionInvalidatesFirst(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	accountID, _ := ts.OpenAccount(t, "player-1", "PERSONAL", 0)
	stale := ts.StartSession(t, accountID)
	ts.StartSession(t, accountID)
	ts.Game.SetCash("player-1", 100000)

	status, body := ts.PostJSON(t, "/api/v1/transactions/deposit", map[string]any{
		"account_id":    accountID,
		"session_token": stale,
		"amount_cents":  10000,
	})
	require.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, "session_conflict", body["error"])
	assert.Equal(t, int64(100000), ts.Game.Cash("player-1"))
}

func TestFrozenAccountRejectsOperations(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	accountID, _ := ts.OpenAccount(t, "player-1", "PERSONAL", 50000)
	token := ts.StartSession(t, accountID)
	ts.Game.SetCash("player-1", 100000)

	status, _ := ts.PostJSON(t, "/api/v1/accounts/"+accountID+"/freeze", map[string]any{
		"actor_id": "manager-1",
		"reason":   "fraud review",
	})
	require.Equal(t, http.StatusOK, status)

	status, body := ts.PostJSON(t, "/api/v1/transactions/deposit", map[string]any{
		"account_id":    accountID,
		"session_token": token,
		"amount_cents":  10000,
	})
	require.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, "account_frozen", body["error"])

	status, _ = ts.PostJSON(t, "/api/v1/accounts/"+accountID+"/unfreeze", map[string]any{
		"actor_id": "manager-1",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.PostJSON(t, "/api/v1/transactions/deposit", map[string]any{
		"account_id":    accountID,
		"session_token": token,
		"amount_cents":  10000,
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestLoanLifecycle(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	accountID, _ := ts.OpenAccount(t, "player-1", "PERSONAL", 0)

	status, body := ts.PostJSON(t, "/api/v1/loans", map[string]any{
		"account_id":   accountID,
		"amount_cents": 500000,
		"term_months":  12,
	})
	require.Equal(t, http.StatusOK, status)
	loan := body["data"].(map[string]any)
	loanID := loan["id"].(string)
	assert.Equal(t, "PENDING", loan["status"])
	assert.Greater(t, loan["monthly_payment_cents"].(float64), float64(0))

	// A second application while one is open is rejected.
	status, body = ts.PostJSON(t, "/api/v1/loans", map[string]any{
		"account_id":   accountID,
		"amount_cents": 200000,
		"term_months":  12,
	})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "duplicate_loan", body["error"])

	status, body = ts.PostJSON(t, "/api/v1/loans/"+loanID+"/approve", map[string]any{
		"actor_id": "manager-1",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "APPROVED", body["data"].(map[string]any)["status"])

	_, accountBody := ts.GetJSON(t, "/api/v1/accounts/"+accountID)
	assert.Equal(t, float64(500000), accountBody["data"].(map[string]any)["balance_cents"])

	// Decisions are terminal.
	status, body = ts.PostJSON(t, "/api/v1/loans/"+loanID+"/deny", map[string]any{
		"actor_id": "manager-2",
		"reason":   "changed my mind",
	})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "loan_already_processed", body["error"])
}

func TestPINChangeAndCardIssue(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	accountID, pin := ts.OpenAccount(t, "player-1", "PERSONAL", 0)

	status, body := ts.PostJSON(t, "/api/v1/accounts/"+accountID+"/pin", map[string]any{
		"old_pin": pin,
		"new_pin": "4821",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = ts.PostJSON(t, "/api/v1/accounts/"+accountID+"/pin/verify", map[string]any{
		"pin": "4821",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["valid"])

	for i := 0; i < 3; i++ {
		status, body = ts.PostJSON(t, "/api/v1/accounts/"+accountID+"/cards", map[string]any{
			"holder_name": "Jordan Bellamy",
		})
		require.Equal(t, http.StatusOK, status)
		card := body["data"].(map[string]any)["card"].(map[string]any)
		assert.Equal(t, "Jordan B.", card["holder_name"])
	}

	// The fourth card breaches the per-account cap.
	status, body = ts.PostJSON(t, "/api/v1/accounts/"+accountID+"/cards", map[string]any{
		"holder_name": "Jordan Bellamy",
	})
	require.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, "card_limit_reached", body["error"])
}

func TestHeistEndpoints(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	status, body := ts.PostJSON(t, "/api/v1/heists/bank", map[string]any{
		"initiator_id": "crew-1",
		"target_id":    "fleeca_legion",
		"method":       "DRILL",
		"participants": []string{"crew-2"},
	})
	require.Equal(t, http.StatusOK, status)
	heist := body["data"].(map[string]any)
	assert.Equal(t, "WORKING", heist["stage"])

	status, body = ts.GetJSON(t, "/api/v1/heists/fleeca_legion")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "crew-1", body["data"].(map[string]any)["initiator_id"])

	status, _ = ts.PostJSON(t, "/api/v1/heists/fleeca_legion/cancel", map[string]any{
		"reason": "AdminLockdown",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = ts.GetJSON(t, "/api/v1/heists/fleeca_legion")
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "no_active_heist", body["error"])

	// The target is on cooldown after the failed attempt.
	status, body = ts.PostJSON(t, "/api/v1/heists/bank", map[string]any{
		"initiator_id": "crew-1",
		"target_id":    "fleeca_legion",
		"method":       "DRILL",
	})
	require.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, "cooldown_active", body["error"])
}

func TestInterestRun(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	savingsID, _ := ts.OpenAccount(t, "player-1", "SAVINGS", 1000000)
	ts.OpenAccount(t, "player-2", "PERSONAL", 1000000)

	status, body := ts.PostJSON(t, "/api/v1/transactions/interest-run", map[string]any{})
	require.Equal(t, http.StatusOK, status)
	run := body["data"].(map[string]any)
	assert.Equal(t, float64(1), run["accounts_credited"])
	assert.Equal(t, float64(1250), run["total_cents"])

	_, accountBody := ts.GetJSON(t, "/api/v1/accounts/"+savingsID)
	assert.Equal(t, float64(1001250), accountBody["data"].(map[string]any)["balance_cents"])
}
