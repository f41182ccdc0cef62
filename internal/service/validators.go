package service

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/citywide-rp/bankcore/internal/models"
)

// ValidatePIN checks that pin is exactly 4 digits
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return fmt.Errorf("invalid PIN: must be exactly 4 digits")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid PIN: must contain only digits")
		}
	}
	return nil
}

// ValidateAmount checks if amount is valid (positive)
func ValidateAmount(amountCents int64) error {
	if amountCents <= 0 {
		return fmt.Errorf("invalid amount: must be greater than 0")
	}
	return nil
}

// ValidateLuhn validates a card number using the Luhn algorithm
func ValidateLuhn(cardNumber string) error {
	var digits []int
	for _, r := range cardNumber {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}

	if len(digits) < 13 || len(digits) > 19 {
		return fmt.Errorf("invalid card number length: must be 13-19 digits")
	}

	sum := 0
	isSecond := false

	for i := len(digits) - 1; i >= 0; i-- {
		digit := digits[i]

		if isSecond {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		isSecond = !isSecond
	}

	if sum%10 != 0 {
		return fmt.Errorf("invalid card number: failed Luhn check")
	}

	return nil
}

// TransferFee returns the sender-paid fee for a transfer, floored to the
// nearest minor unit
func TransferFee(amountCents, feeBps int64) int64 {
	return amountCents * feeBps / 10000
}

// MonthlyInterest returns one month of accrual on a balance, floored.
// annualRateBps is the yearly rate in basis points.
func MonthlyInterest(balanceCents, annualRateBps int64) int64 {
	return balanceCents * annualRateBps / 10000 / 12
}

// NewReferenceNumber stamps a ledger record with a unique audit reference in
// the form {TYPE}{unix-timestamp}{random}. Collisions are negligible but the
// ledger's unique constraint is the backstop; callers retry on duplicates.
func NewReferenceNumber(t models.TransactionType) string {
	return fmt.Sprintf("%s%d%04d", refPrefix(t), time.Now().Unix(), rand.IntN(10000))
}

func refPrefix(t models.TransactionType) string {
	switch t {
	case models.TransactionTypeDeposit:
		return "DEP"
	case models.TransactionTypeWithdraw:
		return "WDR"
	case models.TransactionTypeTransferIn, models.TransactionTypeTransferOut:
		return "TRF"
	case models.TransactionTypeFee:
		return "FEE"
	case models.TransactionTypeInterest:
		return "INT"
	case models.TransactionTypeLoan:
		return "LON"
	default:
		return "TXN"
	}
}
