// Package validation holds the pure donor-input validators: national ID
// checksum, email shape and minimum amount.
package validation

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// MinimumAmountCents is the smallest accepted donation (1.00 EUR).
const MinimumAmountCents = 100

// Single-letter top-level domains are rejected on purpose; the original
// behaved that way and receipts have relied on it.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]{2,}$`)

var (
	idWeightsFirst  = [10]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 1}
	idWeightsSecond = [10]int{3, 4, 5, 6, 7, 8, 9, 1, 2, 3}
)

// ValidateIDCode checks an 11-digit national identification code: century
// digit 1 to 6, a valid month and day, and the two-stage mod-11 checksum
// (second weight vector on remainder 10, literal 0 when that also yields 10).
func ValidateIDCode(code string) bool {
	if len(code) != 11 {
		return false
	}
	digits := make([]int, 11)
	for i, r := range code {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}

	if digits[0] < 1 || digits[0] > 6 {
		return false
	}
	month := digits[3]*10 + digits[4]
	if month < 1 || month > 12 {
		return false
	}
	day := digits[5]*10 + digits[6]
	if day < 1 || day > 31 {
		return false
	}

	return digits[10] == checkDigit(digits)
}

func checkDigit(digits []int) int {
	sum := 0
	for i, w := range idWeightsFirst {
		sum += digits[i] * w
	}
	if rem := sum % 11; rem < 10 {
		return rem
	}

	sum = 0
	for i, w := range idWeightsSecond {
		sum += digits[i] * w
	}
	if rem := sum % 11; rem < 10 {
		return rem
	}
	return 0
}

// ValidateEmail checks the RFC-light shape local@domain.tld.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// AmountToCents converts a major-unit amount to minor units, rounding half
// up to the nearest cent.
func AmountToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ValidateAmount reports whether amount is non-negative and at least
// MinimumAmountCents after conversion.
func ValidateAmount(amount decimal.Decimal) bool {
	if amount.IsNegative() {
		return false
	}
	return AmountToCents(amount) >= MinimumAmountCents
}
