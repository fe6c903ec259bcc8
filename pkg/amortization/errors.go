package amortization

import (
	"errors"
	"fmt"
)

// Loan term field names reported by InvalidLoanTermsError.
const (
	FieldPrincipal          = "principal"
	FieldAnnualInterestRate = "annualInterestRate"
	FieldTermYears          = "termYears"
)

// InvalidLoanTermsError reports a loan term that failed validation. No
// schedule is produced when it is returned.
type InvalidLoanTermsError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidLoanTermsError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid loan terms: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid loan terms: %s %s (got %s)", e.Field, e.Reason, e.Value)
}

// IsInvalidLoanTerms reports whether err wraps an InvalidLoanTermsError.
func IsInvalidLoanTerms(err error) bool {
	var termsErr *InvalidLoanTermsError
	return errors.As(err, &termsErr)
}

func invalid(field, value, reason string) *InvalidLoanTermsError {
	return &InvalidLoanTermsError{Field: field, Value: value, Reason: reason}
}
