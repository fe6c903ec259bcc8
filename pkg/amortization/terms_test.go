package amortization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoanTerms(t *testing.T) {
	terms, err := NewLoanTerms(300000, 0.045, 25)
	require.NoError(t, err)
	assert.Equal(t, "300000", terms.Principal.String())
	assert.Equal(t, "0.045", terms.AnnualInterestRate.String())
	assert.Equal(t, 25, terms.TermYears)
	assert.Equal(t, 300, terms.Payments())
}

func TestNewLoanTermsRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     float64
		field     string
		reason    string
	}{
		{"zero principal", 0, 0.045, 25, FieldPrincipal, "must be positive"},
		{"NaN principal", math.NaN(), 0.045, 25, FieldPrincipal, "finite"},
		{"infinite rate", 300000, math.Inf(1), 25, FieldAnnualInterestRate, "finite"},
		{"negative rate", 300000, -0.01, 25, FieldAnnualInterestRate, "must not be negative"},
		{"fractional years", 300000, 0.045, 2.5, FieldTermYears, "whole number"},
		{"zero years", 300000, 0.045, 0, FieldTermYears, "must be positive"},
		{"huge years", 300000, 0.045, 1e12, FieldTermYears, "too large"},
		{"unrepresentable rate", 1e300, 1e300, 1, FieldAnnualInterestRate, "too large to amortize"},
		{"payment below a cent", 1, 0.05, 50, FieldPrincipal, "too small to amortize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := NewLoanTerms(tt.principal, tt.rate, tt.years)
			require.Error(t, err)
			assert.Equal(t, LoanTerms{}, terms)

			var termsErr *InvalidLoanTermsError
			require.ErrorAs(t, err, &termsErr)
			assert.Equal(t, tt.field, termsErr.Field)
			assert.Contains(t, termsErr.Reason, tt.reason)
		})
	}
}

func TestDefaultLoanTermsAreValid(t *testing.T) {
	terms := DefaultLoanTerms()
	require.NoError(t, terms.Validate())
	assert.Equal(t, 25, terms.TermYears)
}

func TestInvalidLoanTermsErrorMessage(t *testing.T) {
	err := &InvalidLoanTermsError{Field: FieldTermYears, Value: "0", Reason: "must be positive"}
	assert.Equal(t, "invalid loan terms: termYears must be positive (got 0)", err.Error())

	err = &InvalidLoanTermsError{Field: FieldPrincipal, Reason: "is required"}
	assert.Equal(t, "invalid loan terms: principal is required", err.Error())
}
