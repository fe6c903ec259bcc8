package amortization

import (
	"math"
	"strconv"

	"github.com/iwvelando/loan-gauge/pkg/constants"
	"github.com/iwvelando/loan-gauge/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// LoanTerms holds the inputs of a fixed-rate, fully amortizing loan.
// AnnualInterestRate is a fraction, e.g. 0.045 for 4.5%.
type LoanTerms struct {
	Principal          decimal.Decimal `json:"principal" yaml:"principal"`
	AnnualInterestRate decimal.Decimal `json:"annualInterestRate" yaml:"annualInterestRate"`
	TermYears          int             `json:"termYears" yaml:"termYears"`
}

// DefaultLoanTerms returns the sample loan used when a caller supplies nothing.
func DefaultLoanTerms() LoanTerms {
	return LoanTerms{
		Principal:          decimal.NewFromFloat(constants.DefaultPrincipal),
		AnnualInterestRate: decimal.NewFromFloat(constants.DefaultAnnualInterestRate),
		TermYears:          constants.DefaultTermYears,
	}
}

// NewLoanTerms builds LoanTerms from untyped numeric input such as query
// parameters or config values. Non-finite numbers and fractional years are
// rejected here since they cannot be represented by LoanTerms.
func NewLoanTerms(principal, annualInterestRate, termYears float64) (LoanTerms, error) {
	if math.IsNaN(principal) || math.IsInf(principal, 0) {
		return LoanTerms{}, invalid(FieldPrincipal, formatFloat(principal), "must be a finite number")
	}
	terms := LoanTerms{Principal: decimal.NewFromFloat(principal)}
	if err := terms.validatePrincipal(); err != nil {
		return LoanTerms{}, err
	}

	if math.IsNaN(annualInterestRate) || math.IsInf(annualInterestRate, 0) {
		return LoanTerms{}, invalid(FieldAnnualInterestRate, formatFloat(annualInterestRate), "must be a finite number")
	}
	terms.AnnualInterestRate = decimal.NewFromFloat(annualInterestRate)
	if err := terms.validateRate(); err != nil {
		return LoanTerms{}, err
	}

	switch {
	case math.IsNaN(termYears) || math.IsInf(termYears, 0):
		return LoanTerms{}, invalid(FieldTermYears, formatFloat(termYears), "must be a finite number")
	case termYears != math.Trunc(termYears):
		return LoanTerms{}, invalid(FieldTermYears, formatFloat(termYears), "must be a whole number of years")
	case termYears <= 0:
		return LoanTerms{}, invalid(FieldTermYears, formatFloat(termYears), "must be positive")
	case termYears > math.MaxInt32/constants.MonthsPerYear:
		return LoanTerms{}, invalid(FieldTermYears, formatFloat(termYears), "is too large")
	}
	terms.TermYears = int(termYears)
	if err := terms.Validate(); err != nil {
		return LoanTerms{}, err
	}
	return terms, nil
}

// Validate checks every field and returns an *InvalidLoanTermsError for the
// first one that fails, in field order.
func (t LoanTerms) Validate() error {
	if err := t.validatePrincipal(); err != nil {
		return err
	}
	if err := t.validateRate(); err != nil {
		return err
	}
	if err := t.validateTerm(); err != nil {
		return err
	}
	return t.validateAmortizable()
}

func (t LoanTerms) validatePrincipal() error {
	if !mathutil.RoundCurrency(t.Principal).IsPositive() {
		return invalid(FieldPrincipal, t.Principal.String(), "must be positive")
	}
	return nil
}

func (t LoanTerms) validateRate() error {
	if t.AnnualInterestRate.IsNegative() {
		return invalid(FieldAnnualInterestRate, t.AnnualInterestRate.String(), "must not be negative")
	}
	return nil
}

func (t LoanTerms) validateTerm() error {
	if t.TermYears <= 0 {
		return invalid(FieldTermYears, strconv.Itoa(t.TermYears), "must be positive")
	}
	return nil
}

// validateAmortizable rejects rates so large that the fixed payment cannot
// be represented, and principals so small that it rounds to zero.
func (t LoanTerms) validateAmortizable() error {
	payment := CalculateMonthlyPayment(t.Principal.InexactFloat64(), t.AnnualInterestRate.InexactFloat64(), t.Payments())
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return invalid(FieldAnnualInterestRate, t.AnnualInterestRate.String(), "is too large to amortize")
	}
	if !MonthlyPayment(t).IsPositive() {
		return invalid(FieldPrincipal, t.Principal.String(), "is too small to amortize over the term")
	}
	return nil
}

// Payments returns the number of monthly payments over the term.
func (t LoanTerms) Payments() int {
	return t.TermYears * constants.MonthsPerYear
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
