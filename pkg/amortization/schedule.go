// Package amortization generates fixed-rate loan amortization schedules.
//
// Every monetary value is rounded to cents with round-half-to-even. Row
// portions are derived from rounded cumulative totals, so the principal
// portions always sum to the principal and the final balance is exactly zero.
package amortization

import (
	"math"

	"github.com/iwvelando/loan-gauge/pkg/constants"
	"github.com/iwvelando/loan-gauge/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentRow holds the values for one month of the schedule. Month is
// 1-indexed.
type PaymentRow struct {
	Month               int             `json:"month" yaml:"month"`
	PaymentAmount       decimal.Decimal `json:"paymentAmount" yaml:"paymentAmount"`
	PrincipalPortion    decimal.Decimal `json:"principalPortion" yaml:"principalPortion"`
	InterestPortion     decimal.Decimal `json:"interestPortion" yaml:"interestPortion"`
	CumulativeInterest  decimal.Decimal `json:"cumulativeInterest" yaml:"cumulativeInterest"`
	CumulativePrincipal decimal.Decimal `json:"cumulativePrincipal" yaml:"cumulativePrincipal"`
	CumulativeTotal     decimal.Decimal `json:"cumulativeTotal" yaml:"cumulativeTotal"`
	RemainingBalance    decimal.Decimal `json:"remainingBalance" yaml:"remainingBalance"`
}

// Schedule is the full month-by-month repayment of a loan.
type Schedule struct {
	Terms LoanTerms    `json:"terms" yaml:"terms"`
	Rows  []PaymentRow `json:"rows" yaml:"rows"`
}

// Summary aggregates a schedule.
type Summary struct {
	MonthlyPayment decimal.Decimal `json:"monthlyPayment" yaml:"monthlyPayment"`
	TotalPrincipal decimal.Decimal `json:"totalPrincipal" yaml:"totalPrincipal"`
	TotalInterest  decimal.Decimal `json:"totalInterest" yaml:"totalInterest"`
	TotalPaid      decimal.Decimal `json:"totalPaid" yaml:"totalPaid"`
	Payments       int             `json:"payments" yaml:"payments"`
}

// Summary returns the totals of the schedule, read from its final row.
func (s *Schedule) Summary() Summary {
	if s == nil || len(s.Rows) == 0 {
		return Summary{}
	}
	last := s.Rows[len(s.Rows)-1]
	return Summary{
		MonthlyPayment: last.PaymentAmount,
		TotalPrincipal: last.CumulativePrincipal,
		TotalInterest:  last.CumulativeInterest,
		TotalPaid:      last.CumulativeTotal,
		Payments:       len(s.Rows),
	}
}

// Generator builds amortization schedules.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a new generator instance.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// GenerateSchedule validates the terms and computes the full schedule. It is
// a pure function of its inputs and safe for concurrent use.
func GenerateSchedule(principal, annualInterestRate decimal.Decimal, termYears int) (*Schedule, error) {
	return NewGenerator(nil).Generate(LoanTerms{
		Principal:          principal,
		AnnualInterestRate: annualInterestRate,
		TermYears:          termYears,
	})
}

// Generate computes the schedule for the given terms. All three terms are
// validated before any computation.
func (g *Generator) Generate(terms LoanTerms) (*Schedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	terms.Principal = mathutil.RoundCurrency(terms.Principal)
	nPayments := terms.Payments()
	zeroRate := terms.AnnualInterestRate.IsZero()
	payment := MonthlyPayment(terms)
	exact := exactCumulativePrincipal(terms)

	rows := make([]PaymentRow, nPayments)
	previousPrincipal := decimal.Zero
	cumulativeInterest := decimal.Zero
	cumulativeTotal := decimal.Zero

	for month := 1; month <= nPayments; month++ {
		var cumulativePrincipal decimal.Decimal
		if month == nPayments {
			// Absorb the rounding residue so the loan closes at exactly zero.
			cumulativePrincipal = terms.Principal
		} else {
			cumulativePrincipal = decimal.Min(exact(month), terms.Principal)
			cumulativePrincipal = mathutil.MaxDecimal(cumulativePrincipal, previousPrincipal)
		}

		principalPortion := cumulativePrincipal.Sub(previousPrincipal)
		interestPortion := decimal.Zero
		if !zeroRate {
			interestPortion = mathutil.MaxDecimal(payment.Sub(principalPortion), decimal.Zero)
		}

		cumulativeInterest = cumulativeInterest.Add(interestPortion)
		cumulativeTotal = cumulativeTotal.Add(principalPortion).Add(interestPortion)

		rows[month-1] = PaymentRow{
			Month:               month,
			PaymentAmount:       payment,
			PrincipalPortion:    principalPortion,
			InterestPortion:     interestPortion,
			CumulativeInterest:  cumulativeInterest,
			CumulativePrincipal: cumulativePrincipal,
			CumulativeTotal:     cumulativeTotal,
			RemainingBalance:    terms.Principal.Sub(cumulativePrincipal),
		}
		previousPrincipal = cumulativePrincipal
	}

	g.logger.Debug("generated amortization schedule",
		zap.String("op", "amortization.Generate"),
		zap.String("principal", terms.Principal.StringFixed(constants.CurrencyPlaces)),
		zap.String("annualInterestRate", terms.AnnualInterestRate.String()),
		zap.Int("termYears", terms.TermYears),
		zap.String("payment", payment.StringFixed(constants.CurrencyPlaces)),
		zap.Int("payments", nPayments),
	)

	return &Schedule{Terms: terms, Rows: rows}, nil
}

// MonthlyPayment returns the fixed monthly payment, rounded to cents. The
// terms are assumed to be valid.
func MonthlyPayment(terms LoanTerms) decimal.Decimal {
	principal := mathutil.RoundCurrency(terms.Principal)
	if terms.AnnualInterestRate.IsZero() {
		return mathutil.RoundCurrency(principal.Div(decimal.NewFromInt(int64(terms.Payments()))))
	}
	return mathutil.CurrencyFromFloat(
		CalculateMonthlyPayment(principal.InexactFloat64(), terms.AnnualInterestRate.InexactFloat64(), terms.Payments()))
}

// CalculateMonthlyPayment calculates the unrounded monthly payment using the
// standard annuity formula. The annual rate is a fraction.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	periodicInterestRate := annualInterestRate / constants.MonthsPerYear
	if periodicInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	// 1 - (1+r)^-n, evaluated without cancellation when r is tiny.
	discount := -math.Expm1(-float64(termMonths) * math.Log1p(periodicInterestRate))
	return principal * periodicInterestRate / discount
}

// exactCumulativePrincipal returns a function yielding the cumulative
// principal repaid after a month, rounded to cents from the unrounded
// schedule.
//
// The closed form P * ((1+r)^m - 1) / ((1+r)^n - 1) is evaluated as
// P * (1+r)^(m-n) * expm1(-m*ln(1+r)) / expm1(-n*ln(1+r)), which stays finite
// for any representable rate.
func exactCumulativePrincipal(terms LoanTerms) func(month int) decimal.Decimal {
	nPayments := terms.Payments()
	periodicInterestRate := terms.AnnualInterestRate.InexactFloat64() / constants.MonthsPerYear

	if periodicInterestRate == 0 {
		n := decimal.NewFromInt(int64(nPayments))
		return func(month int) decimal.Decimal {
			return mathutil.RoundCurrency(terms.Principal.Mul(decimal.NewFromInt(int64(month))).Div(n))
		}
	}

	principal := terms.Principal.InexactFloat64()
	growth := math.Log1p(periodicInterestRate)
	n := float64(nPayments)
	total := math.Expm1(-n * growth)

	return func(month int) decimal.Decimal {
		m := float64(month)
		share := math.Exp((m-n)*growth) * math.Expm1(-m*growth) / total
		return mathutil.CurrencyFromFloat(principal * share)
	}
}
