// Package output provides utilities for formatting and displaying amortization schedules.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/iwvelando/loan-gauge/pkg/constants"
	"github.com/iwvelando/loan-gauge/pkg/format"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Column titles, in row order.
var Columns = []string{
	"Month",
	"Monthly Payment",
	"Monthly Principal",
	"Monthly Interest",
	"Interest Paid",
	"Principal Paid",
	"Total Paid",
	"Remaining Balance",
}

// Record is one schedule row with amounts fixed to two decimals.
type Record struct {
	Month               int         `json:"month" yaml:"month"`
	Date                string      `json:"date,omitempty" yaml:"date,omitempty"`
	PaymentAmount       json.Number `json:"paymentAmount" yaml:"paymentAmount"`
	PrincipalPortion    json.Number `json:"principalPortion" yaml:"principalPortion"`
	InterestPortion     json.Number `json:"interestPortion" yaml:"interestPortion"`
	CumulativeInterest  json.Number `json:"cumulativeInterest" yaml:"cumulativeInterest"`
	CumulativePrincipal json.Number `json:"cumulativePrincipal" yaml:"cumulativePrincipal"`
	CumulativeTotal     json.Number `json:"cumulativeTotal" yaml:"cumulativeTotal"`
	RemainingBalance    json.Number `json:"remainingBalance" yaml:"remainingBalance"`
}

// Terms is the loan terms as rendered alongside a schedule.
type Terms struct {
	Principal          json.Number `json:"principal" yaml:"principal"`
	AnnualInterestRate json.Number `json:"annualInterestRate" yaml:"annualInterestRate"`
	TermYears          int         `json:"termYears" yaml:"termYears"`
}

// Summary is the schedule totals with amounts fixed to two decimals.
type Summary struct {
	MonthlyPayment json.Number `json:"monthlyPayment" yaml:"monthlyPayment"`
	TotalPrincipal json.Number `json:"totalPrincipal" yaml:"totalPrincipal"`
	TotalInterest  json.Number `json:"totalInterest" yaml:"totalInterest"`
	TotalPaid      json.Number `json:"totalPaid" yaml:"totalPaid"`
	Payments       int         `json:"payments" yaml:"payments"`
}

// Document is the JSON and YAML shape of a schedule.
type Document struct {
	Terms   Terms    `json:"terms" yaml:"terms"`
	Summary Summary  `json:"summary" yaml:"summary"`
	Rows    []Record `json:"rows" yaml:"rows"`
}

// MarshalYAML emits amounts as YAML numbers, matching the JSON rendering.
func (d Document) MarshalYAML() (interface{}, error) {
	type document Document
	var node yaml.Node
	if err := node.Encode(document(d)); err != nil {
		return nil, err
	}
	unquoteNumbers(&node)
	return &node, nil
}

// unquoteNumbers drops the quoting and string tag from decimal scalars so
// they resolve as numbers.
func unquoteNumbers(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" && node.Style == yaml.DoubleQuotedStyle {
		if _, err := decimal.NewFromString(node.Value); err == nil {
			node.Tag = ""
			node.Style = 0
		}
	}
	for _, child := range node.Content {
		unquoteNumbers(child)
	}
}

// Amount renders a monetary value with exactly two decimals.
func Amount(value decimal.Decimal) json.Number {
	return json.Number(value.StringFixedBank(constants.CurrencyPlaces))
}

// NewDocument converts a schedule into its rendered form. dates, when
// non-empty, must have one label per row.
func NewDocument(schedule *amortization.Schedule, dates []string) Document {
	summary := schedule.Summary()
	return Document{
		Terms: Terms{
			Principal:          Amount(schedule.Terms.Principal),
			AnnualInterestRate: json.Number(schedule.Terms.AnnualInterestRate.String()),
			TermYears:          schedule.Terms.TermYears,
		},
		Summary: Summary{
			MonthlyPayment: Amount(summary.MonthlyPayment),
			TotalPrincipal: Amount(summary.TotalPrincipal),
			TotalInterest:  Amount(summary.TotalInterest),
			TotalPaid:      Amount(summary.TotalPaid),
			Payments:       summary.Payments,
		},
		Rows: Records(schedule, dates),
	}
}

// Records converts the schedule rows into rendered records.
func Records(schedule *amortization.Schedule, dates []string) []Record {
	records := make([]Record, len(schedule.Rows))
	for i, row := range schedule.Rows {
		records[i] = Record{
			Month:               row.Month,
			PaymentAmount:       Amount(row.PaymentAmount),
			PrincipalPortion:    Amount(row.PrincipalPortion),
			InterestPortion:     Amount(row.InterestPortion),
			CumulativeInterest:  Amount(row.CumulativeInterest),
			CumulativePrincipal: Amount(row.CumulativePrincipal),
			CumulativeTotal:     Amount(row.CumulativeTotal),
			RemainingBalance:    Amount(row.RemainingBalance),
		}
		if i < len(dates) {
			records[i].Date = dates[i]
		}
	}
	return records
}

// Write renders the schedule in the given output format.
func Write(w io.Writer, outputFormat string, schedule *amortization.Schedule, dates []string) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, schedule, dates)
	case constants.OutputFormatCSV:
		return CsvFormat(w, schedule, dates)
	case constants.OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(NewDocument(schedule, dates))
	case constants.OutputFormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(NewDocument(schedule, dates)); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, schedule *amortization.Schedule, dates []string) error {
	p := message.NewPrinter(language.English)
	summary := schedule.Summary()

	if _, err := p.Fprintf(w, "--- Amortization schedule for $%.2f at %.3f%% over %d years ---\n",
		schedule.Terms.Principal.InexactFloat64(),
		schedule.Terms.AnnualInterestRate.InexactFloat64()*constants.PercentageMultiplier,
		schedule.Terms.TermYears); err != nil {
		return err
	}
	if _, err := p.Fprintf(w, "Monthly payment $%.2f | Total interest $%.2f | Total paid $%.2f\n\n",
		summary.MonthlyPayment.InexactFloat64(),
		summary.TotalInterest.InexactFloat64(),
		summary.TotalPaid.InexactFloat64()); err != nil {
		return err
	}

	header := fmt.Sprintf("%5s", "Month")
	if len(dates) > 0 {
		header += fmt.Sprintf(" | %-7s", "Date")
	}
	for _, title := range Columns[1:] {
		header += fmt.Sprintf(" | %17s", title)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for i, row := range schedule.Rows {
		line := fmt.Sprintf("%5d", row.Month)
		if len(dates) > 0 {
			label := ""
			if i < len(dates) {
				label = dates[i]
			}
			line += fmt.Sprintf(" | %-7s", label)
		}
		for _, amount := range amounts(row) {
			line += fmt.Sprintf(" | %17s", format.Currency(amount))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, schedule *amortization.Schedule, dates []string) error {
	writer := csv.NewWriter(w)

	header := append([]string{}, Columns[0])
	if len(dates) > 0 {
		header = append(header, "Date")
	}
	header = append(header, Columns[1:]...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, row := range schedule.Rows {
		record := []string{strconv.Itoa(row.Month)}
		if len(dates) > 0 {
			label := ""
			if i < len(dates) {
				label = dates[i]
			}
			record = append(record, label)
		}
		for _, amount := range amounts(row) {
			record = append(record, amount.StringFixedBank(constants.CurrencyPlaces))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func amounts(row amortization.PaymentRow) []decimal.Decimal {
	return []decimal.Decimal{
		row.PaymentAmount,
		row.PrincipalPortion,
		row.InterestPortion,
		row.CumulativeInterest,
		row.CumulativePrincipal,
		row.CumulativeTotal,
		row.RemainingBalance,
	}
}
