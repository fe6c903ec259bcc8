// Package chart renders amortization schedules as standalone ECharts pages.
package chart

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/shopspring/decimal"
)

// StackedAreaTitle is the title of the principal vs interest chart.
const StackedAreaTitle = "Mortgage Payments (Principal vs Interest)"

type column struct {
	title string
	value func(amortization.PaymentRow) decimal.Decimal
}

var columns = map[string]column{
	"paymentAmount":       {"Monthly Payment", func(r amortization.PaymentRow) decimal.Decimal { return r.PaymentAmount }},
	"principalPortion":    {"Monthly Principal", func(r amortization.PaymentRow) decimal.Decimal { return r.PrincipalPortion }},
	"interestPortion":     {"Monthly Interest", func(r amortization.PaymentRow) decimal.Decimal { return r.InterestPortion }},
	"cumulativeInterest":  {"Interest Paid", func(r amortization.PaymentRow) decimal.Decimal { return r.CumulativeInterest }},
	"cumulativePrincipal": {"Principal Paid", func(r amortization.PaymentRow) decimal.Decimal { return r.CumulativePrincipal }},
	"cumulativeTotal":     {"Total Paid", func(r amortization.PaymentRow) decimal.Decimal { return r.CumulativeTotal }},
	"remainingBalance":    {"Remaining Balance", func(r amortization.PaymentRow) decimal.Decimal { return r.RemainingBalance }},
}

// Columns returns the names accepted by Column, sorted.
func Columns() []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StackedArea plots cumulative principal and cumulative interest paid as
// stacked areas against month.
func StackedArea(schedule *amortization.Schedule, xLabels []string) *charts.Line {
	line := newLine(StackedAreaTitle, subtitle(schedule), "Amount Paid")
	line.SetXAxis(xAxis(schedule, xLabels)).
		AddSeries(columns["cumulativePrincipal"].title, series(schedule, columns["cumulativePrincipal"].value),
			charts.WithLineChartOpts(opts.LineChart{Stack: "one"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{})).
		AddSeries(columns["cumulativeInterest"].title, series(schedule, columns["cumulativeInterest"].value),
			charts.WithLineChartOpts(opts.LineChart{Stack: "one"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{}))
	return line
}

// Column plots a single schedule column as an area chart.
func Column(schedule *amortization.Schedule, name string, xLabels []string) (*charts.Line, error) {
	col, ok := columns[name]
	if !ok {
		return nil, fmt.Errorf("unknown chart column %q", name)
	}

	line := newLine(col.title, subtitle(schedule), col.title)
	line.SetXAxis(xAxis(schedule, xLabels)).
		AddSeries(col.title, series(schedule, col.value), charts.WithAreaStyleOpts(opts.AreaStyle{}))
	return line, nil
}

// Render writes the chart as a standalone HTML page.
func Render(w io.Writer, line *charts.Line) error {
	return line.Render(w)
}

func newLine(title, sub, yAxis string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "loan-gauge", Width: "100%"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Month"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yAxis}),
	)
	return line
}

func subtitle(schedule *amortization.Schedule) string {
	summary := schedule.Summary()
	return fmt.Sprintf("%s at %s%% over %d years, monthly payment %s",
		schedule.Terms.Principal.StringFixed(2),
		schedule.Terms.AnnualInterestRate.Shift(2).String(),
		schedule.Terms.TermYears,
		summary.MonthlyPayment.StringFixed(2),
	)
}

func xAxis(schedule *amortization.Schedule, labels []string) []string {
	if len(labels) == len(schedule.Rows) {
		return labels
	}
	months := make([]string, len(schedule.Rows))
	for i, row := range schedule.Rows {
		months[i] = fmt.Sprintf("%d", row.Month)
	}
	return months
}

func series(schedule *amortization.Schedule, value func(amortization.PaymentRow) decimal.Decimal) []opts.LineData {
	data := make([]opts.LineData, len(schedule.Rows))
	for i, row := range schedule.Rows {
		data[i] = opts.LineData{Value: value(row).InexactFloat64()}
	}
	return data
}
