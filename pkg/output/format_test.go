package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleSchedule(t *testing.T) *amortization.Schedule {
	t.Helper()
	schedule, err := amortization.GenerateSchedule(decimal.NewFromInt(1200), decimal.Zero, 1)
	require.NoError(t, err)
	return schedule
}

func TestPrettyFormat(t *testing.T) {
	schedule, err := amortization.GenerateSchedule(decimal.NewFromInt(300000), decimal.RequireFromString("0.045"), 25)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrettyFormat(&buf, schedule, nil))
	out := buf.String()

	assert.Contains(t, out, "--- Amortization schedule for $300,000.00 at 4.500% over 25 years ---")
	assert.Contains(t, out, "Monthly payment $1,667.50")
	assert.Contains(t, out, "Remaining Balance")
	assert.Contains(t, out, "$1,125.00")
	assert.NotContains(t, out, "Date")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// title, summary, blank, header, one line per payment
	assert.Len(t, lines, 4+300)
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "$0.00"))
}

func TestPrettyFormatWithDates(t *testing.T) {
	schedule := sampleSchedule(t)
	dates := []string{"2025-01", "2025-02"}

	var buf bytes.Buffer
	require.NoError(t, PrettyFormat(&buf, schedule, dates))

	out := buf.String()
	assert.Contains(t, out, "Date")
	assert.Contains(t, out, "2025-02")
}

func TestCsvFormat(t *testing.T) {
	schedule := sampleSchedule(t)

	var buf bytes.Buffer
	require.NoError(t, CsvFormat(&buf, schedule, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13)

	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{"1", "100.00", "100.00", "0.00", "0.00", "100.00", "100.00", "1100.00"}, records[1])
	assert.Equal(t, "0.00", records[12][7])
}

func TestCsvFormatWithDates(t *testing.T) {
	schedule := sampleSchedule(t)
	dates := []string{"2025-01", "2025-02", "2025-03", "2025-04", "2025-05", "2025-06",
		"2025-07", "2025-08", "2025-09", "2025-10", "2025-11", "2025-12"}

	var buf bytes.Buffer
	require.NoError(t, CsvFormat(&buf, schedule, dates))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Date", records[0][1])
	assert.Equal(t, "2025-12", records[12][1])
	assert.Len(t, records[0], 9)
}

func TestWriteJSON(t *testing.T) {
	schedule := sampleSchedule(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", schedule, nil))

	var doc struct {
		Terms   map[string]interface{}   `json:"terms"`
		Summary map[string]interface{}   `json:"summary"`
		Rows    []map[string]interface{} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Len(t, doc.Rows, 12)
	assert.Equal(t, float64(1200), doc.Terms["principal"])
	assert.Equal(t, float64(12), doc.Summary["payments"])
	assert.Equal(t, float64(100), doc.Rows[0]["paymentAmount"])
	assert.NotContains(t, doc.Rows[0], "date")
	assert.Contains(t, buf.String(), `"paymentAmount": 100.00`)
}

func TestWriteYAML(t *testing.T) {
	schedule := sampleSchedule(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "yaml", schedule, []string{"2025-01"}))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	rows, ok := doc["rows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 12)

	first, ok := rows[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2025-01", first["date"])
	assert.Equal(t, 1, first["month"])
	assert.Equal(t, float64(100), first["paymentAmount"])
	assert.Equal(t, float64(1100), first["remainingBalance"])

	terms, ok := doc["terms"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1200), terms["principal"])

	assert.Contains(t, buf.String(), "paymentAmount: 100.00\n")
	assert.Contains(t, buf.String(), "principal: 1200.00\n")
	assert.NotContains(t, buf.String(), `"100.00"`)

	var rendered Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rendered))
	assert.Equal(t, NewDocument(schedule, []string{"2025-01"}), rendered)
	assert.Equal(t, 0, terms["annualInterestRate"])
}

func TestWriteUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "xml", sampleSchedule(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestAmount(t *testing.T) {
	assert.Equal(t, json.Number("1667.50"), Amount(decimal.RequireFromString("1667.5")))
	assert.Equal(t, json.Number("0.00"), Amount(decimal.Zero))
}
