package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(append([]string{"--log-level", "error"}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunDefaultLoan(t *testing.T) {
	stdout, _, err := runCLI(t)
	require.NoError(t, err)

	assert.Contains(t, stdout, "--- Amortization schedule for $300,000.00 at 4.500% over 25 years ---")
	assert.Contains(t, stdout, "Monthly payment $1,667.50")
}

func TestRunFlagOverridesCSV(t *testing.T) {
	stdout, _, err := runCLI(t, "--principal", "1200", "--rate", "0", "--years", "1", "-o", "csv", "--start", "2025-01")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewBufferString(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13)
	assert.Equal(t, []string{"1", "2025-01", "100.00", "100.00", "0.00", "0.00", "100.00", "100.00", "1100.00"}, records[1])
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`loan:
  principal: 175000
  annualInterestRate: 0.045
  termYears: 30
  startMonth: "2025-01"
output:
  format: json
`), 0600))

	stdout, _, err := runCLI(t, "--config", path)
	require.NoError(t, err)

	var doc struct {
		Summary struct {
			MonthlyPayment json.Number `json:"monthlyPayment"`
			Payments       int         `json:"payments"`
		} `json:"summary"`
		Rows []struct {
			Date string `json:"date"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, json.Number("886.70"), doc.Summary.MonthlyPayment)
	assert.Equal(t, 360, doc.Summary.Payments)
	assert.Equal(t, "2054-12", doc.Rows[359].Date)
}

func TestRunEnvironmentOverride(t *testing.T) {
	t.Setenv("LOANGAUGE_LOAN_TERMYEARS", "1")
	t.Setenv("LOANGAUGE_OUTPUT_FORMAT", "csv")

	stdout, _, err := runCLI(t)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewBufferString(stdout)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 13)
}

func TestRunInvalidTerms(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"zero principal", []string{"--principal", "0"}, amortization.FieldPrincipal},
		{"negative rate", []string{"--rate", "-0.01"}, amortization.FieldAnnualInterestRate},
		{"fractional years", []string{"--years", "2.5"}, amortization.FieldTermYears},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Empty(t, stdout)

			var termsErr *amortization.InvalidLoanTermsError
			require.ErrorAs(t, err, &termsErr)
			assert.Equal(t, tt.field, termsErr.Field)
		})
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	_, _, err := runCLI(t, "--output-format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")

	_, _, err = runCLI(t, "--start", "January")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM")

	_, stderr, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, stderr, "failed to load configuration")

	_, _, err = runCLI(t, "--principal", "lots")
	require.Error(t, err)

	_, _, err = runCLI(t, "extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected argument")
}

func TestRunVersionAndHelp(t *testing.T) {
	stdout, _, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "loan-gauge dev\n", stdout)

	_, stderr, err := runCLI(t, "--help")
	assert.ErrorIs(t, err, pflag.ErrHelp)
	assert.Contains(t, stderr, "--principal")
}
