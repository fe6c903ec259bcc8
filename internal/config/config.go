// Package config defines the loan-gauge configuration and loads it from YAML
// with environment variable overrides.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/iwvelando/loan-gauge/pkg/constants"
	"github.com/iwvelando/loan-gauge/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-gauge.
type Configuration struct {
	Loan    LoanDefaults  `mapstructure:"loan" yaml:"loan"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv, json, yaml
}

// LoanDefaults holds the loan used when the caller does not supply terms.
// TermYears is a float so fractional years in a config file are reported as
// invalid terms rather than silently truncated.
type LoanDefaults struct {
	Principal          float64 `mapstructure:"principal" yaml:"principal"`
	AnnualInterestRate float64 `mapstructure:"annualInterestRate" yaml:"annualInterestRate"`
	TermYears          float64 `mapstructure:"termYears" yaml:"termYears"`
	StartMonth         string  `mapstructure:"startMonth" yaml:"startMonth,omitempty"`
}

// Terms converts the defaults into validated loan terms.
func (l LoanDefaults) Terms() (amortization.LoanTerms, error) {
	return amortization.NewLoanTerms(l.Principal, l.AnnualInterestRate, l.TermYears)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path loads defaults and environment
// overrides only.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	return unmarshal(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")

	v.SetDefault("loan.principal", constants.DefaultPrincipal)
	v.SetDefault("loan.annualInterestRate", constants.DefaultAnnualInterestRate)
	v.SetDefault("loan.termYears", constants.DefaultTermYears)
	v.SetDefault("loan.startMonth", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// Validate checks the loan defaults, start month and output format.
func (c *Configuration) Validate() error {
	if _, err := c.Loan.Terms(); err != nil {
		return fmt.Errorf("loan: %w", err)
	}
	if err := validation.ValidateStartMonth(c.Loan.StartMonth); err != nil {
		return fmt.Errorf("loan.startMonth: %w", err)
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	return nil
}
