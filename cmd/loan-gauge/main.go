package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/iwvelando/loan-gauge/internal/config"
	"github.com/iwvelando/loan-gauge/internal/logging"
	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/iwvelando/loan-gauge/pkg/constants"
	"github.com/iwvelando/loan-gauge/pkg/datetime"
	"github.com/iwvelando/loan-gauge/pkg/output"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var version = "dev"

type options struct {
	configPath   string
	principal    float64
	rate         float64
	years        float64
	start        string
	outputFormat string
	logLevel     string
	showVersion  bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flagSet, opts := newFlagSet(stderr)
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if opts.showVersion {
		_, err := fmt.Fprintf(stdout, "loan-gauge %s\n", version)
		return err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		err := fmt.Errorf("unexpected argument: %s", extra[0])
		fmt.Fprintln(stderr, err)
		return err
	}

	configPath, err := resolveConfigPath(opts.configPath, flagSet.Changed("config"))
	if err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", opts.configPath, err)
		return err
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", configPath, err)
		return err
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.NewLogger(conf.Logging, opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI flags take precedence over the config file
	applyOverrides(flagSet, opts, conf)

	if err := conf.Validate(); err != nil {
		logger.Error("invalid loan configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}

	terms, err := conf.Loan.Terms()
	if err != nil {
		logger.Error("invalid loan terms",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}

	schedule, err := amortization.NewGenerator(logger).Generate(terms)
	if err != nil {
		logger.Error("failed to generate amortization schedule",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}

	dates, err := datetime.MonthLabels(conf.Loan.StartMonth, len(schedule.Rows))
	if err != nil {
		logger.Error("failed to label payment months",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}

	if err := output.Write(stdout, conf.Output.Format, schedule, dates); err != nil {
		logger.Error("failed to write schedule",
			zap.String("op", "main"),
			zap.String("format", conf.Output.Format),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func newFlagSet(stderr io.Writer) (*pflag.FlagSet, *options) {
	opts := &options{}
	flagSet := pflag.NewFlagSet("loan-gauge", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.configPath, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	flagSet.Float64VarP(&opts.principal, "principal", "p", constants.DefaultPrincipal, "loan amount")
	flagSet.Float64VarP(&opts.rate, "rate", "r", constants.DefaultAnnualInterestRate, "annual interest rate as a fraction, e.g. 0.045")
	flagSet.Float64VarP(&opts.years, "years", "y", constants.DefaultTermYears, "loan term in whole years")
	flagSet.StringVar(&opts.start, "start", "", "month of the first payment (YYYY-MM); adds a date column")
	flagSet.StringVarP(&opts.outputFormat, "output-format", "o", "", "type of output override: pretty, csv, json, yaml")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print the version and exit")
	return flagSet, opts
}

// resolveConfigPath returns the config file to load. The default file is
// optional; an explicitly requested one must exist.
func resolveConfigPath(path string, explicit bool) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return "", nil
		}
		return "", err
	}
	return path, nil
}

func applyOverrides(flagSet *pflag.FlagSet, opts *options, conf *config.Configuration) {
	if flagSet.Changed("principal") {
		conf.Loan.Principal = opts.principal
	}
	if flagSet.Changed("rate") {
		conf.Loan.AnnualInterestRate = opts.rate
	}
	if flagSet.Changed("years") {
		conf.Loan.TermYears = opts.years
	}
	if flagSet.Changed("start") {
		conf.Loan.StartMonth = opts.start
	}
	if opts.outputFormat != "" {
		conf.Output.Format = opts.outputFormat
	}
}
