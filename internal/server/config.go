package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/loan-gauge/internal/cache"
	"github.com/iwvelando/loan-gauge/internal/config"
	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/iwvelando/loan-gauge/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address        string               `yaml:"address"`
	MaxRequestSize string               `yaml:"maxRequestSize"`
	MaxTermYears   int                  `yaml:"maxTermYears"`
	AllowedOrigins []string             `yaml:"allowedOrigins"`
	Loan           config.LoanDefaults  `yaml:"loan"`
	Cache          cache.Config         `yaml:"cache"`
	Logging        config.LoggingConfig `yaml:"logging"`

	requestSizeBytes int64
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Address:        constants.DefaultServerAddress,
		MaxRequestSize: fmt.Sprintf("%d", constants.DefaultMaxRequestSizeBytes),
		MaxTermYears:   constants.DefaultMaxTermYears,
		Loan: config.LoanDefaults{
			Principal:          constants.DefaultPrincipal,
			AnnualInterestRate: constants.DefaultAnnualInterestRate,
			TermYears:          constants.DefaultTermYears,
		},
		Cache: cache.Config{
			Backend:    constants.CacheBackendNone,
			TTLSeconds: constants.DefaultCacheTTLSeconds,
			MaxEntries: constants.DefaultMemoryCacheEntries,
		},
		requestSizeBytes: constants.DefaultMaxRequestSizeBytes,
	}
}

// RequestSizeBytes returns the configured request body limit in bytes.
func (c *Config) RequestSizeBytes() int64 {
	return c.requestSizeBytes
}

// SetRequestSizeBytes overrides the configured request body limit.
func (c *Config) SetRequestSizeBytes(size int64) {
	if size > 0 {
		c.requestSizeBytes = size
		c.MaxRequestSize = fmt.Sprintf("%d", size)
	}
}

// Options converts the configuration into handler options. The default loan
// must be valid and within the term cap.
func (c *Config) Options(version string, store cache.Cache) (Options, error) {
	defaults, err := c.Loan.Terms()
	if err != nil {
		return Options{}, fmt.Errorf("loan: %w", err)
	}
	if defaults.TermYears > c.MaxTermYears {
		return Options{}, fmt.Errorf("loan: default term of %d years exceeds maxTermYears %d", defaults.TermYears, c.MaxTermYears)
	}

	return Options{
		MaxRequestSize: c.requestSizeBytes,
		MaxTermYears:   c.MaxTermYears,
		Version:        version,
		AllowedOrigins: c.AllowedOrigins,
		Defaults:       defaults,
		Cache:          store,
	}, nil
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.MaxTermYears <= 0 {
		c.MaxTermYears = constants.DefaultMaxTermYears
	}
	if c.Loan == (config.LoanDefaults{}) {
		c.Loan = defaultConfig().Loan
	}
	if _, err := amortization.NewLoanTerms(c.Loan.Principal, c.Loan.AnnualInterestRate, c.Loan.TermYears); err != nil {
		return fmt.Errorf("loan: %w", err)
	}

	sizeStr := strings.TrimSpace(c.MaxRequestSize)
	if sizeStr == "" {
		c.requestSizeBytes = constants.DefaultMaxRequestSizeBytes
		c.MaxRequestSize = fmt.Sprintf("%d", constants.DefaultMaxRequestSizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxRequestSizeBytes
	}
	c.requestSizeBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxRequestSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
