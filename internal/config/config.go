// Package config loads all settings from environment variables (with an
// optional .env file) and resolves them into immutable values the core
// receives by reference: the core never reads the environment itself.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/syngenta/meteobe/internal/domain"
)

// Config holds all extractor settings.
type Config struct {
	APIKey string `validate:"required"`

	InputFile string `validate:"required"`
	SheetName string // spreadsheet inputs only
	OutputDir string `validate:"required"`

	IDCol  string `validate:"required"`
	LatCol string `validate:"required"`
	LonCol string `validate:"required"`

	// Either the column or an explicit default is required; there is no
	// silent fallback country.
	CountryCodeCol     string
	CountryCodeDefault string

	DateCols []string `validate:"min=1"`

	StartDateOffset int `validate:"max=0"`
	EndDateOffset   int `validate:"min=0"`

	Precipitation domain.DomainMap
	Temperature   domain.DomainMap
	Wind          domain.DomainMap

	// Optional pre-built query files used instead of built queries.
	WeatherQueryFile string
	SoilQueryFile    string

	RequestTimeout time.Duration

	MetricsAddr string // empty disables the metrics server
	LogLevel    string
	LogFormat   string

	// Warnings collected during load (e.g. offset clamping), logged by the
	// caller once the logger exists.
	Warnings []string
}

// Load reads configuration from the environment, applying defaults where
// unset. A missing required value or a domain map without a DEFAULT entry
// is a fatal configuration error.
func Load() (*Config, error) {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:             os.Getenv("METEOBLUE_API_KEY"),
		InputFile:          os.Getenv("INPUT_FILE"),
		SheetName:          os.Getenv("SHEET_NAME"),
		OutputDir:          envOrDefault("OUTPUT_DIR", "output"),
		IDCol:              os.Getenv("ID_COL"),
		LatCol:             os.Getenv("LATITUDE_COL"),
		LonCol:             os.Getenv("LONGITUDE_COL"),
		CountryCodeCol:     os.Getenv("COUNTRY_CODE_COL"),
		CountryCodeDefault: os.Getenv("COUNTRY_CODE_DEFAULT"),
		DateCols:           splitList(os.Getenv("DATE_COLS")),
		WeatherQueryFile:   os.Getenv("WEATHER_QUERY_FILE"),
		SoilQueryFile:      os.Getenv("SOIL_QUERY_FILE"),
		MetricsAddr:        os.Getenv("METRICS_ADDR"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
	}

	startOffset, err := envInt("START_DATE_OFFSET", 0)
	if err != nil {
		return nil, err
	}
	endOffset, err := envInt("END_DATE_OFFSET", 0)
	if err != nil {
		return nil, err
	}

	start, end, clampedStart, clampedEnd := domain.ClampOffsets(startOffset, endOffset)
	if clampedStart {
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("START_DATE_OFFSET must be <= 0, using 0 instead of %d", startOffset))
	}
	if clampedEnd {
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("END_DATE_OFFSET must be >= 0, using 0 instead of %d", endOffset))
	}
	cfg.StartDateOffset = start
	cfg.EndDateOffset = end

	timeoutStr := envOrDefault("REQUEST_TIMEOUT", "60s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("%w: invalid REQUEST_TIMEOUT %q", domain.ErrConfiguration, timeoutStr)
	}
	cfg.RequestTimeout = timeout

	cfg.Precipitation, err = loadDomainMap("BEST_PRECIPITATION_DOMAINS")
	if err != nil {
		return nil, err
	}
	cfg.Temperature, err = loadDomainMap("BEST_TEMPERATURE_DOMAINS")
	if err != nil {
		return nil, err
	}
	cfg.Wind, err = loadDomainMap("BEST_WIND_DOMAINS")
	if err != nil {
		return nil, err
	}

	if cfg.CountryCodeCol == "" && cfg.CountryCodeDefault == "" {
		return nil, fmt.Errorf("%w: set COUNTRY_CODE_COL or COUNTRY_CODE_DEFAULT", domain.ErrConfiguration)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	return cfg, nil
}

// loadDomainMap parses a reverse mapping "DOMAIN=CC,CC;DOMAIN=CC,..." where
// each domain lists the countries it is best for, and inverts it into a
// country→domain map. One country list must contain DEFAULT.
func loadDomainMap(key string) (domain.DomainMap, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return domain.DomainMap{}, fmt.Errorf("%w: %s is required", domain.ErrConfiguration, key)
	}

	byCountry := make(map[string]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		dom, countries, ok := strings.Cut(entry, "=")
		if !ok {
			return domain.DomainMap{}, fmt.Errorf("%w: %s entry %q is not DOMAIN=CC,CC", domain.ErrConfiguration, key, entry)
		}
		dom = strings.TrimSpace(dom)
		for _, cc := range splitList(countries) {
			byCountry[cc] = dom
		}
	}

	m, err := domain.NewDomainMap(byCountry)
	if err != nil {
		return domain.DomainMap{}, fmt.Errorf("%s: %w", key, err)
	}
	return m, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", domain.ErrConfiguration, key, v)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
