// Package config loads the command line tool settings from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/longlodw/tabular"
)

// Config holds all settings of the tool.
type Config struct {
	Logging LoggingConfig
	Csv     CsvConfig
	Store   StoreConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// SeqURL is the address of a Seq server that also receives the logs (optional)
	SeqURL string `env:"LOG_SEQ_URL"`
}

// CsvConfig holds the default directives for reading and writing CSV files.
type CsvConfig struct {
	// Delimiter is a single character, or "tab" (default: ,)
	Delimiter string `env:"CSV_DELIMITER" default:","`

	Quote string `env:"CSV_QUOTE" default:"\""`

	// Encoding is an IANA character set name (default: UTF-8)
	Encoding string `env:"CSV_ENCODING" default:"UTF-8"`

	Header bool `env:"CSV_HEADER" default:"true"`

	// MaxRows limits how many records are read, 0 reads them all
	MaxRows int `env:"CSV_MAX_ROWS" default:"0"`
}

// StoreConfig holds table store settings.
type StoreConfig struct {
	// Codec encodes stored rows: msgpack, json or gob (default: msgpack)
	Codec string `env:"TABULAR_CODEC" default:"msgpack"`

	// OpenTimeout bounds the wait for the file lock (default: 1s)
	OpenTimeout time.Duration `env:"TABULAR_OPEN_TIMEOUT" default:"1s"`
}

func parseRune(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "tab", `\t`:
		return '\t', nil
	case "space":
		return ' ', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("%q is not a single character", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}

// Directives returns fresh csv directives with the configured defaults.
func (c *CsvConfig) Directives() (*tabular.Csv, error) {
	delim, err := parseRune(c.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("CSV_DELIMITER: %w", err)
	}
	quote, err := parseRune(c.Quote)
	if err != nil {
		return nil, fmt.Errorf("CSV_QUOTE: %w", err)
	}
	return tabular.NewCsv().
		WithHeader(c.Header).
		WithDelimiter(delim).
		WithQuote(quote).
		WithEncoding(c.Encoding).
		WithMaxRows(c.MaxRows), nil
}

// MarshalUnmarshaler returns the configured store codec.
func (c *StoreConfig) MarshalUnmarshaler() (tabular.MarshalUnmarshaler, error) {
	maUn, ok := tabular.MaUnByName(strings.ToLower(c.Codec))
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", c.Codec)
	}
	return maUn, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	delim, derr := parseRune(c.Csv.Delimiter)
	if derr != nil {
		errs = append(errs, fmt.Sprintf("CSV_DELIMITER: %v", derr))
	}
	quote, qerr := parseRune(c.Csv.Quote)
	if qerr != nil {
		errs = append(errs, fmt.Sprintf("CSV_QUOTE: %v", qerr))
	}
	if derr == nil && qerr == nil && delim == quote {
		errs = append(errs, "CSV_DELIMITER and CSV_QUOTE must differ")
	}
	if c.Csv.MaxRows < 0 {
		errs = append(errs, "CSV_MAX_ROWS must be non-negative")
	}

	if _, err := c.Store.MarshalUnmarshaler(); err != nil {
		errs = append(errs, fmt.Sprintf("TABULAR_CODEC (%q) must be one of: msgpack, json, gob", c.Store.Codec))
	}
	if c.Store.OpenTimeout < 0 {
		errs = append(errs, "TABULAR_OPEN_TIMEOUT must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Logging: {Level: %q, Format: %q, Seq: %v}, Csv: {Delimiter: %q, Quote: %q, Encoding: %q, Header: %v}, Store: {Codec: %q}}",
		c.Logging.Level, c.Logging.Format, c.Logging.SeqURL != "",
		c.Csv.Delimiter, c.Csv.Quote, c.Csv.Encoding, c.Csv.Header,
		c.Store.Codec)
}
