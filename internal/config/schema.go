package config

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jackzampolin/worknorm/internal/correct"
	"github.com/jackzampolin/worknorm/internal/report"
)

// ErrInvalidConfig is returned when configuration values fail validation.
var ErrInvalidConfig = errors.New("invalid config")

// fieldName restricts record field names to plain JSON keys.
var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Config holds worknorm configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Dataset     string       `mapstructure:"dataset" yaml:"dataset"`           // Dataset path, overwritten in place
	Fields      []string     `mapstructure:"fields" yaml:"fields"`             // Array fields to correct
	IDField     string       `mapstructure:"id_field" yaml:"id_field"`         // Record identifier in change reports
	TopN        int          `mapstructure:"top_n" yaml:"top_n"`               // Length of each frequency tally
	AtomicWrite bool         `mapstructure:"atomic_write" yaml:"atomic_write"` // Write via temp file + rename
	Fix         FixCfg       `mapstructure:"fix" yaml:"fix"`
	Normalize   NormalizeCfg `mapstructure:"normalize" yaml:"normalize"`
}

// FixCfg configures the exact-match pass.
type FixCfg struct {
	TablesFile string `mapstructure:"tables_file" yaml:"tables_file"` // JSON table; empty uses the built-in one
}

// NormalizeCfg configures the normalized-match pass.
type NormalizeCfg struct {
	TablesFile  string `mapstructure:"tables_file" yaml:"tables_file"`   // JSON table; empty uses the built-in one
	FoldUnicode bool   `mapstructure:"fold_unicode" yaml:"fold_unicode"` // NFKC-fold before lowercasing
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Dataset:     "data/works.json",
		Fields:      append([]string(nil), correct.DefaultFields...),
		IDField:     "id",
		TopN:        report.DefaultTopN,
		AtomicWrite: true,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Dataset, validation.Required),
		validation.Field(&c.Fields,
			validation.Required,
			validation.Each(validation.Required, validation.Match(fieldName)),
		),
		validation.Field(&c.IDField, validation.Match(fieldName)),
		validation.Field(&c.TopN, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// TablesFile returns the configured table file for policy, or "".
func (c *Config) TablesFile(policy correct.Policy) string {
	if policy == correct.PolicyNormalized {
		return c.Normalize.TablesFile
	}
	return c.Fix.TablesFile
}

// Table returns the correction table for policy: the configured file when
// set, otherwise the built-in table.
func (c *Config) Table(policy correct.Policy) (correct.Table, error) {
	path := c.TablesFile(policy)
	if path == "" {
		return correct.DefaultTable(policy), nil
	}
	return correct.LoadTableFile(path, policy, c.foldUnicode(policy))
}

// ApplierOptions assembles the options for a pass under policy.
func (c *Config) ApplierOptions(policy correct.Policy) (correct.Options, error) {
	table, err := c.Table(policy)
	if err != nil {
		return correct.Options{}, err
	}
	return correct.Options{
		Policy:      policy,
		Table:       table,
		Fields:      c.Fields,
		FoldUnicode: c.foldUnicode(policy),
	}, nil
}

func (c *Config) foldUnicode(policy correct.Policy) bool {
	return policy == correct.PolicyNormalized && c.Normalize.FoldUnicode
}
