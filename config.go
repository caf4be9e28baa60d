package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/xraph/token/id"
)

// Config describes a ledger for hosts that build it from configuration
// rather than code. Every field can be set from a TOKEN_* environment
// variable.
type Config struct {
	// Name is the human-readable name of the unit of account.
	Name string `env:"TOKEN_NAME" json:"name" mapstructure:"name" yaml:"name"`

	// Symbol is the ticker symbol.
	Symbol string `env:"TOKEN_SYMBOL" json:"symbol" mapstructure:"symbol" yaml:"symbol"`

	// Decimals is the display precision (default: 18).
	Decimals uint8 `env:"TOKEN_DECIMALS" envDefault:"18" json:"decimals" mapstructure:"decimals" yaml:"decimals"`

	// Administrator is the account ID of the initial administrator.
	Administrator string `env:"TOKEN_ADMINISTRATOR" json:"administrator" mapstructure:"administrator" yaml:"administrator"`

	// StrictPause also gates mint and approvals while paused.
	StrictPause bool `env:"TOKEN_STRICT_PAUSE" json:"strict_pause" mapstructure:"strict_pause" yaml:"strict_pause"`

	// JournalBatchSize is the number of events written per journal append
	// (default: 100).
	JournalBatchSize int `env:"TOKEN_JOURNAL_BATCH_SIZE" envDefault:"100" json:"journal_batch_size" mapstructure:"journal_batch_size" yaml:"journal_batch_size"`

	// JournalFlushInterval is how often unflushed events are written even if
	// the batch is not full (default: 5s).
	JournalFlushInterval time.Duration `env:"TOKEN_JOURNAL_FLUSH_INTERVAL" envDefault:"5s" json:"journal_flush_interval" mapstructure:"journal_flush_interval" yaml:"journal_flush_interval"`

	// PluginTimeout bounds each plugin hook (default: 5s).
	PluginTimeout time.Duration `env:"TOKEN_PLUGIN_TIMEOUT" envDefault:"5s" json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Decimals:             18,
		JournalBatchSize:     100,
		JournalFlushInterval: 5 * time.Second,
		PluginTimeout:        5 * time.Second,
	}
}

// LoadConfigFromEnv reads a Config from TOKEN_* environment variables.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("token: parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the config can build a ledger.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Symbol) == "" {
		return ValidationError{Field: "symbol", Message: "must not be empty"}
	}
	if c.Administrator == "" {
		return ValidationError{Field: "administrator", Message: "must not be empty"}
	}
	if _, err := id.ParseAccountID(c.Administrator); err != nil {
		return ValidationError{Field: "administrator", Message: err.Error()}
	}
	if c.JournalBatchSize < 0 {
		return ValidationError{Field: "journal_batch_size", Message: "must not be negative"}
	}
	if c.JournalFlushInterval < 0 {
		return ValidationError{Field: "journal_flush_interval", Message: "must not be negative"}
	}
	return nil
}

// Options converts the config into ledger options.
func (c Config) Options() []Option {
	opts := []Option{
		WithDecimals(c.Decimals),
		WithJournalConfig(c.JournalBatchSize, c.JournalFlushInterval),
	}
	if c.StrictPause {
		opts = append(opts, WithStrictPause())
	}
	if c.PluginTimeout > 0 {
		opts = append(opts, WithPluginTimeout(c.PluginTimeout))
	}
	return opts
}

// NewFromConfig validates cfg and builds a ledger from it. Extra options are
// applied after the config-derived ones.
func NewFromConfig(cfg Config, opts ...Option) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	admin, err := id.ParseAccountID(cfg.Administrator)
	if err != nil {
		return nil, err
	}
	return New(admin, cfg.Name, cfg.Symbol, append(cfg.Options(), opts...)...)
}
