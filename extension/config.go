package extension

import (
	"time"

	token "github.com/xraph/token"
)

// Journal driver names.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Config holds the token extension configuration.
// Fields can be set programmatically via Option functions, loaded from
// YAML configuration files (under "extensions.token" or "token" keys), or
// read from TOKEN_* environment variables when no file config exists.
type Config struct {
	// Name is the human-readable name of the unit of account.
	Name string `env:"TOKEN_NAME" json:"name" mapstructure:"name" yaml:"name"`

	// Symbol is the ticker symbol.
	Symbol string `env:"TOKEN_SYMBOL" json:"symbol" mapstructure:"symbol" yaml:"symbol"`

	// Decimals is the display precision (default: 18). Nil means unset so
	// that an explicit 0 survives merging.
	Decimals *uint8 `env:"TOKEN_DECIMALS" json:"decimals" mapstructure:"decimals" yaml:"decimals"`

	// Administrator is the account ID of the initial administrator.
	Administrator string `env:"TOKEN_ADMINISTRATOR" json:"administrator" mapstructure:"administrator" yaml:"administrator"`

	// StrictPause also gates mint and approvals while paused.
	StrictPause bool `env:"TOKEN_STRICT_PAUSE" json:"strict_pause" mapstructure:"strict_pause" yaml:"strict_pause"`

	// DisableJournal runs the ledger without persisting its events.
	DisableJournal bool `env:"TOKEN_DISABLE_JOURNAL" json:"disable_journal" mapstructure:"disable_journal" yaml:"disable_journal"`

	// JournalDriver selects the journal backend when a grove database is
	// supplied: postgres, sqlite or mongo (default: memory).
	JournalDriver string `env:"TOKEN_JOURNAL_DRIVER" json:"journal_driver" mapstructure:"journal_driver" yaml:"journal_driver"`

	// JournalBatchSize is the number of events written per journal append
	// (default: 100).
	JournalBatchSize int `env:"TOKEN_JOURNAL_BATCH_SIZE" json:"journal_batch_size" mapstructure:"journal_batch_size" yaml:"journal_batch_size"`

	// JournalFlushInterval is how often unflushed events are written even
	// if the batch is not full (default: 5s).
	JournalFlushInterval time.Duration `env:"TOKEN_JOURNAL_FLUSH_INTERVAL" json:"journal_flush_interval" mapstructure:"journal_flush_interval" yaml:"journal_flush_interval"`

	// PluginTimeout bounds each plugin hook (default: 5s).
	PluginTimeout time.Duration `env:"TOKEN_PLUGIN_TIMEOUT" json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// RequireConfig requires config to be present in YAML files or the
	// environment. If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	d := token.DefaultConfig()
	return Config{
		Decimals:             &d.Decimals,
		JournalDriver:        DriverMemory,
		JournalBatchSize:     d.JournalBatchSize,
		JournalFlushInterval: d.JournalFlushInterval,
		PluginTimeout:        d.PluginTimeout,
	}
}

// LedgerConfig converts the extension config into the ledger's config.
func (c Config) LedgerConfig() token.Config {
	return token.Config{
		Name:                 c.Name,
		Symbol:               c.Symbol,
		Decimals:             c.decimals(),
		Administrator:        c.Administrator,
		StrictPause:          c.StrictPause,
		JournalBatchSize:     c.JournalBatchSize,
		JournalFlushInterval: c.JournalFlushInterval,
		PluginTimeout:        c.PluginTimeout,
	}
}

// decimals returns the configured precision or the ledger default.
func (c Config) decimals() uint8 {
	if c.Decimals == nil {
		return token.DefaultConfig().Decimals
	}
	return *c.Decimals
}
