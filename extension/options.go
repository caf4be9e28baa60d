package extension

import (
	"time"

	"github.com/xraph/grove"

	token "github.com/xraph/token"
	"github.com/xraph/token/plugin"
	"github.com/xraph/token/store"
)

// Option configures the token Forge extension.
type Option func(*Extension)

// WithStore sets the journal store for the ledger.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGroveDB builds the journal store from db using the configured
// JournalDriver (postgres, sqlite or mongo).
func WithGroveDB(db *grove.DB) Option {
	return func(e *Extension) {
		e.groveDB = db
	}
}

// WithLedgerOption passes a token.Option through to the underlying ledger.
func WithLedgerOption(opt token.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, token.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithName sets the name of the unit of account.
func WithName(name string) Option {
	return func(e *Extension) { e.config.Name = name }
}

// WithSymbol sets the ticker symbol.
func WithSymbol(symbol string) Option {
	return func(e *Extension) { e.config.Symbol = symbol }
}

// WithDecimals sets the display precision. Zero is a valid precision.
func WithDecimals(decimals uint8) Option {
	return func(e *Extension) { e.config.Decimals = &decimals }
}

// WithAdministrator sets the initial administrator account ID.
func WithAdministrator(account string) Option {
	return func(e *Extension) { e.config.Administrator = account }
}

// WithStrictPause gates mint and approvals while paused.
func WithStrictPause() Option {
	return func(e *Extension) { e.config.StrictPause = true }
}

// WithDisableJournal runs the ledger without a journal.
func WithDisableJournal() Option {
	return func(e *Extension) { e.config.DisableJournal = true }
}

// WithJournalDriver selects the journal backend built from WithGroveDB.
func WithJournalDriver(driver string) Option {
	return func(e *Extension) { e.config.JournalDriver = driver }
}

// WithRequireConfig requires config to be present in YAML files or the
// environment. If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithJournalBatchSize sets the number of events written per journal append.
func WithJournalBatchSize(size int) Option {
	return func(e *Extension) { e.config.JournalBatchSize = size }
}

// WithJournalFlushInterval sets how frequently unflushed events are written.
func WithJournalFlushInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.JournalFlushInterval = d }
}
