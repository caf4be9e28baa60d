package token

import (
	"log/slog"
	"time"

	"github.com/xraph/token/plugin"
	"github.com/xraph/token/store"
)

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger == nil {
			return
		}
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds how long each plugin hook may run.
func WithPluginTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		l.plugins.WithTimeout(d)
	}
}

// WithDecimals sets the number of decimal places used when displaying amounts.
func WithDecimals(decimals uint8) Option {
	return func(l *Ledger) {
		l.decimals = decimals
	}
}

// WithStrictPause gates Mint, Approve and the allowance helpers on the pause
// switch in addition to transfers.
func WithStrictPause() Option {
	return func(l *Ledger) {
		l.strictPause = true
	}
}

// WithJournal persists emitted events to s once the ledger is started.
func WithJournal(s store.Store) Option {
	return func(l *Ledger) {
		l.journal = s
	}
}

// WithJournalConfig configures journal batching.
func WithJournalConfig(batchSize int, flushInterval time.Duration) Option {
	return func(l *Ledger) {
		if batchSize > 0 {
			l.journalBatchSize = batchSize
		}
		if flushInterval > 0 {
			l.journalFlushInterval = flushInterval
		}
	}
}

// WithClock sets the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}
