// Package observability provides a metrics extension for token ledgers that
// records event counts and journal latency via a MetricFactory.
package observability

import (
	"context"
	"math/big"
	"time"

	token "github.com/xraph/token"
	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	"github.com/xraph/token/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnMint                 = (*MetricsExtension)(nil)
	_ plugin.OnTransfer             = (*MetricsExtension)(nil)
	_ plugin.OnApproval             = (*MetricsExtension)(nil)
	_ plugin.OnPaused               = (*MetricsExtension)(nil)
	_ plugin.OnUnpaused             = (*MetricsExtension)(nil)
	_ plugin.OnOwnershipTransferred = (*MetricsExtension)(nil)
	_ plugin.OnRejected             = (*MetricsExtension)(nil)
	_ plugin.OnJournalFlushed       = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide ledger metrics.
// Register it as a ledger plugin to automatically track token activity.
type MetricsExtension struct {
	factory MetricFactory

	// Supply metrics
	Minted       Counter
	MintedAmount Histogram

	// Transfer metrics
	Transferred       Counter
	TransferredAmount Histogram
	Approvals         Counter

	// Control metrics
	Paused               Counter
	Unpaused             Counter
	OwnershipTransferred Counter

	// Rejection metrics
	Rejected       Counter
	RejectedAuth   Counter
	RejectedPaused Counter
	RejectedFunds  Counter

	// Journal metrics
	JournalEvents       Counter
	JournalBatchSize    Histogram
	JournalFlushLatency Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Supply metrics
		Minted:       factory.Counter("token.minted"),
		MintedAmount: factory.Histogram("token.minted.amount"),

		// Transfer metrics
		Transferred:       factory.Counter("token.transferred"),
		TransferredAmount: factory.Histogram("token.transferred.amount"),
		Approvals:         factory.Counter("token.approvals"),

		// Control metrics
		Paused:               factory.Counter("token.paused"),
		Unpaused:             factory.Counter("token.unpaused"),
		OwnershipTransferred: factory.Counter("token.ownership.transferred"),

		// Rejection metrics
		Rejected:       factory.Counter("token.rejected"),
		RejectedAuth:   factory.Counter("token.rejected.unauthorized"),
		RejectedPaused: factory.Counter("token.rejected.paused"),
		RejectedFunds:  factory.Counter("token.rejected.funds"),

		// Journal metrics
		JournalEvents:       factory.Counter("token.journal.events"),
		JournalBatchSize:    factory.Histogram("token.journal.batch.size"),
		JournalFlushLatency: factory.Histogram("token.journal.flush.latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// OnMint implements plugin.OnMint.
func (m *MetricsExtension) OnMint(_ context.Context, _ *event.Event, t event.Transfer) error {
	m.Minted.Inc()
	m.MintedAmount.Observe(amountFloat(t.Amount))
	return nil
}

// OnTransfer implements plugin.OnTransfer.
func (m *MetricsExtension) OnTransfer(_ context.Context, _ *event.Event, t event.Transfer) error {
	m.Transferred.Inc()
	m.TransferredAmount.Observe(amountFloat(t.Amount))
	return nil
}

// OnApproval implements plugin.OnApproval.
func (m *MetricsExtension) OnApproval(_ context.Context, _ *event.Event, _ event.Approval) error {
	m.Approvals.Inc()
	return nil
}

// OnPaused implements plugin.OnPaused.
func (m *MetricsExtension) OnPaused(_ context.Context, _ *event.Event, _ id.AccountID) error {
	m.Paused.Inc()
	return nil
}

// OnUnpaused implements plugin.OnUnpaused.
func (m *MetricsExtension) OnUnpaused(_ context.Context, _ *event.Event, _ id.AccountID) error {
	m.Unpaused.Inc()
	return nil
}

// OnOwnershipTransferred implements plugin.OnOwnershipTransferred.
func (m *MetricsExtension) OnOwnershipTransferred(_ context.Context, _ *event.Event, _, _ id.AccountID) error {
	m.OwnershipTransferred.Inc()
	return nil
}

// OnRejected implements plugin.OnRejected.
func (m *MetricsExtension) OnRejected(_ context.Context, _ string, _ id.AccountID, err error) error {
	m.Rejected.Inc()
	switch {
	case token.IsAuthError(err):
		m.RejectedAuth.Inc()
	case token.IsPauseError(err):
		m.RejectedPaused.Inc()
	case token.IsFundsError(err):
		m.RejectedFunds.Inc()
	}
	return nil
}

// OnJournalFlushed implements plugin.OnJournalFlushed.
func (m *MetricsExtension) OnJournalFlushed(_ context.Context, count int, _ uint64, elapsed time.Duration) error {
	m.JournalEvents.Add(float64(count))
	m.JournalBatchSize.Observe(float64(count))
	m.JournalFlushLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// amountFloat converts an amount for histogram observation. Precision loss
// above 2^53 is acceptable for metrics.
func amountFloat(a token.Amount) float64 {
	f, _ := new(big.Float).SetString(a.String())
	if f == nil {
		return 0
	}
	v, _ := f.Float64()
	return v
}
