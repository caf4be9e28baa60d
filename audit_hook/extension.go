// Package audithook bridges token ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	token "github.com/xraph/token"
	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	"github.com/xraph/token/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnMint                 = (*Extension)(nil)
	_ plugin.OnTransfer             = (*Extension)(nil)
	_ plugin.OnApproval             = (*Extension)(nil)
	_ plugin.OnPaused               = (*Extension)(nil)
	_ plugin.OnUnpaused             = (*Extension)(nil)
	_ plugin.OnOwnershipTransferred = (*Extension)(nil)
	_ plugin.OnRejected             = (*Extension)(nil)
	_ plugin.OnJournalFlushed       = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Balance hooks
// ──────────────────────────────────────────────────

// OnMint implements plugin.OnMint.
func (e *Extension) OnMint(ctx context.Context, ev *event.Event, t event.Transfer) error {
	return e.record(ctx, ActionMinted, SeverityInfo, OutcomeSuccess,
		ResourceAccount, t.To.String(), CategorySupply, nil,
		"ledger_id", ev.LedgerID.String(),
		"sequence", ev.Sequence,
		"to", t.To.String(),
		"amount", t.Amount.String(),
	)
}

// OnTransfer implements plugin.OnTransfer.
func (e *Extension) OnTransfer(ctx context.Context, ev *event.Event, t event.Transfer) error {
	return e.record(ctx, ActionTransferred, SeverityInfo, OutcomeSuccess,
		ResourceAccount, t.From.String(), CategoryTransfer, nil,
		"ledger_id", ev.LedgerID.String(),
		"sequence", ev.Sequence,
		"from", t.From.String(),
		"to", t.To.String(),
		"amount", t.Amount.String(),
	)
}

// OnApproval implements plugin.OnApproval.
func (e *Extension) OnApproval(ctx context.Context, ev *event.Event, a event.Approval) error {
	return e.record(ctx, ActionApproved, SeverityInfo, OutcomeSuccess,
		ResourceAllowance, a.Owner.String(), CategoryTransfer, nil,
		"ledger_id", ev.LedgerID.String(),
		"sequence", ev.Sequence,
		"owner", a.Owner.String(),
		"spender", a.Spender.String(),
		"amount", a.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Administrative hooks
// ──────────────────────────────────────────────────

// OnPaused implements plugin.OnPaused.
func (e *Extension) OnPaused(ctx context.Context, ev *event.Event, account id.AccountID) error {
	return e.record(ctx, ActionPaused, SeverityWarning, OutcomeSuccess,
		ResourceLedger, ev.LedgerID.String(), CategoryControl, nil,
		"sequence", ev.Sequence,
		"account", account.String(),
	)
}

// OnUnpaused implements plugin.OnUnpaused.
func (e *Extension) OnUnpaused(ctx context.Context, ev *event.Event, account id.AccountID) error {
	return e.record(ctx, ActionUnpaused, SeverityInfo, OutcomeSuccess,
		ResourceLedger, ev.LedgerID.String(), CategoryControl, nil,
		"sequence", ev.Sequence,
		"account", account.String(),
	)
}

// OnOwnershipTransferred implements plugin.OnOwnershipTransferred.
func (e *Extension) OnOwnershipTransferred(ctx context.Context, ev *event.Event, previous, next id.AccountID) error {
	return e.record(ctx, ActionOwnershipTransferred, SeverityWarning, OutcomeSuccess,
		ResourceLedger, ev.LedgerID.String(), CategoryAccess, nil,
		"sequence", ev.Sequence,
		"previous_administrator", previous.String(),
		"new_administrator", next.String(),
	)
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnRejected implements plugin.OnRejected. Failed privileged calls are
// recorded as critical.
func (e *Extension) OnRejected(ctx context.Context, op string, caller id.AccountID, err error) error {
	severity := SeverityWarning
	category := CategoryTransfer
	if token.IsAuthError(err) {
		severity = SeverityCritical
		category = CategoryAccess
	}

	return e.record(ctx, ActionRejected, severity, OutcomeFailure,
		ResourceAccount, caller.String(), category, err,
		"op", op,
		"caller", caller.String(),
	)
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed implements plugin.OnJournalFlushed.
func (e *Extension) OnJournalFlushed(ctx context.Context, count int, lastSequence uint64, elapsed time.Duration) error {
	return e.record(ctx, ActionJournalFlushed, SeverityInfo, OutcomeSuccess,
		ResourceJournal, "", CategoryJournal, nil,
		"count", count,
		"last_sequence", lastSequence,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
