package token

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/token/event"
)

// Start migrates the journal, notifies plugins and begins the journal flush
// worker. A ledger without a journal only notifies plugins.
//
// A ledger is started at most once: Start after Stop returns ErrStopped.
func (l *Ledger) Start(ctx context.Context) error {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if l.stopped {
		return ErrStopped
	}
	if l.running.Load() {
		return ErrAlreadyStarted
	}

	if l.journal != nil {
		// Migrate database
		if err := l.journal.Migrate(ctx); err != nil {
			return fmt.Errorf("token: migrate journal: %w", err)
		}
		if err := l.resumeJournal(ctx); err != nil {
			return err
		}
	}

	l.stopChan = make(chan struct{})
	l.running.Store(true)

	// Initialize plugins
	l.plugins.EmitInit(ctx, l)

	if l.journal != nil {
		l.wg.Add(1)
		go l.journalFlushWorker(context.WithoutCancel(ctx))
	}

	l.logger.Info("token ledger started",
		"ledger_id", l.id.String(),
		"symbol", l.symbol,
		"journal", l.journal != nil,
		"batch_size", l.journalBatchSize,
		"flush_interval", l.journalFlushInterval,
	)

	return nil
}

// Stop halts the flush worker, writes any unflushed events, notifies plugins
// and closes the journal. Stop is final; the ledger cannot be started again.
func (l *Ledger) Stop() error {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if !l.running.Load() {
		return ErrNotStarted
	}

	close(l.stopChan)
	l.wg.Wait()

	ctx := context.Background()
	var errs MultiError

	// Final flush
	errs.Add(l.Flush(ctx))
	l.running.Store(false)
	l.stopped = true

	l.plugins.EmitShutdown(ctx)

	if l.journal != nil {
		errs.Add(l.journal.Close())
	}

	l.logger.Info("token ledger stopped",
		"ledger_id", l.id.String(),
		"flushed_sequence", l.flushed.Load(),
	)

	return errs.ErrOrNil()
}

// Flush synchronously writes every committed event not yet in the journal.
func (l *Ledger) Flush(ctx context.Context) error {
	if l.journal == nil {
		return nil
	}
	if !l.running.Load() {
		return ErrNotStarted
	}

	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	for {
		l.mu.RLock()
		batch := l.log.Since(l.flushed.Load(), l.journalBatchSize)
		l.mu.RUnlock()

		if len(batch) == 0 {
			return nil
		}
		if err := l.flushBatch(ctx, batch); err != nil {
			return err
		}
	}
}

// FlushedSequence returns the sequence of the newest journaled event.
func (l *Ledger) FlushedSequence() uint64 {
	return l.flushed.Load()
}

// resumeJournal positions the flush cursor after the newest record the
// journal already holds for this ledger.
func (l *Ledger) resumeJournal(ctx context.Context) error {
	last, err := l.journal.Last(ctx, l.id)
	if IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("token: resume journal: %w", err)
	}

	l.mu.RLock()
	head := l.log.LastSequence()
	l.mu.RUnlock()

	if last.Event == nil || last.Event.Sequence > head {
		return fmt.Errorf("%w: journal is ahead of ledger %s", ErrJournalCorrupt, l.id)
	}

	l.flushMu.Lock()
	l.lastDigest = last.Digest
	l.flushed.Store(last.Event.Sequence)
	l.flushMu.Unlock()
	return nil
}

// journalFlushWorker flushes committed events to the journal.
func (l *Ledger) journalFlushWorker(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.journalFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return

		case <-l.flushSignal:
			l.flushInBackground(ctx)

		case <-ticker.C:
			l.flushInBackground(ctx)
		}
	}
}

func (l *Ledger) flushInBackground(ctx context.Context) {
	if err := l.Flush(ctx); err != nil {
		// The cursor has not moved; the next tick retries the same events.
		l.logger.Warn("journal flush deferred",
			"error", err,
			"flushed_sequence", l.flushed.Load(),
		)
	}
}

// flushBatch chains and appends one batch. The cursor only advances once the
// store has accepted the whole batch.
func (l *Ledger) flushBatch(ctx context.Context, batch []*event.Event) error {
	start := time.Now()

	records, err := event.ChainAll(l.lastDigest, batch)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFlushFailed, err)
	}

	if err := l.journal.Append(ctx, records); err != nil {
		l.logger.Error("failed to flush journal batch",
			"error", err,
			"batch_size", len(records),
		)
		return fmt.Errorf("%w: %w", ErrFlushFailed, err)
	}

	last := records[len(records)-1]
	l.lastDigest = last.Digest
	l.flushed.Store(last.Event.Sequence)

	elapsed := time.Since(start)
	l.plugins.EmitJournalFlushed(ctx, len(records), last.Event.Sequence, elapsed)

	l.logger.Debug("flushed journal batch",
		"batch_size", len(records),
		"last_sequence", last.Event.Sequence,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return nil
}

func (l *Ledger) signalFlush() {
	if !l.running.Load() {
		return
	}
	select {
	case l.flushSignal <- struct{}{}:
	default:
	}
}
