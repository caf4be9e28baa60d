package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
)

// DefaultTimeout bounds how long a single hook may run.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onMint                 []OnMint
	onTransfer             []OnTransfer
	onApproval             []OnApproval
	onPaused               []OnPaused
	onUnpaused             []OnUnpaused
	onOwnershipTransferred []OnOwnershipTransferred
	onRejected             []OnRejected
	onJournalFlushed       []OnJournalFlushed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnMint); ok {
		r.onMint = append(r.onMint, v)
	}
	if v, ok := p.(OnTransfer); ok {
		r.onTransfer = append(r.onTransfer, v)
	}
	if v, ok := p.(OnApproval); ok {
		r.onApproval = append(r.onApproval, v)
	}
	if v, ok := p.(OnPaused); ok {
		r.onPaused = append(r.onPaused, v)
	}
	if v, ok := p.(OnUnpaused); ok {
		r.onUnpaused = append(r.onUnpaused, v)
	}
	if v, ok := p.(OnOwnershipTransferred); ok {
		r.onOwnershipTransferred = append(r.onOwnershipTransferred, v)
	}
	if v, ok := p.(OnRejected); ok {
		r.onRejected = append(r.onRejected, v)
	}
	if v, ok := p.(OnJournalFlushed); ok {
		r.onJournalFlushed = append(r.onJournalFlushed, v)
	}

	r.logger.Debug("plugin registered", "plugin", p.Name())
	return nil
}

// Plugins returns all registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// EmitInit notifies plugins that the ledger has started.
func (r *Registry) EmitInit(ctx context.Context, l interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, l)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown notifies plugins that the ledger is stopping.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitEvent routes a committed event to the hooks for its kind.
func (r *Registry) EmitEvent(ctx context.Context, ev *event.Event) {
	switch p := ev.Payload.(type) {
	case event.Transfer:
		if p.IsMint() {
			r.emitMint(ctx, ev, p)
		} else {
			r.emitTransfer(ctx, ev, p)
		}
	case event.Approval:
		r.emitApproval(ctx, ev, p)
	case event.Paused:
		r.emitPaused(ctx, ev, p.Account)
	case event.Unpaused:
		r.emitUnpaused(ctx, ev, p.Account)
	case event.OwnershipTransferred:
		r.emitOwnershipTransferred(ctx, ev, p.Previous, p.New)
	}
}

func (r *Registry) emitMint(ctx context.Context, ev *event.Event, t event.Transfer) {
	r.mu.RLock()
	plugins := r.onMint
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMint(ctx, ev, t)
		}); err != nil {
			r.logger.Warn("plugin OnMint failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

func (r *Registry) emitTransfer(ctx context.Context, ev *event.Event, t event.Transfer) {
	r.mu.RLock()
	plugins := r.onTransfer
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransfer(ctx, ev, t)
		}); err != nil {
			r.logger.Warn("plugin OnTransfer failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

func (r *Registry) emitApproval(ctx context.Context, ev *event.Event, a event.Approval) {
	r.mu.RLock()
	plugins := r.onApproval
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnApproval(ctx, ev, a)
		}); err != nil {
			r.logger.Warn("plugin OnApproval failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

func (r *Registry) emitPaused(ctx context.Context, ev *event.Event, account id.AccountID) {
	r.mu.RLock()
	plugins := r.onPaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaused(ctx, ev, account)
		}); err != nil {
			r.logger.Warn("plugin OnPaused failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

func (r *Registry) emitUnpaused(ctx context.Context, ev *event.Event, account id.AccountID) {
	r.mu.RLock()
	plugins := r.onUnpaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUnpaused(ctx, ev, account)
		}); err != nil {
			r.logger.Warn("plugin OnUnpaused failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

func (r *Registry) emitOwnershipTransferred(ctx context.Context, ev *event.Event, previous, next id.AccountID) {
	r.mu.RLock()
	plugins := r.onOwnershipTransferred
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOwnershipTransferred(ctx, ev, previous, next)
		}); err != nil {
			r.logger.Warn("plugin OnOwnershipTransferred failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRejected notifies plugins of a failed operation.
func (r *Registry) EmitRejected(ctx context.Context, op string, caller id.AccountID, opErr error) {
	r.mu.RLock()
	plugins := r.onRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRejected(ctx, op, caller, opErr)
		}); err != nil {
			r.logger.Warn("plugin OnRejected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitJournalFlushed notifies plugins that a journal batch was written.
func (r *Registry) EmitJournalFlushed(ctx context.Context, count int, lastSequence uint64, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onJournalFlushed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnJournalFlushed(ctx, count, lastSequence, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnJournalFlushed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block ledger callers indefinitely.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
