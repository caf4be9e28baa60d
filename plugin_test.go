package token_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	token "github.com/xraph/token"
	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	"github.com/xraph/token/store/memory"
)

// recorder captures every hook call in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
	ops   []string
	init  interface{}
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recorder) OnInit(_ context.Context, l interface{}) error {
	r.mu.Lock()
	r.init = l
	r.mu.Unlock()
	r.add("init")
	return nil
}

func (r *recorder) OnShutdown(context.Context) error { r.add("shutdown"); return nil }

func (r *recorder) OnMint(context.Context, *event.Event, event.Transfer) error {
	r.add("mint")
	return nil
}

func (r *recorder) OnTransfer(context.Context, *event.Event, event.Transfer) error {
	r.add("transfer")
	return nil
}

func (r *recorder) OnApproval(context.Context, *event.Event, event.Approval) error {
	r.add("approval")
	return nil
}

func (r *recorder) OnPaused(context.Context, *event.Event, id.AccountID) error {
	r.add("paused")
	return nil
}

func (r *recorder) OnUnpaused(context.Context, *event.Event, id.AccountID) error {
	r.add("unpaused")
	return nil
}

func (r *recorder) OnOwnershipTransferred(context.Context, *event.Event, id.AccountID, id.AccountID) error {
	r.add("ownership")
	return nil
}

func (r *recorder) OnRejected(_ context.Context, op string, _ id.AccountID, _ error) error {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
	r.add("rejected")
	return nil
}

func (r *recorder) OnJournalFlushed(context.Context, int, uint64, time.Duration) error {
	r.add("flushed")
	return nil
}

func TestPluginHooks(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	l, admin := newLedger(t,
		token.WithPlugin(rec),
		token.WithJournal(memory.New()),
		token.WithJournalConfig(100, time.Hour),
	)
	require.Len(t, l.Plugins().Plugins(), 1)

	require.NoError(t, l.Start(ctx))

	a, b := id.NewAccountID(), id.NewAccountID()
	mint(t, l, admin, a, 10)
	_, err := l.Transfer(ctx, a, b, amt(3))
	require.NoError(t, err)
	_, err = l.Approve(ctx, a, b, amt(1))
	require.NoError(t, err)
	_, err = l.Pause(ctx, admin)
	require.NoError(t, err)
	_, err = l.Unpause(ctx, admin)
	require.NoError(t, err)
	_, err = l.TransferAdministrator(ctx, admin, b)
	require.NoError(t, err)
	_, err = l.Mint(ctx, admin, a, amt(1))
	require.Error(t, err)

	require.NoError(t, l.Stop())

	assert.Equal(t, []string{
		"init",
		"mint", "transfer", "approval", "paused", "unpaused", "ownership",
		"rejected",
		"flushed",
		"shutdown",
	}, rec.snapshot())
	assert.Equal(t, []string{token.OpMint}, rec.ops)
	assert.Same(t, l, rec.init)
}

func TestPluginDuplicateIgnored(t *testing.T) {
	l, _ := newLedger(t,
		token.WithPlugin(&recorder{}),
		token.WithPlugin(&recorder{}),
	)
	assert.Len(t, l.Plugins().Plugins(), 1)
}
