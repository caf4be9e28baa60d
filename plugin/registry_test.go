package plugin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	"github.com/xraph/token/types"
)

type countingPlugin struct {
	name string

	mu        sync.Mutex
	mints     int
	transfers int
	approvals int
	rejected  []string
	err       error
}

func (p *countingPlugin) Name() string { return p.name }

func (p *countingPlugin) OnMint(context.Context, *event.Event, event.Transfer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mints++
	return p.err
}

func (p *countingPlugin) OnTransfer(context.Context, *event.Event, event.Transfer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transfers++
	return p.err
}

func (p *countingPlugin) OnApproval(context.Context, *event.Event, event.Approval) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.approvals++
	return p.err
}

func (p *countingPlugin) OnRejected(_ context.Context, op string, _ id.AccountID, _ error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejected = append(p.rejected, op)
	return p.err
}

type blockingPlugin struct {
	release chan struct{}
}

func (p *blockingPlugin) Name() string { return "blocking" }

func (p *blockingPlugin) OnShutdown(context.Context) error {
	<-p.release
	return nil
}

type namedOnly struct{}

func (namedOnly) Name() string { return "named-only" }

func testEvent(p event.Payload) *event.Event {
	return &event.Event{
		ID:        id.NewEventID(),
		LedgerID:  id.NewLedgerID(),
		Sequence:  1,
		Timestamp: time.Now().UTC(),
		Payload:   p,
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&countingPlugin{name: "a"}))
	require.NoError(t, r.Register(&countingPlugin{name: "b"}))
	require.Error(t, r.Register(&countingPlugin{name: "a"}))

	plugins := r.Plugins()
	require.Len(t, plugins, 2)
	assert.Equal(t, "a", plugins[0].Name())
	assert.Equal(t, "b", plugins[1].Name())
}

func TestEmitEventRoutesByKind(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	p := &countingPlugin{name: "counter"}
	require.NoError(t, r.Register(p))
	require.NoError(t, r.Register(namedOnly{}))

	a, b := id.NewAccountID(), id.NewAccountID()
	r.EmitEvent(ctx, testEvent(event.Transfer{From: id.Nil, To: a, Amount: types.NewAmount(1)}))
	r.EmitEvent(ctx, testEvent(event.Transfer{From: a, To: b, Amount: types.NewAmount(1)}))
	r.EmitEvent(ctx, testEvent(event.Transfer{From: a, To: b, Amount: types.NewAmount(2)}))
	r.EmitEvent(ctx, testEvent(event.Approval{Owner: a, Spender: b, Amount: types.NewAmount(3)}))
	r.EmitEvent(ctx, testEvent(event.Paused{Account: a}))

	assert.Equal(t, 1, p.mints)
	assert.Equal(t, 2, p.transfers)
	assert.Equal(t, 1, p.approvals)
}

func TestHookErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	failing := &countingPlugin{name: "failing", err: errors.New("boom")}
	after := &countingPlugin{name: "after"}
	require.NoError(t, r.Register(failing))
	require.NoError(t, r.Register(after))

	r.EmitRejected(ctx, "transfer", id.NewAccountID(), errors.New("insufficient"))

	assert.Equal(t, []string{"transfer"}, failing.rejected)
	assert.Equal(t, []string{"transfer"}, after.rejected)
}

func TestHookTimeout(t *testing.T) {
	r := NewRegistry().WithTimeout(20 * time.Millisecond)
	p := &blockingPlugin{release: make(chan struct{})}
	t.Cleanup(func() { close(p.release) })
	require.NoError(t, r.Register(p))

	start := time.Now()
	r.EmitShutdown(context.Background())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHookContextCancel(t *testing.T) {
	r := NewRegistry()
	p := &blockingPlugin{release: make(chan struct{})}
	t.Cleanup(func() { close(p.release) })
	require.NoError(t, r.Register(p))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.callWithTimeout(ctx, p.Name(), func() error {
		return p.OnShutdown(ctx)
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeoutIgnoresNonPositive(t *testing.T) {
	r := NewRegistry().WithTimeout(0)
	assert.Equal(t, DefaultTimeout, r.timeout)
}
