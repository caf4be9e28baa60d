package token

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	"github.com/xraph/token/plugin"
	"github.com/xraph/token/store"
	"github.com/xraph/token/types"
)

// Ledger is a fungible-value ledger. It tracks balances, allowances and total
// supply, restricts supply and lifecycle changes to a single administrator,
// and records every successful mutation as a sequenced event.
//
// A Ledger is safe for concurrent use. Mutations are serialized under one
// write lock that covers validation, commit and event append; reads share a
// read lock and always observe a committed state.
type Ledger struct {
	mu          sync.RWMutex
	id          id.LedgerID
	name        string
	symbol      string
	decimals    uint8
	strictPause bool
	now         func() time.Time

	access      *AccessControl
	gate        *PauseGate
	totalSupply types.Amount
	balances    map[string]holding
	allowances  map[allowanceKey]grant
	log         *event.Log

	plugins *plugin.Registry
	logger  *slog.Logger

	// Journal
	journal              store.Store
	journalBatchSize     int
	journalFlushInterval time.Duration
	flushMu              sync.Mutex
	flushed              atomic.Uint64
	lastDigest           event.Digest
	flushSignal          chan struct{}

	// Background workers
	lifecycleMu sync.Mutex
	running     atomic.Bool
	stopped     bool
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

type holding struct {
	account id.AccountID
	amount  types.Amount
}

type allowanceKey struct {
	owner, spender string
}

type grant struct {
	owner, spender id.AccountID
	amount         types.Amount
}

// New creates a ledger whose administrator is initializer. The ledger starts
// unpaused with zero supply.
func New(initializer id.AccountID, name, symbol string, opts ...Option) (*Ledger, error) {
	if initializer.IsNil() {
		return nil, fmt.Errorf("token: new ledger: %w", ErrInvalidAccount)
	}

	ledgerID := id.NewLedgerID()
	access := newAccessControl(initializer)

	l := &Ledger{
		id:                   ledgerID,
		name:                 name,
		symbol:               symbol,
		decimals:             18,
		now:                  time.Now,
		access:               access,
		gate:                 newPauseGate(access),
		totalSupply:          types.ZeroAmount(),
		balances:             make(map[string]holding),
		allowances:           make(map[allowanceKey]grant),
		log:                  event.NewLog(ledgerID),
		plugins:              plugin.NewRegistry(),
		logger:               slog.Default(),
		journalBatchSize:     100,
		journalFlushInterval: 5 * time.Second,
		flushSignal:          make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// ──────────────────────────────────────────────────
// Metadata
// ──────────────────────────────────────────────────

// ID returns the ledger's identifier.
func (l *Ledger) ID() id.LedgerID { return l.id }

// Name returns the human-readable name of the unit of account.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the ticker symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// Decimals returns the number of decimal places used for display.
func (l *Ledger) Decimals() uint8 { return l.decimals }

// Plugins returns the ledger's plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply(_ context.Context) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply
}

// BalanceOf returns the balance of account. Unknown accounts hold zero.
func (l *Ledger) BalanceOf(_ context.Context, account id.AccountID) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceOf(account)
}

// Allowance returns how much spender may still move out of owner's balance.
// Unset pairs return zero.
func (l *Ledger) Allowance(_ context.Context, owner, spender id.AccountID) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowanceOf(owner, spender)
}

// Paused reports whether transfers are halted.
func (l *Ledger) Paused(_ context.Context) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gate.Paused()
}

// Administrator returns the current administrator.
func (l *Ledger) Administrator(_ context.Context) id.AccountID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.access.Administrator()
}

// Events returns up to limit committed events with a sequence greater than
// after. A limit of zero or less returns all of them.
func (l *Ledger) Events(_ context.Context, after uint64, limit int) []*event.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log.Since(after, limit)
}

// Holding is one account's non-zero balance.
type Holding struct {
	Account id.AccountID `json:"account"`
	Balance types.Amount `json:"balance"`
}

// Grant is one non-zero allowance.
type Grant struct {
	Owner   id.AccountID `json:"owner"`
	Spender id.AccountID `json:"spender"`
	Amount  types.Amount `json:"amount"`
}

// Snapshot is a consistent point-in-time copy of ledger state.
type Snapshot struct {
	LedgerID      id.LedgerID  `json:"ledger_id"`
	Name          string       `json:"name"`
	Symbol        string       `json:"symbol"`
	Decimals      uint8        `json:"decimals"`
	TotalSupply   types.Amount `json:"total_supply"`
	Administrator id.AccountID `json:"administrator"`
	Paused        bool         `json:"paused"`
	Sequence      uint64       `json:"sequence"`
	Holdings      []Holding    `json:"holdings"`
	Allowances    []Grant      `json:"allowances"`
}

// Snapshot copies the full ledger state under a single read lock. Holdings
// and allowances are ordered by account ID.
func (l *Ledger) Snapshot(_ context.Context) *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := &Snapshot{
		LedgerID:      l.id,
		Name:          l.name,
		Symbol:        l.symbol,
		Decimals:      l.decimals,
		TotalSupply:   l.totalSupply,
		Administrator: l.access.Administrator(),
		Paused:        l.gate.Paused(),
		Sequence:      l.log.LastSequence(),
		Holdings:      make([]Holding, 0, len(l.balances)),
		Allowances:    make([]Grant, 0, len(l.allowances)),
	}

	for _, h := range l.balances {
		snap.Holdings = append(snap.Holdings, Holding{Account: h.account, Balance: h.amount})
	}
	for _, g := range l.allowances {
		snap.Allowances = append(snap.Allowances, Grant{Owner: g.owner, Spender: g.spender, Amount: g.amount})
	}

	sort.Slice(snap.Holdings, func(i, j int) bool {
		return snap.Holdings[i].Account.String() < snap.Holdings[j].Account.String()
	})
	sort.Slice(snap.Allowances, func(i, j int) bool {
		a, b := snap.Allowances[i], snap.Allowances[j]
		if a.Owner.String() != b.Owner.String() {
			return a.Owner.String() < b.Owner.String()
		}
		return a.Spender.String() < b.Spender.String()
	})

	return snap
}

// ──────────────────────────────────────────────────
// Privileged operations
// ──────────────────────────────────────────────────

// Mint creates amount new units and credits them to to. Only the
// administrator may mint. The emitted Transfer has id.Nil as its sender.
func (l *Ledger) Mint(ctx context.Context, caller, to id.AccountID, amount types.Amount) (*event.Event, error) {
	return l.commit(ctx, OpMint, caller, func() (event.Payload, error) {
		if err := l.access.authorize(caller); err != nil {
			return nil, err
		}
		if l.strictPause {
			if err := l.gate.guard(); err != nil {
				return nil, err
			}
		}
		if to.IsNil() {
			return nil, ErrInvalidAccount
		}

		supply, overflow := l.totalSupply.Add(amount)
		if overflow {
			return nil, ErrSupplyOverflow
		}
		balance, overflow := l.balanceOf(to).Add(amount)
		if overflow {
			return nil, ErrSupplyOverflow
		}

		l.totalSupply = supply
		l.setBalance(to, balance)
		return event.Transfer{From: id.Nil, To: to, Amount: amount}, nil
	})
}

// Pause halts transfers. Only the administrator may pause, and only while
// transfers are running.
func (l *Ledger) Pause(ctx context.Context, caller id.AccountID) (*event.Event, error) {
	return l.commit(ctx, OpPause, caller, func() (event.Payload, error) {
		p, err := l.gate.pause(caller)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// Unpause resumes transfers. Only the administrator may unpause, and only
// while transfers are halted.
func (l *Ledger) Unpause(ctx context.Context, caller id.AccountID) (*event.Event, error) {
	return l.commit(ctx, OpUnpause, caller, func() (event.Payload, error) {
		p, err := l.gate.unpause(caller)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// TransferAdministrator hands the administrator role to successor.
// Transferring to the current administrator succeeds and still emits.
func (l *Ledger) TransferAdministrator(ctx context.Context, caller, successor id.AccountID) (*event.Event, error) {
	return l.commit(ctx, OpTransferAdministrator, caller, func() (event.Payload, error) {
		p, err := l.access.transfer(caller, successor)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// ──────────────────────────────────────────────────
// Transfers
// ──────────────────────────────────────────────────

// Transfer moves amount from caller to to.
func (l *Ledger) Transfer(ctx context.Context, caller, to id.AccountID, amount types.Amount) (*event.Event, error) {
	return l.commit(ctx, OpTransfer, caller, func() (event.Payload, error) {
		if err := l.gate.guard(); err != nil {
			return nil, err
		}
		if caller.IsNil() || to.IsNil() {
			return nil, ErrInvalidAccount
		}
		if err := l.move(caller, to, amount); err != nil {
			return nil, err
		}
		return event.Transfer{From: caller, To: to, Amount: amount}, nil
	})
}

// TransferFrom moves amount from from to to on behalf of caller, spending
// caller's allowance over from's balance.
func (l *Ledger) TransferFrom(ctx context.Context, caller, from, to id.AccountID, amount types.Amount) (*event.Event, error) {
	return l.commit(ctx, OpTransferFrom, caller, func() (event.Payload, error) {
		if err := l.gate.guard(); err != nil {
			return nil, err
		}
		if caller.IsNil() || from.IsNil() || to.IsNil() {
			return nil, ErrInvalidAccount
		}

		remaining, underflow := l.allowanceOf(from, caller).Sub(amount)
		if underflow {
			return nil, ErrInsufficientAllowance
		}
		if err := l.move(from, to, amount); err != nil {
			return nil, err
		}

		l.setAllowance(from, caller, remaining)
		return event.Transfer{From: from, To: to, Amount: amount}, nil
	})
}

// ──────────────────────────────────────────────────
// Allowances
// ──────────────────────────────────────────────────

// Approve sets the allowance from caller to spender to exactly amount,
// overwriting any previous value.
func (l *Ledger) Approve(ctx context.Context, caller, spender id.AccountID, amount types.Amount) (*event.Event, error) {
	return l.commit(ctx, OpApprove, caller, func() (event.Payload, error) {
		if err := l.checkApproval(caller, spender); err != nil {
			return nil, err
		}
		l.setAllowance(caller, spender, amount)
		return event.Approval{Owner: caller, Spender: spender, Amount: amount}, nil
	})
}

// IncreaseAllowance raises the allowance from caller to spender by added.
// The emitted Approval carries the resulting allowance.
func (l *Ledger) IncreaseAllowance(ctx context.Context, caller, spender id.AccountID, added types.Amount) (*event.Event, error) {
	return l.commit(ctx, OpIncreaseAllowance, caller, func() (event.Payload, error) {
		if err := l.checkApproval(caller, spender); err != nil {
			return nil, err
		}
		next, overflow := l.allowanceOf(caller, spender).Add(added)
		if overflow {
			return nil, ErrAllowanceOverflow
		}
		l.setAllowance(caller, spender, next)
		return event.Approval{Owner: caller, Spender: spender, Amount: next}, nil
	})
}

// DecreaseAllowance lowers the allowance from caller to spender by
// subtracted. The emitted Approval carries the resulting allowance.
func (l *Ledger) DecreaseAllowance(ctx context.Context, caller, spender id.AccountID, subtracted types.Amount) (*event.Event, error) {
	return l.commit(ctx, OpDecreaseAllowance, caller, func() (event.Payload, error) {
		if err := l.checkApproval(caller, spender); err != nil {
			return nil, err
		}
		next, underflow := l.allowanceOf(caller, spender).Sub(subtracted)
		if underflow {
			return nil, ErrAllowanceBelowZero
		}
		l.setAllowance(caller, spender, next)
		return event.Approval{Owner: caller, Spender: spender, Amount: next}, nil
	})
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// commit runs apply under the write lock and, if it succeeds, appends its
// payload to the event log before releasing the lock. Plugins are notified
// after the lock is released.
func (l *Ledger) commit(ctx context.Context, op string, caller id.AccountID, apply func() (event.Payload, error)) (*event.Event, error) {
	l.mu.Lock()
	payload, err := apply()
	var ev *event.Event
	var backlog uint64
	if err == nil {
		ev = l.log.Append(payload, l.now())
		backlog = ev.Sequence - l.flushed.Load()
	}
	l.mu.Unlock()

	if err != nil {
		l.logger.Debug("token operation rejected",
			"op", op,
			"caller", caller.String(),
			"error", err,
		)
		l.plugins.EmitRejected(ctx, op, caller, err)
		return nil, &OperationError{Op: op, Caller: caller, Err: err}
	}

	l.logger.Debug("token operation committed",
		"op", op,
		"caller", caller.String(),
		"kind", string(ev.Kind()),
		"sequence", ev.Sequence,
	)
	l.plugins.EmitEvent(ctx, ev)

	if l.journal != nil && backlog >= uint64(l.journalBatchSize) {
		l.signalFlush()
	}
	return ev, nil
}

// move debits from and credits to. Nothing is mutated unless both sides
// succeed. A self-transfer still requires the full balance.
func (l *Ledger) move(from, to id.AccountID, amount types.Amount) error {
	fromBalance := l.balanceOf(from)
	debited, underflow := fromBalance.Sub(amount)
	if underflow {
		return ErrInsufficientBalance
	}

	credited := fromBalance
	if !from.Equal(to) {
		var overflow bool
		credited, overflow = l.balanceOf(to).Add(amount)
		if overflow {
			return ErrSupplyOverflow
		}
	}

	l.setBalance(from, debited)
	l.setBalance(to, credited)
	return nil
}

func (l *Ledger) checkApproval(owner, spender id.AccountID) error {
	if l.strictPause {
		if err := l.gate.guard(); err != nil {
			return err
		}
	}
	if owner.IsNil() || spender.IsNil() {
		return ErrInvalidAccount
	}
	return nil
}

func (l *Ledger) balanceOf(account id.AccountID) types.Amount {
	if h, ok := l.balances[account.String()]; ok {
		return h.amount
	}
	return types.ZeroAmount()
}

// setBalance stores amount for account. Zero balances are removed so the map
// only holds live accounts.
func (l *Ledger) setBalance(account id.AccountID, amount types.Amount) {
	key := account.String()
	if amount.IsZero() {
		delete(l.balances, key)
		return
	}
	l.balances[key] = holding{account: account, amount: amount}
}

func (l *Ledger) allowanceOf(owner, spender id.AccountID) types.Amount {
	if g, ok := l.allowances[allowanceKey{owner.String(), spender.String()}]; ok {
		return g.amount
	}
	return types.ZeroAmount()
}

func (l *Ledger) setAllowance(owner, spender id.AccountID, amount types.Amount) {
	key := allowanceKey{owner.String(), spender.String()}
	if amount.IsZero() {
		delete(l.allowances, key)
		return
	}
	l.allowances[key] = grant{owner: owner, spender: spender, amount: amount}
}
