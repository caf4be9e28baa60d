package token_test

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	token "github.com/xraph/token"
	"github.com/xraph/token/id"
	"github.com/xraph/token/store"
	"github.com/xraph/token/store/memory"
)

// Example shows the Quick Start from the package documentation.
func Example() {
	ctx := context.Background()

	admin := id.NewAccountID()
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	// Create store (memory for demo, use PostgreSQL in production)
	journal := memory.New()

	l, err := token.New(admin, "Example Credits", "EXC",
		token.WithLogger(slog.New(slog.DiscardHandler)),
		token.WithDecimals(2),
		token.WithJournal(journal),
		token.WithJournalConfig(100, time.Hour),
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := l.Start(ctx); err != nil {
		log.Fatal(err)
	}

	if _, err := l.Mint(ctx, admin, alice, token.NewAmount(10000)); err != nil {
		log.Fatal(err)
	}
	if _, err := l.Transfer(ctx, alice, bob, token.NewAmount(2550)); err != nil {
		log.Fatal(err)
	}

	if _, err := l.Transfer(ctx, bob, alice, token.NewAmount(999999)); token.IsFundsError(err) {
		fmt.Println("rejected:", "insufficient balance")
	}

	fmt.Println("supply:", l.TotalSupply(ctx).FormatUnits(l.Decimals()))
	fmt.Println("alice:", l.BalanceOf(ctx, alice).FormatUnits(l.Decimals()))
	fmt.Println("bob:", l.BalanceOf(ctx, bob).FormatUnits(l.Decimals()))

	if err := l.Stop(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("journaled:", journal.Len(l.ID()))

	// Output:
	// rejected: insufficient balance
	// supply: 100
	// alice: 74.5
	// bob: 25.5
	// journaled: 2
}

// ExampleLedger_TransferFrom shows delegated spending through an allowance.
func ExampleLedger_TransferFrom() {
	ctx := context.Background()

	admin := id.NewAccountID()
	owner := id.NewAccountID()
	spender := id.NewAccountID()

	l, err := token.New(admin, "Example Credits", "EXC",
		token.WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		log.Fatal(err)
	}

	_, _ = l.Mint(ctx, admin, owner, token.NewAmount(500))
	_, _ = l.Approve(ctx, owner, spender, token.NewAmount(200))

	if _, err := l.TransferFrom(ctx, spender, owner, spender, token.NewAmount(150)); err != nil {
		log.Fatal(err)
	}

	fmt.Println("owner:", l.BalanceOf(ctx, owner))
	fmt.Println("spender:", l.BalanceOf(ctx, spender))
	fmt.Println("allowance:", l.Allowance(ctx, owner, spender))

	// Output:
	// owner: 350
	// spender: 150
	// allowance: 50
}

// ExampleLedger_Pause shows the administrator halting transfers.
func ExampleLedger_Pause() {
	ctx := context.Background()

	admin := id.NewAccountID()
	holder := id.NewAccountID()

	l, _ := token.New(admin, "Example Credits", "EXC",
		token.WithLogger(slog.New(slog.DiscardHandler)),
	)
	_, _ = l.Mint(ctx, admin, holder, token.NewAmount(10))
	_, _ = l.Pause(ctx, admin)

	_, err := l.Transfer(ctx, holder, admin, token.NewAmount(1))
	fmt.Println(token.IsPauseError(err))

	_, _ = l.Unpause(ctx, admin)
	_, err = l.Transfer(ctx, holder, admin, token.NewAmount(1))
	fmt.Println(err == nil)

	// Output:
	// true
	// true
}

// ExampleLedger_Events shows reading the committed event stream.
func ExampleLedger_Events() {
	ctx := context.Background()

	admin := id.NewAccountID()
	l, _ := token.New(admin, "Example Credits", "EXC",
		token.WithLogger(slog.New(slog.DiscardHandler)),
	)
	_, _ = l.Mint(ctx, admin, admin, token.NewAmount(1))
	_, _ = l.Pause(ctx, admin)
	_, _ = l.TransferAdministrator(ctx, admin, id.NewAccountID())

	for _, ev := range l.Events(ctx, 0, 0) {
		fmt.Println(ev.Sequence, ev.Kind())
	}

	// Output:
	// 1 transfer
	// 2 paused
	// 3 ownership_transferred
}

// journalQuery is how an indexer reads a ledger's journal back.
func journalQuery(ctx context.Context, s store.Store, ledger id.LedgerID, account id.AccountID) (int, error) {
	recs, err := s.List(ctx, store.ListOpts{LedgerID: ledger, Account: account})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Example_journal shows querying journaled events by account.
func Example_journal() {
	ctx := context.Background()

	admin := id.NewAccountID()
	alice := id.NewAccountID()
	journal := memory.New()

	l, _ := token.New(admin, "Example Credits", "EXC",
		token.WithLogger(slog.New(slog.DiscardHandler)),
		token.WithJournal(journal),
	)
	_ = l.Start(ctx)

	_, _ = l.Mint(ctx, admin, alice, token.NewAmount(5))
	_, _ = l.Mint(ctx, admin, admin, token.NewAmount(5))
	_, _ = l.Approve(ctx, alice, admin, token.NewAmount(1))
	_ = l.Flush(ctx)

	n, _ := journalQuery(ctx, journal, l.ID(), alice)
	fmt.Println("alice events:", n)

	_ = l.Stop()

	// Output:
	// alice events: 2
}
