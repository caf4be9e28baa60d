// Package token provides an in-process fungible-value ledger for Go applications.
//
// Token is designed as a library, not a service. A Ledger tracks ownership of
// a divisible unit of account across accounts and provides:
//
//   - 256-bit unsigned balances and supply with checked arithmetic
//   - A single administrator who alone may mint, pause and hand over the role
//   - A global pause switch that halts transfers
//   - ERC-20 style allowances (approve, transferFrom, increase/decrease)
//   - A gap-free, sequenced event log returned from every mutation
//   - An optional hash-chained journal of those events in SQLite,
//     PostgreSQL, MongoDB or memory
//   - Plugin hooks for audit trails and metrics
//
// # Quick Start
//
//	admin := id.NewAccountID()
//
//	l, err := token.New(admin, "Example", "EXM")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ev, err := l.Mint(ctx, admin, alice, types.NewAmount(10000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err = l.Transfer(ctx, alice, bob, types.NewAmount(100))
//	if errors.Is(err, token.ErrInsufficientBalance) {
//	    // state is unchanged and nothing was emitted
//	}
//
// # Consistency
//
// Every mutation runs as one serializable transaction: authorization, the
// pause check, balance and allowance checks, the state change and the event
// append all happen under a single write lock. Reads share a read lock and
// never observe a partially applied mutation, so the sum of all balances
// always equals TotalSupply. A failed operation changes nothing and emits
// nothing; its error is an *OperationError wrapping one of the sentinel
// errors.
//
// # Journal
//
// With WithJournal, Start launches a worker that writes committed events to a
// store.Store in batches. Each journal record carries the deterministic CBOR
// encoding of its event and a blake2b digest chained to the previous record,
// so event.VerifyChain can detect edits, drops and reordering. The journal is
// a copy of the event stream for indexers and auditors; ledger state is never
// rebuilt from it.
//
// # TypeID
//
// Accounts, ledgers and events use TypeID identifiers:
//
//	acct_01h2xcejqtf2nbrexx3vqjhp41  // Account ID
//	ldg_01h2xcejqtf2nbrexx3vqjhp41   // Ledger ID
//	evt_01h455vb4pex5vsknk084sn02q   // Event ID
//
// The zero ID, id.Nil, is the void account that minted value is drawn from.
package token
