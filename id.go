package token

import "github.com/xraph/token/id"

// ID is the primary identifier type for accounts, ledgers and events.
type ID = id.ID

// AccountID identifies a ledger participant.
type AccountID = id.AccountID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// NewAccountID generates a new unique account ID.
var NewAccountID = id.NewAccountID
