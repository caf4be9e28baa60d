package audithook

// Action constants for audit events.
const (
	// Balance actions
	ActionMinted      = "token.minted"
	ActionTransferred = "token.transferred"

	// Allowance actions
	ActionApproved = "allowance.approved"

	// Administrative actions
	ActionPaused               = "ledger.paused"
	ActionUnpaused             = "ledger.unpaused"
	ActionOwnershipTransferred = "ownership.transferred"

	// Failure actions
	ActionRejected = "operation.rejected"

	// Journal actions
	ActionJournalFlushed = "journal.flushed"
)

// Resource constants for audit events.
const (
	ResourceAccount   = "account"
	ResourceAllowance = "allowance"
	ResourceLedger    = "ledger"
	ResourceJournal   = "journal"
)

// Category constants for audit events.
const (
	CategorySupply   = "supply"
	CategoryTransfer = "transfer"
	CategoryAccess   = "access"
	CategoryControl  = "control"
	CategoryJournal  = "journal"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
