// Package postgres provides a PostgreSQL journal store built on Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	token "github.com/xraph/token"
	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	tokenstore "github.com/xraph/token/store"
)

// compile-time interface check
var _ tokenstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("token/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("token/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append implements store.Store. Records already present for their
// (ledger_id, sequence) are skipped.
func (s *Store) Append(ctx context.Context, records []*event.Record) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]eventModel, len(records))
	for i, rec := range records {
		models[i] = *toEventModel(rec)
	}
	_, err := s.pg.NewInsert(&models).
		OnConflict("(ledger_id, sequence) DO NOTHING").
		Exec(ctx)
	return err
}

// List implements store.Store.
func (s *Store) List(ctx context.Context, opts tokenstore.ListOpts) ([]*event.Record, error) {
	var models []eventModel
	q := s.pg.NewSelect(&models).
		Where("sequence > $1", int64(opts.AfterSequence)) //nolint:gosec // sequences stay far below MaxInt64

	argIdx := 1
	if !opts.LedgerID.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("ledger_id = $%d", argIdx), opts.LedgerID.String())
	}
	if opts.Kind != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("kind = $%d", argIdx), string(opts.Kind))
	}
	if !opts.Account.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("(party_a = $%d OR party_b = $%d)", argIdx, argIdx), opts.Account.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	q = q.OrderExpr("ledger_id ASC, sequence ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*event.Record, len(models))
	for i := range models {
		rec, err := fromEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = rec
	}
	return result, nil
}

// Last implements store.Store.
func (s *Store) Last(ctx context.Context, ledgerID id.LedgerID) (*event.Record, error) {
	m := new(eventModel)
	err := s.pg.NewSelect(m).
		Where("ledger_id = $1", ledgerID.String()).
		OrderExpr("sequence DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, token.ErrNotFound
		}
		return nil, err
	}
	return fromEventModel(m)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
