// Package mongo provides a MongoDB journal store built on Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	token "github.com/xraph/token"
	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	tokenstore "github.com/xraph/token/store"
)

// Collection name constants.
const (
	colEvents = "token_events"
)

// compile-time interface check
var _ tokenstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the journal collection.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("token/mongo: migrate %s indexes: %w", col, err)
		}
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
	for _, rec := range records {
		m := toEventModel(rec)
		_, err := s.mdb.NewInsert(m).Exec(ctx)
		if err != nil {
			// Skip duplicates for idempotency
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("token/mongo: append event: %w", err)
		}
	}
	return nil
}

// List implements store.Store.
func (s *Store) List(ctx context.Context, opts tokenstore.ListOpts) ([]*event.Record, error) {
	var models []eventModel

	filter := bson.M{
		"sequence": bson.M{"$gt": int64(opts.AfterSequence)}, //nolint:gosec // sequences stay far below MaxInt64
	}
	if !opts.LedgerID.IsNil() {
		filter["ledger_id"] = opts.LedgerID.String()
	}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}
	if !opts.Account.IsNil() {
		filter["parties"] = opts.Account.String()
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "ledger_id", Value: 1}, {Key: "sequence", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("token/mongo: list events: %w", err)
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
	var m eventModel
	err := s.lastQuery(&m, ledgerID).Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, token.ErrNotFound
		}
		return nil, fmt.Errorf("token/mongo: last event: %w", err)
	}
	return fromEventModel(&m)
}

// lastQuery selects the highest-sequence event of a ledger into m.
func (s *Store) lastQuery(m *eventModel, ledgerID id.LedgerID) *mongodriver.FindQuery {
	return s.mdb.NewFind(m).
		Filter(bson.M{"ledger_id": ledgerID.String()}).
		Sort(bson.D{{Key: "sequence", Value: -1}}).
		Limit(1)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the journal collection.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colEvents: {
			{
				Keys:    bson.D{{Key: "ledger_id", Value: 1}, {Key: "sequence", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "ledger_id", Value: 1}, {Key: "kind", Value: 1}, {Key: "sequence", Value: 1}}},
			{Keys: bson.D{{Key: "parties", Value: 1}, {Key: "sequence", Value: 1}}},
		},
	}
}
