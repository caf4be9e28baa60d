package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	"github.com/xraph/token/types"
)

func TestEventModelRoundTrip(t *testing.T) {
	ledger := id.NewLedgerID()
	a, b := id.NewAccountID(), id.NewAccountID()
	log := event.NewLog(ledger)
	now := time.Now()

	recs, err := event.ChainAll(event.Digest{}, []*event.Event{
		log.Append(event.Transfer{From: a, To: b, Amount: types.NewAmount(250)}, now),
		log.Append(event.Paused{Account: a}, now),
	})
	require.NoError(t, err)

	m := toEventModel(recs[0])
	assert.Equal(t, recs[0].Event.ID.String(), m.EventID)
	assert.Equal(t, ledger.String(), m.LedgerID)
	assert.Equal(t, int64(1), m.Sequence)
	assert.Equal(t, "transfer", m.Kind)
	assert.Equal(t, a.String(), m.PartyA)
	assert.Equal(t, b.String(), m.PartyB)
	assert.Equal(t, recs[0].Digest.String(), m.Digest)
	assert.Equal(t, event.Digest{}.String(), m.PrevDigest)
	assert.Equal(t, "250", m.Amount)
	assert.Equal(t, []string{a.String(), b.String()}, m.Parties)

	paused := toEventModel(recs[1])
	assert.Empty(t, paused.Amount)
	assert.Equal(t, []string{a.String()}, paused.Parties)

	back := make([]*event.Record, 0, len(recs))
	for _, rec := range recs {
		got, err := fromEventModel(toEventModel(rec))
		require.NoError(t, err)
		assert.Equal(t, rec.Digest, got.Digest)
		assert.Equal(t, rec.PrevDigest, got.PrevDigest)
		assert.Equal(t, rec.Event.Sequence, got.Event.Sequence)
		assert.Equal(t, rec.Event.Kind(), got.Event.Kind())
		back = append(back, got)
	}
	require.NoError(t, event.VerifyChain(event.Digest{}, back))
}

func TestLastQuerySelectsHighestSequence(t *testing.T) {
	s := &Store{mdb: mongodriver.New()}
	ledger := id.NewLedgerID()

	var m eventModel
	q := s.lastQuery(&m, ledger)

	assert.Equal(t, colEvents, q.GetCollection())
	assert.Equal(t, bson.M{"ledger_id": ledger.String()}, q.GetFilter())
	assert.Equal(t, bson.D{{Key: "sequence", Value: -1}}, q.GetSort())
	assert.Equal(t, int64(1), q.GetLimit())
}
