package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moviestream/identity-system/internal/core/domain"
)

const historyCollection = "login_history"

// HistoryRepository persists the append-only login history. Entries
// are never updated or deleted.
type HistoryRepository struct {
	coll *mongo.Collection
}

func NewHistoryRepository(db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{coll: db.Collection(historyCollection)}
}

type mongoHistoryEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Fingerprint string             `bson:"user_agent"`
	EventKind   string             `bson:"event_kind"`
	Success     bool               `bson:"success"`
	OccurredAt  int64              `bson:"occurred_at"`
}

func (r *HistoryRepository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	doc := mongoHistoryEntry{
		UserID:      entry.UserID,
		Fingerprint: entry.Fingerprint,
		EventKind:   entry.EventKind,
		Success:     entry.Success,
		OccurredAt:  entry.OccurredAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return storageErr("insert history entry", err)
	}
	return nil
}

func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, storageErr("find history", err)
	}
	defer cursor.Close(ctx)

	var entries []domain.HistoryEntry
	for cursor.Next(ctx) {
		var me mongoHistoryEntry
		if err := cursor.Decode(&me); err != nil {
			return nil, storageErr("decode history entry", err)
		}
		entries = append(entries, domain.HistoryEntry{
			ID:          me.ID.Hex(),
			UserID:      me.UserID,
			Fingerprint: me.Fingerprint,
			EventKind:   me.EventKind,
			Success:     me.Success,
			OccurredAt:  unixToTime(me.OccurredAt),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("iterate history", err)
	}
	return entries, nil
}
