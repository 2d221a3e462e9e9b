package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

type resetTokenDoc struct {
	ID         string     `bson:"_id"`
	AccountID  string     `bson:"account_id"`
	TokenHash  string     `bson:"token_hash"`
	ExpiresAt  time.Time  `bson:"expires_at"`
	ConsumedAt *time.Time `bson:"consumed_at"`
	CreatedAt  time.Time  `bson:"created_at"`
}

func (d *resetTokenDoc) toDomain() *domain.ResetToken {
	t := &domain.ResetToken{
		ID:        d.ID,
		AccountID: d.AccountID,
		TokenHash: d.TokenHash,
		ExpiresAt: d.ExpiresAt.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.ConsumedAt != nil {
		at := d.ConsumedAt.UTC()
		t.ConsumedAt = &at
	}
	return t
}

type resetTokenRepo struct {
	coll *mongo.Collection
}

func (r *resetTokenRepo) Create(ctx context.Context, t *domain.ResetToken) error {
	doc := resetTokenDoc{
		ID:        t.ID,
		AccountID: t.AccountID,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// Consume is a single conditional findAndModify; a consumed or expired token
// never matches the filter.
func (r *resetTokenRepo) Consume(ctx context.Context, tokenHash string, at time.Time) (*domain.ResetToken, error) {
	filter := bson.M{
		"token_hash":  tokenHash,
		"consumed_at": nil,
		"expires_at":  bson.M{"$gt": at},
	}
	update := bson.M{"$set": bson.M{"consumed_at": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc resetTokenDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.rejection(ctx, tokenHash, at)
	}
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *resetTokenRepo) rejection(ctx context.Context, tokenHash string, at time.Time) error {
	var doc resetTokenDoc
	err := r.coll.FindOne(ctx, bson.M{"token_hash": tokenHash}).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrResetTokenInvalid
	case err != nil:
		return fmt.Errorf("lookup reset token: %w", err)
	}

	t := doc.toDomain()
	if !t.Consumed() && t.Expired(at) {
		return domain.ErrResetTokenExpired
	}
	return domain.ErrResetTokenInvalid
}

func (r *resetTokenRepo) RevokeOutstanding(ctx context.Context, accountID string, at time.Time) error {
	filter := bson.M{"account_id": accountID, "consumed_at": nil}
	if _, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"consumed_at": at}}); err != nil {
		return fmt.Errorf("revoke reset tokens: %w", err)
	}
	return nil
}

func (r *resetTokenRepo) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"consumed_at": bson.M{"$ne": nil}},
		bson.M{"expires_at": bson.M{"$lte": cutoff}},
	}}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete stale reset tokens: %w", err)
	}
	return res.DeletedCount, nil
}
