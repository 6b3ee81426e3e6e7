package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storekit/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPaymentRepository struct {
	collection *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) PaymentSessionRepository {
	return &mongoPaymentRepository{collection: db.Collection("payment_sessions")}
}

func (m *mongoPaymentRepository) InsertSession(ctx context.Context, session *domain.PaymentSession) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to insert payment session: %w", err)
	}
	return nil
}

func (m *mongoPaymentRepository) GetSession(ctx context.Context, id string) (*domain.PaymentSession, error) {
	var session domain.PaymentSession

	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get payment session: %w", err)
	}

	return &session, nil
}

func (m *mongoPaymentRepository) GetSessionByIdempotencyKey(ctx context.Context, key string) (*domain.PaymentSession, error) {
	var session domain.PaymentSession

	err := m.collection.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIdempotencyKeyNotFound
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}

	return &session, nil
}

func (m *mongoPaymentRepository) UpdateSessionStatus(ctx context.Context, id string, status domain.PaymentStatus, gatewayPaymentID string) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if gatewayPaymentID != "" {
		set["gateway_payment_id"] = gatewayPaymentID
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update payment session: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (m *mongoPaymentRepository) CreateIndexes(ctx context.Context) error {
	// Partial: sessions initiated without an idempotency key must not
	// collide on the empty string.
	index := mongo.IndexModel{
		Keys: bson.D{{Key: "idempotency_key", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$gt": ""}}),
	}
	_, err := m.collection.Indexes().CreateOne(ctx, index)
	if err != nil {
		return fmt.Errorf("failed to create payment session index: %w", err)
	}
	return nil
}
