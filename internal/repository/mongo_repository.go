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

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{collection: db.Collection("carts")}
}

func (m *mongoCartRepository) GetCart(ctx context.Context, tenantDomain, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"domain": tenantDomain, "user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *mongoCartRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()

	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	filter := bson.M{"domain": cart.Domain, "user_id": cart.UserID}
	update := bson.M{"$set": bson.M{
		"domain":         cart.Domain,
		"user_id":        cart.UserID,
		"items":          cart.Items,
		"applied_coupon": cart.AppliedCoupon,
		"last_added_id":  cart.LastAddedID,
		"created_at":     cart.CreatedAt,
		"updated_at":     cart.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *mongoCartRepository) DeleteCart(ctx context.Context, tenantDomain, userID string) error {
	filter := bson.M{"domain": tenantDomain, "user_id": userID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoCartRepository) CreateIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "domain", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := m.collection.Indexes().CreateOne(ctx, index)
	if err != nil {
		return fmt.Errorf("failed to create cart index: %w", err)
	}
	return nil
}
