package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartRetention = 30 * 24 * time.Hour

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *MongoRepository) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	var cart domain.Cart

	err := m.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	return &cart, nil
}

func (m *MongoRepository) AddItem(ctx context.Context, sessionID string, item domain.CartItem) (bool, error) {
	filter := bson.M{"session_id": sessionID}

	n, err := m.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check existing cart: %w", err)
	}

	if n == 0 {
		cart := domain.NewCart(sessionID)
		cart.Add(item)

		_, err = m.collection.InsertOne(ctx, cart)
		if err == nil {
			return true, nil
		}
		// another request created the cart first, fall through to $push
		if !mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("failed to create cart with item: %w", err)
		}
	}

	// the $ne guard keeps the push atomic with the membership check
	guarded := bson.M{
		"session_id": sessionID,
		"items.id":   bson.M{"$ne": item.ID},
	}
	update := bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, guarded, update)
	if err != nil {
		return false, fmt.Errorf("failed to add new item: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (m *MongoRepository) RemoveItem(ctx context.Context, sessionID string, itemID string) error {
	filter := bson.M{"session_id": sessionID}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"id": itemID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *MongoRepository) DeleteCart(ctx context.Context, sessionID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(cartRetention.Seconds())),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
