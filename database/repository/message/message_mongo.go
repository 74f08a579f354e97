package messageRepo

import (
	"context"
	"fmt"
	"time"

	"lawdesk/database"
	"lawdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoMessageRepo implements MessageRepository using MongoDB.
type MongoMessageRepo struct {
	coll *mongo.Collection
}

// NewMongoMessageRepo creates a message repository on the application database.
func NewMongoMessageRepo() MessageRepository {
	repo := &MongoMessageRepo{coll: database.DB().Collection("messages")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("message indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoMessageRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "timestamp", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Save inserts msg unless a message with the same id already exists.
func (r *MongoMessageRepo) Save(ctx context.Context, msg *models.Message) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": msg.ID}, bson.M{"$setOnInsert": msg}, opts)
	if err != nil {
		return false, fmt.Errorf("failed to save message %s: %w", msg.ID, err)
	}
	return res.UpsertedCount == 1, nil
}

// History lists a booking's messages oldest first.
func (r *MongoMessageRepo) History(ctx context.Context, bookingID string) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", bookingID, err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
