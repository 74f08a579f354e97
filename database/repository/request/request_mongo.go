package requestRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lawdesk/database"
	"lawdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoRequestRepo implements RequestRepository using MongoDB.
type MongoRequestRepo struct {
	coll *mongo.Collection
}

func NewMongoRequestRepo() RequestRepository {
	repo := &MongoRequestRepo{coll: database.DB().Collection("lawyer_requests")}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "lawyer_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		zap.L().Warn("request indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoRequestRepo) Create(ctx context.Context, req *models.LawyerRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

func (r *MongoRequestRepo) GetByID(ctx context.Context, id string) (*models.LawyerRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.LawyerRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch request %s: %w", id, err)
	}
	return &req, nil
}

func (r *MongoRequestRepo) list(ctx context.Context, filter bson.M) ([]models.LawyerRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.LawyerRequest{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %w", err)
	}
	return out, nil
}

func (r *MongoRequestRepo) ListByClient(ctx context.Context, clientID string) ([]models.LawyerRequest, error) {
	return r.list(ctx, bson.M{"client_id": clientID})
}

func (r *MongoRequestRepo) ListByLawyer(ctx context.Context, lawyerID string) ([]models.LawyerRequest, error) {
	return r.list(ctx, bson.M{"lawyer_id": lawyerID})
}

func (r *MongoRequestRepo) UpdateStatus(ctx context.Context, id, from, to string) (*models.LawyerRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.LawyerRequest
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id, "status": from}, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update request %s: %w", id, err)
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStatusConflict
}
