package lawyerRepo

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

type MongoLawyerRepo struct {
	coll *mongo.Collection
}

func NewMongoLawyerRepo() LawyerRepository {
	repo := &MongoLawyerRepo{coll: database.DB().Collection("lawyers")}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "lawyer_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "specialization", Value: 1}, {Key: "city", Value: 1}}},
	})
	if err != nil {
		zap.L().Warn("lawyer indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoLawyerRepo) List(ctx context.Context, filter ListFilter) ([]models.Lawyer, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Specialization != "" {
		query["specialization"] = filter.Specialization
	}
	if filter.City != "" {
		query["city"] = filter.City
	}
	if filter.VerifiedOnly {
		query["verified"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "experience", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list lawyers: %w", err)
	}
	defer cursor.Close(ctx)

	lawyers := []models.Lawyer{}
	if err := cursor.All(ctx, &lawyers); err != nil {
		return nil, fmt.Errorf("failed to decode lawyers: %w", err)
	}
	return lawyers, nil
}

func (r *MongoLawyerRepo) GetByLawyerID(ctx context.Context, lawyerID string) (*models.Lawyer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var l models.Lawyer
	if err := r.coll.FindOne(ctx, bson.M{"lawyer_id": lawyerID}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch lawyer %s: %w", lawyerID, err)
	}
	return &l, nil
}

func (r *MongoLawyerRepo) set(ctx context.Context, lawyerID string, fields bson.M) (*models.Lawyer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l models.Lawyer
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"lawyer_id": lawyerID}, bson.M{"$set": fields}, opts).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update lawyer %s: %w", lawyerID, err)
	}
	return &l, nil
}

func (r *MongoLawyerRepo) Update(ctx context.Context, lawyerID string, u LawyerUpdate) (*models.Lawyer, error) {
	fields := bson.M{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Specialization != nil {
		fields["specialization"] = *u.Specialization
	}
	if u.Experience != nil {
		fields["experience"] = *u.Experience
	}
	if u.City != nil {
		fields["city"] = *u.City
	}
	if u.ConsultationFee != nil {
		fields["consultation_fee"] = *u.ConsultationFee
	}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if len(fields) == 0 {
		return r.GetByLawyerID(ctx, lawyerID)
	}
	return r.set(ctx, lawyerID, fields)
}

func (r *MongoLawyerRepo) SetVerified(ctx context.Context, lawyerID string, verified bool) (*models.Lawyer, error) {
	return r.set(ctx, lawyerID, bson.M{"verified": verified})
}

func (r *MongoLawyerRepo) Delete(ctx context.Context, lawyerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"lawyer_id": lawyerID})
	if err != nil {
		return fmt.Errorf("failed to delete lawyer %s: %w", lawyerID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
