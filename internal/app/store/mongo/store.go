// Package mongo implements store.Store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"backbench/internal/app/review"
	"backbench/internal/app/store"
	"backbench/internal/app/user"
)

// Collection names.
const (
	colUsers    = "users"
	colFeedback = "feedbacks"
	colRatings  = "ratings"
)

var _ store.Store = (*Store)(nil)

// Store is a MongoDB store.Store. It owns the client and disconnects it in Close.
type Store struct {
	client *mongod.Client
	db     *mongod.Database
}

// Open connects to uri, ensures indexes in database and returns a ready Store.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongod.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Migrate creates the collection indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			// Sweep of unverified accounts.
			{Keys: bson.D{
				{Key: "verified", Value: 1},
				{Key: "created_at", Value: 1},
			}},
		},
		colRatings: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}
}

func (s *Store) users() *mongod.Collection {
	return s.db.Collection(colUsers)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var m userModel
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&m)
	if errors.Is(err, mongod.ErrNoDocuments) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find user: %w", err)
	}
	return fromUserModel(&m)
}

func (s *Store) Create(ctx context.Context, u *user.User) error {
	_, err := s.users().InsertOne(ctx, toUserModel(u))
	if mongod.IsDuplicateKeyError(err) {
		return store.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("mongo: create user: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, u *user.User) error {
	set := bson.M{
		"username":      u.Username,
		"password_hash": u.PasswordHash,
		"verified":      u.Verified,
	}
	update := bson.M{"$set": set}
	if u.OTP == "" {
		update["$unset"] = bson.M{"otp": ""}
	} else {
		set["otp"] = u.OTP
	}

	res, err := s.users().UpdateOne(ctx, bson.M{"email": u.Email}, update)
	if err != nil {
		return fmt.Errorf("mongo: save user: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func (s *Store) DeleteMany(ctx context.Context, f store.DeleteFilter) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	res, err := s.users().DeleteMany(ctx, deleteFilter(f))
	if err != nil {
		return 0, fmt.Errorf("mongo: delete users: %w", err)
	}
	return res.DeletedCount, nil
}

// deleteFilter renders f as a MongoDB query document.
func deleteFilter(f store.DeleteFilter) bson.M {
	filter := bson.M{}
	if f.Email != "" {
		filter["email"] = f.Email
	}
	if f.UnverifiedOnly {
		filter["verified"] = false
	}
	if !f.CreatedBefore.IsZero() {
		filter["created_at"] = bson.M{"$lt": f.CreatedBefore.UTC()}
	}
	return filter
}

func (s *Store) SaveFeedback(ctx context.Context, f *review.Feedback) error {
	if _, err := s.db.Collection(colFeedback).InsertOne(ctx, toFeedbackModel(f)); err != nil {
		return fmt.Errorf("mongo: save feedback: %w", err)
	}
	return nil
}

func (s *Store) SaveRating(ctx context.Context, r *review.Rating) error {
	if _, err := s.db.Collection(colRatings).InsertOne(ctx, toRatingModel(r)); err != nil {
		return fmt.Errorf("mongo: save rating: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
