package repository

import (
	"context"
	"time"

	"github.com/bharath13925/street-view-videos-sub000/internal/db"
	"github.com/bharath13925/street-view-videos-sub000/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository() *UserRepository {
	return &UserRepository{col: db.DB().Collection(db.UsersCollection)}
}

func (r *UserRepository) FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"firebaseUid": uid}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert writes u keyed by FirebaseUID. createdAt and signupMethod are
// only set on insert; the stored document is returned.
func (r *UserRepository) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()

	set := bson.M{
		"email":       u.Email,
		"updatedAt":   now,
		"lastLoginAt": now,
	}
	if u.Name != "" {
		set["name"] = u.Name
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"firebaseUid":  u.FirebaseUID,
			"signupMethod": u.SignupMethod,
			"createdAt":    now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"firebaseUid": u.FirebaseUID}, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
