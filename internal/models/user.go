package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SignupMethodEmail  = "email"
	SignupMethodGoogle = "google"
)

// User is the document for collection "users", keyed by Firebase UID.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirebaseUID  string             `json:"firebaseUid" bson:"firebaseUid" validate:"required"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email" validate:"required,email"`
	SignupMethod string             `json:"signupMethod" bson:"signupMethod" validate:"oneof=email google"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
	LastLoginAt  time.Time          `json:"lastLoginAt" bson:"lastLoginAt"`
}
