package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bharath13925/street-view-videos-sub000/internal/auth"
	"github.com/bharath13925/street-view-videos-sub000/internal/models"
)

type UserStore interface {
	FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	Upsert(ctx context.Context, u *models.User) (*models.User, error)
}

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// SyncUserData is what the SPA sends right after a Firebase sign-up or
// sign-in. Empty fields fall back to the token's claims; SignupMethod is
// only used when the token's provider is unknown.
type SyncUserData struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	SignupMethod string `json:"signupMethod"`
}

// SyncUser creates the user on first sign-in and refreshes name, email
// and lastLoginAt afterwards.
func (s *UserService) SyncUser(ctx context.Context, id *auth.Identity, data SyncUserData) (*models.User, error) {
	email := strings.TrimSpace(id.Email)
	if email == "" {
		email = strings.TrimSpace(data.Email)
	}
	name := strings.TrimSpace(data.Name)
	if name == "" {
		name = id.Name
	}

	method := signupMethodFor(id.Provider)
	if method == "" {
		method = data.SignupMethod
	}
	if method == "" {
		method = models.SignupMethodEmail
	}

	u := &models.User{
		FirebaseUID:  id.UID,
		Name:         name,
		Email:        email,
		SignupMethod: method,
	}
	if err := validate(u); err != nil {
		return nil, err
	}
	out, err := s.users.Upsert(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}
	return out, nil
}

func (s *UserService) GetMe(ctx context.Context, uid string) (*models.User, error) {
	u, err := s.users.FindByFirebaseUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// signupMethodFor maps the token's sign_in_provider; "" when unknown.
func signupMethodFor(provider string) string {
	switch provider {
	case "google.com":
		return models.SignupMethodGoogle
	case "password":
		return models.SignupMethodEmail
	}
	return ""
}
