package service

import (
	"context"
	"testing"

	"github.com/bharath13925/street-view-videos-sub000/internal/auth"
	"github.com/bharath13925/street-view-videos-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	byUID map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byUID: map[string]*models.User{}}
}

func (f *fakeUserStore) FindByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return f.byUID[uid], nil
}

func (f *fakeUserStore) Upsert(_ context.Context, u *models.User) (*models.User, error) {
	if prev, ok := f.byUID[u.FirebaseUID]; ok {
		prev.Email = u.Email
		if u.Name != "" {
			prev.Name = u.Name
		}
		return prev, nil
	}
	cp := *u
	f.byUID[u.FirebaseUID] = &cp
	return &cp, nil
}

func TestSyncUserGoogleSignup(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	u, err := svc.SyncUser(context.Background(),
		&auth.Identity{UID: "u1", Email: "a@example.com", Name: "Ana", Provider: "google.com"},
		SyncUserData{})
	require.NoError(t, err)
	assert.Equal(t, models.SignupMethodGoogle, u.SignupMethod)
	assert.Equal(t, "Ana", u.Name)
}

func TestSyncUserKeepsSignupMethod(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	_, err := svc.SyncUser(ctx, &auth.Identity{UID: "u1", Email: "a@example.com", Provider: "password"}, SyncUserData{Name: "Ana"})
	require.NoError(t, err)

	u, err := svc.SyncUser(ctx, &auth.Identity{UID: "u1", Email: "a@example.com", Provider: "google.com"}, SyncUserData{})
	require.NoError(t, err)
	assert.Equal(t, models.SignupMethodEmail, u.SignupMethod)
	assert.Equal(t, "Ana", u.Name)
}

func TestSyncUserPrefersTokenProvider(t *testing.T) {
	cases := []struct {
		name     string
		provider string
		body     string
		want     string
	}{
		{"token wins over body", "google.com", models.SignupMethodEmail, models.SignupMethodGoogle},
		{"password provider", "password", models.SignupMethodGoogle, models.SignupMethodEmail},
		{"unknown provider uses body", "", models.SignupMethodGoogle, models.SignupMethodGoogle},
		{"unknown provider without body", "phone", "", models.SignupMethodEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewUserService(newFakeUserStore())
			u, err := svc.SyncUser(context.Background(),
				&auth.Identity{UID: "u1", Email: "a@example.com", Provider: tc.provider},
				SyncUserData{SignupMethod: tc.body})
			require.NoError(t, err)
			assert.Equal(t, tc.want, u.SignupMethod)
		})
	}
}

func TestSyncUserRejectsBadInput(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	_, err := svc.SyncUser(context.Background(), &auth.Identity{UID: "u1"}, SyncUserData{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SyncUser(context.Background(), &auth.Identity{UID: "u1", Email: "a@example.com"}, SyncUserData{SignupMethod: "github"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetMe(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	_, err := svc.GetMe(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	store.byUID["u1"] = &models.User{FirebaseUID: "u1", Email: "a@example.com"}
	u, err := svc.GetMe(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
}
