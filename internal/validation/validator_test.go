package validation

import (
	"testing"

	"github.com/bharath13925/street-view-videos-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructValidRoute(t *testing.T) {
	r := models.Route{UserID: "uid", Start: "A", End: "B", Status: models.RouteStatusPending}
	assert.NoError(t, Struct(&r))
}

func TestStructReportsEveryField(t *testing.T) {
	r := models.Route{Status: "bogus"}
	err := Struct(&r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UserID is required")
	assert.Contains(t, err.Error(), "Start is required")
	assert.Contains(t, err.Error(), "Status must be one of")
}

func TestStructDivesIntoFrames(t *testing.T) {
	r := models.Route{
		UserID: "uid", Start: "A", End: "B", Status: models.RouteStatusPending,
		Frames: []models.Frame{{AlertType: "detour"}},
	}
	err := Struct(&r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Frames[0].AlertType")
}

func TestStructUser(t *testing.T) {
	u := models.User{FirebaseUID: "uid", Email: "not-an-email", SignupMethod: models.SignupMethodEmail}
	err := Struct(&u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email must be a valid email")
}
