package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bharath13925/street-view-videos-sub000/internal/models"
)

type fakeScanner struct {
	routes  []*models.Route
	updates map[primitive.ObjectID]bson.M
	deleted []primitive.ObjectID
	failOn  primitive.ObjectID
}

func (f *fakeScanner) Each(_ context.Context, fn func(*models.Route) error) error {
	for _, r := range f.routes {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeScanner) UpdateRaw(_ context.Context, id primitive.ObjectID, set bson.M) error {
	if id == f.failOn {
		return errors.New("write conflict")
	}
	if f.updates == nil {
		f.updates = map[primitive.ObjectID]bson.M{}
	}
	f.updates[id] = set
	return nil
}

func (f *fakeScanner) Delete(_ context.Context, _ string, id primitive.ObjectID) (bool, error) {
	f.deleted = append(f.deleted, id)
	return true, nil
}

func legacyRoute() *models.Route {
	return &models.Route{
		ID:            primitive.NewObjectID(),
		Start:         "MG Road",
		End:           "Indiranagar",
		PythonRouteID: "MG Road_Indiranagar",
		Frames: []models.Frame{
			{Filename: `C:\app\frames\MG_Road_Indiranagar\frame_1.jpg`},
			{Filename: "frames/MG_Road_Indiranagar/frame_2.jpg"},
		},
		Video: &models.VideoInfo{
			Filename: "MG_Road_Indiranagar_dynamic_30fps.mp4",
			Path:     `frames\\MG_Road_Indiranagar\\videos\\MG_Road_Indiranagar_dynamic_30fps.mp4`,
			URL:      "http://localhost:8000/videos/x/y.mp4",
		},
	}
}

func TestRepairRoute(t *testing.T) {
	set := repairRoute(legacyRoute())

	assert.Equal(t, "MG_Road_Indiranagar", set["pythonRouteId"])
	assert.Equal(t, "frames/MG_Road_Indiranagar/videos/MG_Road_Indiranagar_dynamic_30fps.mp4", set["video.path"])
	assert.Equal(t, "/api/videos/MG_Road_Indiranagar/MG_Road_Indiranagar_dynamic_30fps.mp4", set["video.url"])
	assert.Equal(t, models.RouteStatusCompleted, set["status"])

	frames, ok := set["frames"].([]models.Frame)
	require.True(t, ok)
	assert.Equal(t, "frames/MG_Road_Indiranagar/frame_1.jpg", frames[0].Filename)
	assert.Equal(t, "frames/MG_Road_Indiranagar/frame_2.jpg", frames[1].Filename)
}

func TestRepairRouteStatusFallbacks(t *testing.T) {
	r := &models.Route{Start: "A", End: "B", PythonRouteID: "A_B", Frames: []models.Frame{{Filename: "frames/A_B/frame_1.jpg"}}}
	assert.Equal(t, bson.M{"status": models.RouteStatusFramesGenerated}, repairRoute(r))

	r = &models.Route{Start: "A", End: "B", PythonRouteID: "A_B"}
	assert.Equal(t, bson.M{"status": models.RouteStatusPending}, repairRoute(r))

	r.Status = models.RouteStatusFailed
	assert.Empty(t, repairRoute(r))
}

func TestRepairRoutes(t *testing.T) {
	clean := &models.Route{ID: primitive.NewObjectID(), Start: "A", End: "B", PythonRouteID: "A_B", Status: models.RouteStatusPending}
	broken := legacyRoute()
	broken.UserID = "u1"
	failing := legacyRoute()
	failing.UserID = "u2"

	scanner := &fakeScanner{routes: []*models.Route{clean, broken, failing}, failOn: failing.ID}
	svc := NewMigrationService(scanner)

	sum, err := svc.RepairRoutes(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, MigrationSummary{Scanned: 3, Updated: 2, Unchanged: 1}, sum)
	assert.Empty(t, scanner.updates)

	sum, err = svc.RepairRoutes(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, MigrationSummary{Scanned: 3, Updated: 1, Unchanged: 1, Failed: 1}, sum)
	assert.Contains(t, scanner.updates, broken.ID)
	assert.NotContains(t, scanner.updates, clean.ID)
}

func TestRepairRoutesRemovesDuplicates(t *testing.T) {
	now := time.Now()
	older := &models.Route{ID: primitive.NewObjectID(), UserID: "u1", Start: "A", End: "B", PythonRouteID: "A_B", Status: models.RouteStatusPending, UpdatedAt: now.Add(-time.Hour)}
	newer := &models.Route{ID: primitive.NewObjectID(), UserID: "u1", Start: "A", End: "B", PythonRouteID: "A_B", Status: models.RouteStatusCompleted, UpdatedAt: now}
	// same route once its id is repaired
	legacy := &models.Route{ID: primitive.NewObjectID(), UserID: "u1", Start: "A", End: "B", PythonRouteID: "A B", Status: models.RouteStatusPending, UpdatedAt: now.Add(-2 * time.Hour)}
	otherUser := &models.Route{ID: primitive.NewObjectID(), UserID: "u2", Start: "A", End: "B", PythonRouteID: "A_B", Status: models.RouteStatusPending}

	scanner := &fakeScanner{routes: []*models.Route{older, newer, legacy, otherUser}}
	svc := NewMigrationService(scanner)

	sum, err := svc.RepairRoutes(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Removed)
	assert.Empty(t, scanner.deleted)

	sum, err = svc.RepairRoutes(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Removed)
	assert.ElementsMatch(t, []primitive.ObjectID{older.ID, legacy.ID}, scanner.deleted)
}
