package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
	"github.com/bharath13925/street-view-videos-sub000/internal/models"
)

// RouteScanner is the slice of repository.RouteRepository the migration uses.
type RouteScanner interface {
	Each(ctx context.Context, fn func(*models.Route) error) error
	UpdateRaw(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, userID string, id primitive.ObjectID) (bool, error)
}

type MigrationSummary struct {
	Scanned   int `json:"scanned"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
	Removed   int `json:"removed"`
}

type routeKey struct{ userID, pythonRouteID string }

type routeVersion struct {
	id        primitive.ObjectID
	userID    string
	updatedAt time.Time
}

// MigrationService repairs route documents written by older versions:
// Python route ids, Windows-style paths, video URLs and empty statuses.
type MigrationService struct {
	routes RouteScanner
}

func NewMigrationService(routes RouteScanner) *MigrationService {
	return &MigrationService{routes: routes}
}

// RepairRoutes scans every route and writes the fields that need fixing,
// then removes all but the newest document per (userId, pythonRouteId).
// With dryRun nothing is written; the summary counts what would change.
// A failed write is logged and counted, the scan continues.
func (s *MigrationService) RepairRoutes(ctx context.Context, dryRun bool) (MigrationSummary, error) {
	var sum MigrationSummary
	newest := map[routeKey]routeVersion{}
	var stale []routeVersion

	err := s.routes.Each(ctx, func(r *models.Route) error {
		sum.Scanned++
		set := repairRoute(r)

		pyID := r.PythonRouteID
		if v, ok := set["pythonRouteId"].(string); ok {
			pyID = v
		}
		k := routeKey{r.UserID, pyID}
		cur := routeVersion{id: r.ID, userID: r.UserID, updatedAt: r.UpdatedAt}
		if prev, ok := newest[k]; !ok {
			newest[k] = cur
		} else if cur.updatedAt.After(prev.updatedAt) {
			newest[k] = cur
			stale = append(stale, prev)
		} else {
			stale = append(stale, cur)
		}

		if len(set) == 0 {
			sum.Unchanged++
			return nil
		}

		fields := make([]string, 0, len(set))
		for k := range set {
			fields = append(fields, k)
		}
		ev := logging.Info().Str("id", r.ID.Hex()).Strs("fields", fields).Bool("dry_run", dryRun)

		if dryRun {
			ev.Msg("[migrate] would update route")
			sum.Updated++
			return nil
		}
		if err := s.routes.UpdateRaw(ctx, r.ID, set); err != nil {
			logging.Error().Err(err).Str("id", r.ID.Hex()).Msg("[migrate] update failed")
			sum.Failed++
			return nil
		}
		ev.Msg("[migrate] updated route")
		sum.Updated++
		return nil
	})
	if err != nil {
		return sum, err
	}

	for _, v := range stale {
		if dryRun {
			logging.Info().Str("id", v.id.Hex()).Msg("[migrate] would remove duplicate route")
			sum.Removed++
			continue
		}
		if _, err := s.routes.Delete(ctx, v.userID, v.id); err != nil {
			logging.Error().Err(err).Str("id", v.id.Hex()).Msg("[migrate] removing duplicate failed")
			sum.Failed++
			continue
		}
		logging.Info().Str("id", v.id.Hex()).Msg("[migrate] removed duplicate route")
		sum.Removed++
	}
	return sum, nil
}

// repairRoute returns the $set document that brings r up to date, empty
// when nothing changes.
func repairRoute(r *models.Route) bson.M {
	set := bson.M{}

	pyID := r.PythonRouteID
	if want := models.PythonRouteID(r.Start, r.End); r.Start != "" && r.End != "" && pyID != want {
		pyID = want
		set["pythonRouteId"] = want
	}

	framesChanged := false
	frames := make([]models.Frame, len(r.Frames))
	for i, f := range r.Frames {
		if p := models.NormalizeFramePath(f.Filename); p != f.Filename {
			f.Filename = p
			framesChanged = true
		}
		frames[i] = f
	}
	if framesChanged {
		set["frames"] = frames
	}

	if v := r.Video; v != nil && v.Filename != "" {
		if p := models.NormalizeFramePath(v.Path); p != v.Path {
			set["video.path"] = p
		}
		if u := models.VideoURL(pyID, v.Filename); u != v.URL {
			set["video.url"] = u
		}
	}

	if r.Status == "" {
		switch {
		case r.Video != nil && r.Video.Filename != "":
			set["status"] = models.RouteStatusCompleted
		case len(r.Frames) > 0:
			set["status"] = models.RouteStatusFramesGenerated
		default:
			set["status"] = models.RouteStatusPending
		}
	}
	return set
}
