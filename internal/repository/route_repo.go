package repository

import (
	"context"
	"time"

	"github.com/bharath13925/street-view-videos-sub000/internal/db"
	"github.com/bharath13925/street-view-videos-sub000/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RouteRepository struct {
	col *mongo.Collection
}

func NewRouteRepository() *RouteRepository {
	return &RouteRepository{col: db.DB().Collection(db.RoutesCollection)}
}

// optionalRouteFields are dropped from the stored document when the new
// version leaves them empty.
var optionalRouteFields = []string{
	"voHeadings", "video", "processingStats", "navigationStats", "directionsData", "source", "error",
}

// Upsert writes route as the one document for (userId, pythonRouteId),
// creating it when missing. route.ID and route.CreatedAt are taken from
// the stored document.
func (r *RouteRepository) Upsert(ctx context.Context, route *models.Route) error {
	raw, err := bson.Marshal(route)
	if err != nil {
		return err
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return err
	}
	delete(set, "_id")
	delete(set, "createdAt")

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": route.CreatedAt},
	}
	unset := bson.M{}
	for _, f := range optionalRouteFields {
		if _, ok := set[f]; !ok {
			unset[f] = ""
		}
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	filter := bson.M{"userId": route.UserID, "pythonRouteId": route.PythonRouteID}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.Route
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// lost an insert race on the unique index; the document exists now
		err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	}
	if err != nil {
		return err
	}
	route.ID = stored.ID
	route.CreatedAt = stored.CreatedAt
	return nil
}

// Replace overwrites the whole document with route.
func (r *RouteRepository) Replace(ctx context.Context, route *models.Route) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": route.ID}, route)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *RouteRepository) FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Route, error) {
	return r.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (r *RouteRepository) FindByPythonID(ctx context.Context, userID, pythonRouteID string) (*models.Route, error) {
	return r.findOne(ctx, bson.M{"userId": userID, "pythonRouteId": pythonRouteID})
}

// FindLatestWithVideo returns the most recently updated route for
// start/end that has a video, from any user.
func (r *RouteRepository) FindLatestWithVideo(ctx context.Context, start, end string) (*models.Route, error) {
	filter := bson.M{
		"start":          start,
		"end":            end,
		"video.filename": bson.M{"$exists": true, "$ne": ""},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return r.findOne(ctx, filter, opts)
}

func (r *RouteRepository) FindByUser(ctx context.Context, userID string, limit, offset int) ([]models.Route, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"directionsData": 0, "voHeadings": 0})

	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Route
	for cur.Next(ctx) {
		var route models.Route
		if err := cur.Decode(&route); err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	return out, cur.Err()
}

// MarkFailed records a failed step without touching the stored frames.
func (r *RouteRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, msg string) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    models.RouteStatusFailed,
		"error":     msg,
		"updatedAt": time.Now().UTC(),
	}})
	return err
}

// ClearVideo drops video metadata whose file is gone from the service.
func (r *RouteRepository) ClearVideo(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$unset": bson.M{"video": ""},
		"$set":   bson.M{"status": models.RouteStatusInterpolated, "updatedAt": time.Now().UTC()},
	})
	return err
}

func (r *RouteRepository) Delete(ctx context.Context, userID string, id primitive.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Each streams every route document to fn, stopping at the first error.
func (r *RouteRepository) Each(ctx context.Context, fn func(*models.Route) error) error {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var route models.Route
		if err := cur.Decode(&route); err != nil {
			return err
		}
		if err := fn(&route); err != nil {
			return err
		}
	}
	return cur.Err()
}

// UpdateRaw applies a $set to one document; used by the migration.
func (r *RouteRepository) UpdateRaw(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

func (r *RouteRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Route, error) {
	var route models.Route
	err := r.col.FindOne(ctx, filter, opts...).Decode(&route)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &route, nil
}
