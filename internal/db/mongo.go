package db

import (
	"context"
	"errors"
	"time"

	"github.com/bharath13925/street-view-videos-sub000/internal/config"
	"github.com/bharath13925/street-view-videos-sub000/internal/logging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RoutesCollection = "routes"
	UsersCollection  = "users"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

func InitMongo(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logging.Fatal().Err(err).Msg("[mongo] connect failed")
	}

	if err := client.Ping(ctx, nil); err != nil {
		logging.Fatal().Err(err).Msg("[mongo] ping failed")
	}

	mongoClient = client
	mongoDB = client.Database(cfg.MongoDB)
	logging.Info().Str("db", cfg.MongoDB).Msg("[mongo] connected")

	if err := EnsureIndexes(ctx, mongoDB); err != nil {
		logging.Warn().Err(err).Msg("[mongo] index creation failed")
	}
}

// EnsureIndexes creates the indexes the repositories query on.
func EnsureIndexes(ctx context.Context, d *mongo.Database) error {
	_, err := d.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "firebaseUid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = d.Collection(RoutesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "pythonRouteId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "start", Value: 1}, {Key: "end", Value: 1}, {Key: "updatedAt", Value: -1}}},
	})
	return err
}

func Ping(ctx context.Context) error {
	if mongoClient == nil {
		return errors.New("mongo not initialised")
	}
	return mongoClient.Ping(ctx, nil)
}

func DB() *mongo.Database {
	return mongoDB
}

func Disconnect(ctx context.Context) {
	if mongoClient == nil {
		return
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		logging.Warn().Err(err).Msg("[mongo] disconnect failed")
	}
}
