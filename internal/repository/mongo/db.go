package mongo

import (
	"alcyxob/marathon-tracker/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// pings the primary before handing the client back.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewStore wires the Mongo repositories of one database.
func NewStore(client *mongo.Client, dbName string) repository.Store {
	db := client.Database(dbName)
	return repository.Store{
		Definitions: NewMongoDefinitionRepository(db),
		Progress:    NewMongoProgressRepository(db),
		Users:       NewMongoUserRepository(db),
		Close: func(context.Context) error {
			return DisconnectDB(client)
		},
	}
}

// EnsureIndexes creates the indexes of every collection. Call during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := EnsureDefinitionIndexes(ctx, db.Collection(definitionCollectionName)); err != nil {
		return err
	}
	if err := EnsureProgressIndexes(ctx, db.Collection(progressCollectionName)); err != nil {
		return err
	}
	return EnsureUserIndexes(ctx, db.Collection(userCollectionName))
}
