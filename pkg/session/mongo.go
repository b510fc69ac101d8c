package session

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists sessions in a MongoDB collection. Expiry is enforced
// both by a TTL index on expiresAt and by an explicit check on read, since
// the Mongo TTL monitor only runs periodically.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// NewMongoStore connects to MongoDB and ensures the TTL index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "scope"
	}
	if cfg.Collection == "" {
		cfg.Collection = "view_sessions"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &MongoStore{client: client, collection: coll}, nil
}

// Get retrieves a session by ID.
func (s *MongoStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return &sess, nil
}

// Set upserts a session.
func (s *MongoStore) Set(ctx context.Context, session *Session) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": session.ID},
		session,
		options.Replace().SetUpsert(true))
	return err
}

// Delete removes a session.
func (s *MongoStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}

// Cleanup removes already-expired sessions eagerly.
func (s *MongoStore) Cleanup(ctx context.Context) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{
		"expiresAt": bson.M{"$lt": time.Now()},
	})
	return err
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
