package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/traceband/traceband/pkg/errors"
)

const tracesCollection = "traces"

// MongoStore is a MongoDB-backed trace catalog for deployments where
// several server instances share one registry. Trace names are document
// ids, so Put is an idempotent upsert.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to connect to mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "mongodb is unreachable")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(tracesCollection),
	}, nil
}

// Put registers a trace, replacing any existing entry with the same name.
func (s *MongoStore) Put(ctx context.Context, info TraceInfo) error {
	if err := validateInfo(info); err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": info.Name}, info, opts); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to register trace %q", info.Name)
	}
	return nil
}

// Get returns the trace registered under name.
func (s *MongoStore) Get(ctx context.Context, name string) (TraceInfo, error) {
	var info TraceInfo
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&info)
	if err == mongo.ErrNoDocuments {
		return TraceInfo{}, errors.New(errors.ErrCodeTraceNotFound, "trace %q is not registered", name)
	}
	if err != nil {
		return TraceInfo{}, errors.Wrap(errors.ErrCodeStore, err, "failed to look up trace %q", name)
	}
	return info, nil
}

// List returns all registered traces sorted by name.
func (s *MongoStore) List(ctx context.Context) ([]TraceInfo, error) {
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to list traces")
	}
	defer cursor.Close(ctx)

	var out []TraceInfo
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to decode trace listing")
	}
	return out, nil
}

// Delete removes the trace registered under name.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to delete trace %q", name)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeTraceNotFound, "trace %q is not registered", name)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
