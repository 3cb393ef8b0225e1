package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/gantry/pkg/observability"
)

// MongoConfig configures a MongoDB-backed snapshot store.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database name. Defaults to "gantry".
	Database string

	// Collection is the collection name. Defaults to "snapshots".
	Collection string
}

// MongoStore keeps snapshots in a MongoDB collection, one document per
// snapshot with the encoded engine as a binary field. Suitable for durable
// storage of trained engines served by multiple instances.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "gantry"
	}
	if cfg.Collection == "" {
		cfg.Collection = "snapshots"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnSave(ctx, "mongo", len(snap.Data), time.Since(start), err) }()

	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": snap.ID},
		snap,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, id uuid.UUID) (snap *Snapshot, err error) {
	start := time.Now()
	defer func() {
		size := 0
		if snap != nil {
			size = len(snap.Data)
		}
		observability.Store().OnLoad(ctx, "mongo", size, time.Since(start), err)
	}()

	var out Snapshot
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return &out, nil
}

func (s *MongoStore) List(ctx context.Context) ([]*Snapshot, error) {
	// Payloads can be large; project them out of listings.
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.M{"created_at": -1})

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer cur.Close(ctx)

	var snaps []*Snapshot
	if err := cur.All(ctx, &snaps); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}
	return snaps, nil
}

func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { observability.Store().OnDelete(ctx, "mongo", time.Since(start), err) }()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
