package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const recordsCollection = "asset_records"

type mongoRecord struct {
	ID        string    `bson:"_id"`
	Category  string    `bson:"category"`
	RecordID  string    `bson:"record_id"`
	CreatedAt time.Time `bson:"created_at"`
	Payload   bson.Raw  `bson:"payload"`
}

// MongoRecordStore keeps metadata records in a single MongoDB collection
type MongoRecordStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// ConnectMongo initializes the MongoDB connection
func ConnectMongo(ctx context.Context, uri, database string) (*MongoRecordStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	coll := client.Database(database).Collection(recordsCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "record_id", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &MongoRecordStore{client: client, collection: coll}, nil
}

func (m *MongoRecordStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func mongoKey(category Category, id string) string {
	return string(category) + "/" + id
}

func (m *MongoRecordStore) Put(ctx context.Context, category Category, id string, value any) error {
	payload, err := bson.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = m.collection.InsertOne(ctx, mongoRecord{
		ID:        mongoKey(category, id),
		Category:  string(category),
		RecordID:  id,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (m *MongoRecordStore) Get(ctx context.Context, category Category, id string, out any) error {
	var rec mongoRecord
	err := m.collection.FindOne(ctx, bson.M{"_id": mongoKey(category, id)}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find record: %w", err)
	}
	if err := bson.Unmarshal(rec.Payload, out); err != nil {
		return fmt.Errorf("decode record %s: %w", id, err)
	}
	return nil
}

func (m *MongoRecordStore) List(ctx context.Context, category Category) ([]string, error) {
	findOptions := options.Find().
		SetProjection(bson.M{"record_id": 1}).
		SetSort(bson.D{{Key: "record_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{"category": string(category)}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		RecordID string `bson:"record_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode record ids: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.RecordID)
	}
	return ids, nil
}
