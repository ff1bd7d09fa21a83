package index

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements VectorStore on MongoDB Atlas vector search. The
// collection needs a vector index named "vector_index" over the "embedding"
// path.
type MongoStore struct {
	client            *mongo.Client
	collection        *mongo.Collection
	counterCollection *mongo.Collection
}

const mongoCloseTimeout = 5 * time.Second

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	db := client.Database(database)
	return &MongoStore{
		client:            client,
		collection:        db.Collection(collection),
		counterCollection: db.Collection("counters"),
	}, nil
}

type mongoToolDocument struct {
	ID        int64     `bson:"_id"`
	Tool      string    `bson:"tool"`
	Document  string    `bson:"document"`
	Embedding []float64 `bson:"embedding"`
}

func (d mongoToolDocument) toRecord() ToolRecord {
	return ToolRecord{
		ID:        d.ID,
		Tool:      d.Tool,
		Document:  d.Document,
		Embedding: float32Embedding(d.Embedding),
	}
}

func (ms *MongoStore) Index(ctx context.Context, records []ToolRecord) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	for _, rec := range records {
		id, err := ms.nextID(ctx)
		if err != nil {
			return err
		}
		doc := mongoToolDocument{
			ID:        id,
			Tool:      rec.Tool,
			Document:  rec.Document,
			Embedding: float64Embedding(rec.Embedding),
		}
		// Re-indexing a tool replaces its previous document.
		if _, err := ms.collection.DeleteMany(ctx, bson.M{"tool": rec.Tool}); err != nil {
			return err
		}
		if _, err := ms.collection.InsertOne(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (ms *MongoStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]ToolRecord, error) {
	if ms == nil || ms.collection == nil || k <= 0 {
		return nil, nil
	}

	pipeline := mongo.Pipeline{
		{
			{Key: "$vectorSearch", Value: bson.D{
				{Key: "index", Value: "vector_index"},
				{Key: "path", Value: "embedding"},
				{Key: "queryVector", Value: float64Embedding(queryEmbedding)},
				{Key: "numCandidates", Value: int64(k * 10)}, // oversample for accuracy
				{Key: "limit", Value: int64(k)},
			}},
		},
		{
			{Key: "$addFields", Value: bson.D{
				{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
			}},
		},
	}

	cursor, err := ms.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []ToolRecord
	for cursor.Next(ctx) {
		var doc struct {
			mongoToolDocument `bson:",inline"`
			Score             float64 `bson:"score"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		rec := doc.toRecord()
		rec.Score = doc.Score
		records = append(records, rec)
	}
	return records, cursor.Err()
}

func (ms *MongoStore) Count(ctx context.Context) (int, error) {
	if ms == nil || ms.collection == nil {
		return 0, nil
	}
	count, err := ms.collection.CountDocuments(ctx, bson.M{})
	return int(count), err
}

// Close disconnects from MongoDB.
func (ms *MongoStore) Close() error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

func (ms *MongoStore) nextID(ctx context.Context) (int64, error) {
	if ms.counterCollection == nil {
		return 0, errors.New("mongo counter collection is not configured")
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	res := ms.counterCollection.FindOneAndUpdate(ctx, bson.M{"_id": ms.collection.Name()}, bson.M{"$inc": bson.M{"seq": 1}}, opts)
	if res.Err() != nil {
		return 0, res.Err()
	}
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

func float64Embedding(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}

func float32Embedding(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}

var _ VectorStore = (*MongoStore)(nil)
