// internal/storage/mongo_store.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Annany2002/arteesan-backend/internal/core"
)

const mongoIDKey = "_id"

// MongoConfig holds MongoDB store configuration.
type MongoConfig struct {
	URI              string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// MongoStore keeps each collection in a MongoDB collection of the same name.
type MongoStore struct {
	client   *mongo.Client
	database string
	log      logrus.FieldLogger
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
}

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
// It does not create collections or indexes.
func ConnectMongo(cfg MongoConfig, log logrus.FieldLogger) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.WithField("database", cfg.Database).Info("Storage: MongoDB connection established")
	return &MongoStore{
		client:   client,
		database: cfg.Database,
		log:      log.WithField("store", storeMongoDB),
		timeout:  cfg.OperationTimeout,
	}, nil
}

func (m *MongoStore) collection(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}

// Find runs q with native skip, limit, sort and projection.
func (m *MongoStore) Find(ctx context.Context, q core.FindQuery) ([]core.Document, error) {
	defer observeOperation(storeMongoDB, "find", time.Now())

	opts := options.Find().SetSort(mongoSort(q.Sort))
	if projection := mongoProjection(q.Projection); projection != nil {
		opts.SetProjection(projection)
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	opCtx, cancel := m.withOperationTimeout(ctx)
	defer cancel()

	cursor, err := m.collection(q.Collection).Find(opCtx, mongoFilter(q.Filter), opts)
	if err != nil {
		m.log.WithField("collection", q.Collection).Errorf("Storage: Failed find: %v", err)
		return nil, fmt.Errorf("mongodb error listing %s: %w", q.Collection, err)
	}
	var raw []bson.M
	if err := cursor.All(opCtx, &raw); err != nil {
		m.log.WithField("collection", q.Collection).Errorf("Storage: Failed reading cursor: %v", err)
		return nil, fmt.Errorf("mongodb error reading %s: %w", q.Collection, err)
	}

	docs := make([]core.Document, 0, len(raw))
	for _, doc := range raw {
		docs = append(docs, normalizeDocument(doc))
	}
	return docs, nil
}

// Count returns the number of documents matching filter.
func (m *MongoStore) Count(ctx context.Context, collection string, filter core.Filter) (int64, error) {
	defer observeOperation(storeMongoDB, "count", time.Now())

	opCtx, cancel := m.withOperationTimeout(ctx)
	defer cancel()

	total, err := m.collection(collection).CountDocuments(opCtx, mongoFilter(filter))
	if err != nil {
		m.log.WithField("collection", collection).Errorf("Storage: Failed count: %v", err)
		return 0, fmt.Errorf("mongodb error counting %s: %w", collection, err)
	}
	return total, nil
}

// InsertOne stores a copy of doc; the generated ObjectID becomes its id.
func (m *MongoStore) InsertOne(ctx context.Context, collection string, doc core.Document) (core.Document, error) {
	defer observeOperation(storeMongoDB, "insert", time.Now())

	stored := prepareInsert(doc, time.Now())
	oid := primitive.NewObjectID()
	insert := bson.M{mongoIDKey: oid}
	for k, v := range stored {
		insert[k] = v
	}

	opCtx, cancel := m.withOperationTimeout(ctx)
	defer cancel()

	if _, err := m.collection(collection).InsertOne(opCtx, insert); err != nil {
		m.log.WithField("collection", collection).Errorf("Storage: Failed insert: %v", err)
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateDocument
		}
		return nil, fmt.Errorf("mongodb error during insert: %w", err)
	}

	stored[IDKey] = oid.Hex()
	return stored, nil
}

func (m *MongoStore) FindOne(ctx context.Context, collection string, filter core.Filter, projection []string) (core.Document, error) {
	defer observeOperation(storeMongoDB, "find_one", time.Now())

	opts := options.FindOne()
	if p := mongoProjection(projection); p != nil {
		opts.SetProjection(p)
	}

	opCtx, cancel := m.withOperationTimeout(ctx)
	defer cancel()

	var out bson.M
	err := m.collection(collection).FindOne(opCtx, mongoFilter(filter), opts).Decode(&out)
	if err != nil {
		return nil, m.singleResultError(collection, "find", err)
	}
	return normalizeDocument(out), nil
}

// UpdateOne applies $set to the first match and returns the updated document.
func (m *MongoStore) UpdateOne(ctx context.Context, collection string, filter core.Filter, set core.Document) (core.Document, error) {
	defer observeOperation(storeMongoDB, "update", time.Now())

	fields := bson.M{}
	for k, v := range set {
		if k == IDKey || k == mongoIDKey {
			continue
		}
		fields[k] = v
	}

	opCtx, cancel := m.withOperationTimeout(ctx)
	defer cancel()

	var out bson.M
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.collection(collection).FindOneAndUpdate(opCtx, mongoFilter(filter), bson.M{"$set": fields}, opts).Decode(&out)
	if err != nil {
		return nil, m.singleResultError(collection, "update", err)
	}
	return normalizeDocument(out), nil
}

// DeleteOne removes the first match and returns it.
func (m *MongoStore) DeleteOne(ctx context.Context, collection string, filter core.Filter) (core.Document, error) {
	defer observeOperation(storeMongoDB, "delete", time.Now())

	opCtx, cancel := m.withOperationTimeout(ctx)
	defer cancel()

	var out bson.M
	err := m.collection(collection).FindOneAndDelete(opCtx, mongoFilter(filter)).Decode(&out)
	if err != nil {
		return nil, m.singleResultError(collection, "delete", err)
	}
	return normalizeDocument(out), nil
}

func (m *MongoStore) singleResultError(collection, op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrDocumentNotFound
	}
	m.log.WithField("collection", collection).Errorf("Storage: Failed %s: %v", op, err)
	return fmt.Errorf("mongodb error during %s: %w", op, err)
}

func (m *MongoStore) EnsureCollection(ctx context.Context, name string) error {
	opCtx, cancel := m.withOperationTimeout(ctx)
	defer cancel()
	_, err := m.collection(name).CountDocuments(opCtx, bson.D{})
	return err
}

func (m *MongoStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return fmt.Errorf("mongodb store is closed")
	}
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoStore) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close mongodb connection: %w", err)
	}
	return nil
}

func (m *MongoStore) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}

// mongoFilter keeps term order. The id term targets _id; a string value also
// matches the numeric or boolean value it spells.
func mongoFilter(filter core.Filter) bson.D {
	out := bson.D{}
	for _, term := range filter {
		if term.Field == IDKey {
			out = append(out, bson.E{Key: mongoIDKey, Value: objectIDValue(term.Value)})
			continue
		}
		s, ok := term.Value.(string)
		if !ok {
			out = append(out, bson.E{Key: term.Field, Value: term.Value})
			continue
		}
		candidates := stringCandidates(s)
		if len(candidates) == 1 {
			out = append(out, bson.E{Key: term.Field, Value: s})
			continue
		}
		out = append(out, bson.E{Key: term.Field, Value: bson.M{"$in": candidates}})
	}
	return out
}

// objectIDValue parses a hex id; anything else matches no document.
func objectIDValue(v any) any {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id
	case string:
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			return oid
		}
	}
	return bson.M{"$in": bson.A{}}
}

func stringCandidates(s string) bson.A {
	out := bson.A{s}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		out = append(out, n)
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		out = append(out, f)
	}
	switch s {
	case "true":
		out = append(out, true)
	case "false":
		out = append(out, false)
	}
	return out
}

// mongoSort appends _id so pages are stable across equal sort keys.
func mongoSort(keys []core.SortKey) bson.D {
	out := bson.D{}
	hasID := false
	for _, key := range keys {
		field := key.Field
		if field == IDKey {
			field = mongoIDKey
		}
		hasID = hasID || field == mongoIDKey
		out = append(out, bson.E{Key: field, Value: int(key.Direction)})
	}
	if !hasID {
		out = append(out, bson.E{Key: mongoIDKey, Value: 1})
	}
	return out
}

func mongoProjection(fields []string) bson.M {
	if len(fields) == 0 {
		return nil
	}
	out := bson.M{}
	for _, field := range fields {
		if field == IDKey {
			field = mongoIDKey
		}
		out[field] = 1
	}
	return out
}

// normalizeDocument exposes _id as id and converts driver types to plain Go values.
func normalizeDocument(raw bson.M) core.Document {
	doc := make(core.Document, len(raw))
	for k, v := range raw {
		if k == mongoIDKey {
			if oid, ok := v.(primitive.ObjectID); ok {
				doc[IDKey] = oid.Hex()
			} else {
				doc[IDKey] = v
			}
			continue
		}
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalizeValue(inner)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalizeValue(inner)
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format(TimestampLayout)
	default:
		return v
	}
}
