// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Annany2002/arteesan-backend/config"
	"github.com/Annany2002/arteesan-backend/internal/core"
)

// Specific errors for document operations
var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDuplicateDocument = errors.New("duplicate document")
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrInvalidField      = errors.New("invalid field path")
)

// IDKey is the key under which both stores expose a document's identifier.
const IDKey = "id"

// CreatedAtKey is stamped on every inserted document.
const CreatedAtKey = "created_at"

// TimestampLayout renders created_at in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DocumentStore is a query executor that also supports single-document writes.
type DocumentStore interface {
	core.Executor

	// InsertOne stores doc and returns it with its new id and created_at.
	InsertOne(ctx context.Context, collection string, doc core.Document) (core.Document, error)
	// FindOne returns the first document matching filter or ErrDocumentNotFound.
	FindOne(ctx context.Context, collection string, filter core.Filter, projection []string) (core.Document, error)
	// UpdateOne sets the given top-level keys on the first match and returns the updated document.
	UpdateOne(ctx context.Context, collection string, filter core.Filter, set core.Document) (core.Document, error)
	// DeleteOne removes the first match and returns it as it was before removal.
	DeleteOne(ctx context.Context, collection string, filter core.Filter) (core.Document, error)

	EnsureCollection(ctx context.Context, collection string) error
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the store selected by cfg.StoreDriver.
func Open(cfg *config.Config, log logrus.FieldLogger) (DocumentStore, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return ConnectSQLite(cfg, log)
	case config.DriverMongoDB:
		return ConnectMongo(MongoConfig{
			URI:              cfg.MongoURI,
			Database:         cfg.MongoDatabase,
			ConnectTimeout:   cfg.MongoTimeout,
			OperationTimeout: cfg.MongoTimeout,
		}, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// prepareInsert copies doc, drops any client-supplied id and stamps created_at.
func prepareInsert(doc core.Document, now time.Time) core.Document {
	out := make(core.Document, len(doc)+1)
	for k, v := range doc {
		if k == IDKey {
			continue
		}
		out[k] = v
	}
	if _, ok := out[CreatedAtKey]; !ok {
		out[CreatedAtKey] = now.UTC().Format(TimestampLayout)
	}
	return out
}

// applyProjection keeps the top-level keys named by projection (matching the
// first segment of dotted paths) plus the id. An empty projection keeps everything.
func applyProjection(doc core.Document, projection []string) core.Document {
	if len(projection) == 0 {
		return doc
	}
	out := make(core.Document, len(projection)+1)
	if id, ok := doc[IDKey]; ok {
		out[IDKey] = id
	}
	for _, field := range projection {
		top, _, _ := strings.Cut(field, ".")
		if v, ok := doc[top]; ok {
			out[top] = v
		}
	}
	return out
}
