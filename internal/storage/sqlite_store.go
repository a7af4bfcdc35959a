// internal/storage/sqlite_store.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/Annany2002/arteesan-backend/internal/core"
)

// textMatchSQL matches a string against a scalar at the path or against any
// scalar element of an array at the path. Booleans compare as "true"/"false".
const textMatchSQL = `EXISTS (SELECT 1 FROM json_each(body, ?) AS j ` +
	`WHERE j.type NOT IN ('object', 'array') ` +
	`AND (CASE j.type WHEN 'true' THEN 'true' WHEN 'false' THEN 'false' ELSE CAST(j.value AS TEXT) END) = ?)`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Find runs q and returns the matching documents in sort order.
func (s *SQLiteStore) Find(ctx context.Context, q core.FindQuery) ([]core.Document, error) {
	defer observeOperation(storeSQLite, "find", time.Now())

	query, err := s.selectBuilder(q.Collection, q.Filter)
	if err != nil {
		return nil, err
	}
	for _, key := range q.Sort {
		path, err := jsonPath(key.Field)
		if err != nil {
			return nil, err
		}
		direction := "ASC"
		if key.Direction == core.Descending {
			direction = "DESC"
		}
		query = query.OrderByClause("json_extract(body, ?) "+direction, path)
	}
	// Insertion order breaks ties so pages never overlap.
	query = query.OrderBy("rowid")

	switch {
	case q.Limit > 0:
		query = query.Limit(uint64(q.Limit))
	case q.Skip > 0:
		// SQLite only accepts OFFSET after LIMIT.
		query = query.Limit(math.MaxInt64)
	}
	if q.Skip > 0 {
		query = query.Offset(uint64(q.Skip))
	}

	docs, err := s.queryDocuments(ctx, s.db, query)
	if err != nil {
		s.log.WithField("collection", q.Collection).Errorf("Storage: Failed find: %v", err)
		return nil, fmt.Errorf("database error listing %s: %w", q.Collection, err)
	}
	for i := range docs {
		docs[i] = applyProjection(docs[i], q.Projection)
	}
	return docs, nil
}

// Count returns the number of documents matching filter.
func (s *SQLiteStore) Count(ctx context.Context, collection string, filter core.Filter) (int64, error) {
	defer observeOperation(storeSQLite, "count", time.Now())

	if !core.IsValidIdentifier(collection) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	query := sq.Select("COUNT(*)").From(collection)
	conds, err := whereClause(filter)
	if err != nil {
		return 0, err
	}
	if len(conds) > 0 {
		query = query.Where(conds)
	}

	countSQL, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		s.log.WithField("collection", collection).Errorf("Storage: Failed count: %v", err)
		return 0, fmt.Errorf("database error counting %s: %w", collection, err)
	}
	return total, nil
}

// InsertOne stores a copy of doc under a new UUID.
func (s *SQLiteStore) InsertOne(ctx context.Context, collection string, doc core.Document) (core.Document, error) {
	defer observeOperation(storeSQLite, "insert", time.Now())

	if !core.IsValidIdentifier(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	stored := prepareInsert(doc, time.Now())
	body, err := encodeBody(stored)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()

	insertSQL, args, err := sq.Insert(collection).Columns("id", "body").Values(id, body).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, insertSQL, args...); err != nil {
		s.log.WithField("collection", collection).Errorf("Storage: Failed INSERT: %v", err)
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return nil, ErrDuplicateDocument
		}
		return nil, fmt.Errorf("database error during insert: %w", err)
	}

	stored[IDKey] = id
	return stored, nil
}

// FindOne returns the first match in insertion order.
func (s *SQLiteStore) FindOne(ctx context.Context, collection string, filter core.Filter, projection []string) (core.Document, error) {
	docs, err := s.Find(ctx, core.FindQuery{Collection: collection, Filter: filter, Projection: projection, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrDocumentNotFound
	}
	return docs[0], nil
}

// UpdateOne reads, merges and rewrites the first match inside one transaction.
func (s *SQLiteStore) UpdateOne(ctx context.Context, collection string, filter core.Filter, set core.Document) (core.Document, error) {
	defer observeOperation(storeSQLite, "update", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	doc, err := s.firstMatch(ctx, tx, collection, filter)
	if err != nil {
		return nil, err
	}
	for k, v := range set {
		if k == IDKey {
			continue
		}
		doc[k] = v
	}
	body, err := encodeBody(doc)
	if err != nil {
		return nil, err
	}

	updateSQL, args, err := sq.Update(collection).Set("body", body).Where(sq.Eq{"id": doc[IDKey]}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, updateSQL, args...); err != nil {
		s.log.WithField("collection", collection).Errorf("Storage: Failed UPDATE: %v", err)
		return nil, fmt.Errorf("database error during update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return doc, nil
}

// DeleteOne removes the first match and returns it.
func (s *SQLiteStore) DeleteOne(ctx context.Context, collection string, filter core.Filter) (core.Document, error) {
	defer observeOperation(storeSQLite, "delete", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	doc, err := s.firstMatch(ctx, tx, collection, filter)
	if err != nil {
		return nil, err
	}

	deleteSQL, args, err := sq.Delete(collection).Where(sq.Eq{"id": doc[IDKey]}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteSQL, args...); err != nil {
		s.log.WithField("collection", collection).Errorf("Storage: Failed DELETE: %v", err)
		return nil, fmt.Errorf("database error during delete: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) firstMatch(ctx context.Context, q queryer, collection string, filter core.Filter) (core.Document, error) {
	query, err := s.selectBuilder(collection, filter)
	if err != nil {
		return nil, err
	}
	docs, err := s.queryDocuments(ctx, q, query.OrderBy("rowid").Limit(1))
	if err != nil {
		s.log.WithField("collection", collection).Errorf("Storage: Failed SELECT: %v", err)
		return nil, fmt.Errorf("database error reading %s: %w", collection, err)
	}
	if len(docs) == 0 {
		return nil, ErrDocumentNotFound
	}
	return docs[0], nil
}

func (s *SQLiteStore) selectBuilder(collection string, filter core.Filter) (sq.SelectBuilder, error) {
	if !core.IsValidIdentifier(collection) {
		return sq.SelectBuilder{}, fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	query := sq.Select("id", "body").From(collection)
	conds, err := whereClause(filter)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	if len(conds) > 0 {
		query = query.Where(conds)
	}
	return query, nil
}

func (s *SQLiteStore) queryDocuments(ctx context.Context, q queryer, query sq.SelectBuilder) ([]core.Document, error) {
	selectSQL, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}
	s.log.Debugf("Storage: Executing SQL: %s | Args: %v", selectSQL, args)

	rows, err := q.QueryContext(ctx, selectSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]core.Document, 0)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed reading document: %w", err)
		}
		doc, err := decodeBody(id, body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed processing documents: %w", err)
	}
	return docs, nil
}

// whereClause translates equality terms into JSON path conditions.
func whereClause(filter core.Filter) (sq.And, error) {
	conds := sq.And{}
	for _, term := range filter {
		if term.Field == IDKey {
			conds = append(conds, sq.Eq{"id": fmt.Sprint(term.Value)})
			continue
		}
		path, err := jsonPath(term.Field)
		if err != nil {
			return nil, err
		}
		switch v := term.Value.(type) {
		case string:
			conds = append(conds, sq.Expr(textMatchSQL, path, v))
		case bool:
			conds = append(conds, sq.Expr("json_type(body, ?) = ?", path, fmt.Sprint(v)))
		case nil:
			conds = append(conds, sq.Expr("json_extract(body, ?) IS NULL", path))
		default:
			conds = append(conds, sq.Expr("json_extract(body, ?) = ?", path, v))
		}
	}
	return conds, nil
}

func jsonPath(field string) (string, error) {
	if !core.IsValidFieldPath(field) {
		return "", fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return "$." + field, nil
}

func encodeBody(doc core.Document) (string, error) {
	body := make(core.Document, len(doc))
	for k, v := range doc {
		if k != IDKey {
			body[k] = v
		}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(raw), nil
}

func decodeBody(id, body string) (core.Document, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc core.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	if doc == nil {
		doc = core.Document{}
	}
	doc[IDKey] = id
	return doc, nil
}
