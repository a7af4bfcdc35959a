package core

import (
	"context"

	"github.com/sirupsen/logrus"
)

// FindQuery is what the engine asks a store for. Limit 0 means no limit.
type FindQuery struct {
	Collection string
	Filter     Filter
	Projection []string
	Sort       []SortKey
	Skip       int64
	Limit      int64
}

// Executor is the document store as seen by the engine.
type Executor interface {
	Find(ctx context.Context, q FindQuery) ([]Document, error)
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
}

// ListRequest describes one collection read.
type ListRequest struct {
	Collection string
	BaseFilter Filter // always applied; query filters are layered on top
	Query      QueryValues
	Allow      AllowList
	Undesired  []string
	IDField    string
	Request    *RequestContext
}

// GetRequest describes a single-document read by identifier.
type GetRequest struct {
	Collection string
	BaseFilter Filter
	IDField    string
	ID         string
	Query      QueryValues
	Allow      AllowList
	Undesired  []string
	Request    *RequestContext
}

// Engine turns query strings into store queries and renders the results.
type Engine struct {
	executor        Executor
	log             logrus.FieldLogger
	defaultPageSize int
}

// NewEngine creates an Engine. A non-positive page size selects DefaultPageSize.
func NewEngine(executor Executor, log logrus.FieldLogger, defaultPageSize int) *Engine {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	return &Engine{executor: executor, log: log, defaultPageSize: defaultPageSize}
}

// List validates the query, runs it and renders the collection envelope.
//
// When paginated, a second Count query runs with the same filter. The two
// reads are not isolated from concurrent writes, so total_records may
// disagree with the returned page under write load.
func (e *Engine) List(ctx context.Context, req ListRequest) (*Envelope, error) {
	log := e.log.WithField("collection", req.Collection)

	directives, err := PrepareQuery(req.Query, req.Allow)
	if err != nil {
		log.Warnf("Engine: rejected list query %v: %v", req.Query.Keys(), err)
		return nil, err
	}

	filter := req.BaseFilter.Merge(directives.Filters)
	paging := ComputePagination(directives.Page, directives.Limit, e.defaultPageSize)

	find := FindQuery{
		Collection: req.Collection,
		Filter:     filter,
		Projection: projection(directives.Fields, req.IDField),
		Sort:       directives.Sort,
	}
	switch {
	case paging.HasPagination:
		find.Skip = paging.Skip
		find.Limit = int64(paging.PageSize)
	case directives.Limit.Present:
		find.Limit = int64(directives.Limit.Value)
	}

	docs, err := e.executor.Find(ctx, find)
	if err != nil {
		log.Errorf("Engine: find failed: %v", err)
		return nil, storeFailure("find", req.Collection, err)
	}

	env := RenderMany(docs, req.Undesired, req.IDField, req.Request)

	if paging.HasPagination {
		total, err := e.executor.Count(ctx, req.Collection, filter)
		if err != nil {
			log.Errorf("Engine: count failed: %v", err)
			return nil, storeFailure("count", req.Collection, err)
		}
		paging = paging.WithTotal(total)
		AddPagination(env, req.Request, paging)
	}

	log.Debugf("Engine: listed %d documents (page=%d size=%d total=%d)",
		len(docs), paging.PageNumber, paging.PageSize, paging.TotalRecords)
	return env, nil
}

// Get validates the query and returns the single matching document. Only the
// fields directive affects a single-document read.
func (e *Engine) Get(ctx context.Context, req GetRequest) (*Envelope, error) {
	log := e.log.WithFields(logrus.Fields{"collection": req.Collection, "id": req.ID})

	directives, err := PrepareQuery(req.Query, req.Allow)
	if err != nil {
		log.Warnf("Engine: rejected get query %v: %v", req.Query.Keys(), err)
		return nil, err
	}

	docs, err := e.executor.Find(ctx, FindQuery{
		Collection: req.Collection,
		Filter:     req.BaseFilter.Set(req.IDField, req.ID),
		Projection: projection(directives.Fields, req.IDField),
		Limit:      1,
	})
	if err != nil {
		log.Errorf("Engine: find failed: %v", err)
		return nil, storeFailure("find", req.Collection, err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}

	return RenderOne(docs[0], req.Undesired, req.Request), nil
}

// projection keeps the identifier so item links can still be built.
func projection(fields []string, idField string) []string {
	if len(fields) == 0 {
		return nil
	}
	out := append([]string(nil), fields...)
	if idField != "" {
		out = appendUnique(out, idField)
	}
	return out
}
