package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ledgerkit-io/qbo-client/internal/constants"
	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// entityClient implements qbo.EntityCRUD for one entity type. PT ties the
// pointer type to the qbo.Entity interface so ID and sync token checks work
// without reflection.
type entityClient[T any, PT interface {
	*T
	qbo.Entity
}] struct {
	context *Context
	name    string
	segment string
}

// newEntityClient creates a client for the named entity. The URL segment is
// the lowercased entity name.
func newEntityClient[T any, PT interface {
	*T
	qbo.Entity
}](c *Context) *entityClient[T, PT] {
	name := PT(new(T)).EntityName()

	return &entityClient[T, PT]{
		context: c,
		name:    name,
		segment: strings.ToLower(name),
	}
}

// Create persists a new entity and returns the stored form, including the
// assigned ID and initial sync token.
func (e *entityClient[T, PT]) Create(ctx context.Context, entity *T) (*T, error) {
	req := &qbohttp.Request{
		Method: http.MethodPost,
		Path:   e.context.path(e.segment),
		Body:   entity,
	}

	return Execute(ctx, e.context, req, e.decode)
}

// Get reads one entity by ID.
func (e *entityClient[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, qbo.ErrMissingEntityID
	}

	req := &qbohttp.Request{
		Method: http.MethodGet,
		Path:   e.context.path(e.segment, id),
	}

	return Execute(ctx, e.context, req, e.decode)
}

// Update fully replaces an entity. The entity must carry its ID and current
// sync token; the provider rejects stale tokens.
func (e *entityClient[T, PT]) Update(ctx context.Context, entity *T) (*T, error) {
	err := requireIdentity(PT(entity))
	if err != nil {
		return nil, err
	}

	req := &qbohttp.Request{
		Method: http.MethodPost,
		Path:   e.context.path(e.segment),
		Body:   entity,
	}

	return Execute(ctx, e.context, req, e.decode)
}

// Delete removes an entity. Only its ID and sync token are sent.
func (e *entityClient[T, PT]) Delete(ctx context.Context, entity *T) (*qbo.Deleted, error) {
	pointer := PT(entity)

	err := requireIdentity(pointer)
	if err != nil {
		return nil, err
	}

	req := &qbohttp.Request{
		Method: http.MethodPost,
		Path:   e.context.path(e.segment),
		Query:  url.Values{"operation": []string{"delete"}},
		Body: map[string]string{
			"Id":        pointer.EntityID(),
			"SyncToken": pointer.EntitySyncToken(),
		},
	}

	return Execute(ctx, e.context, req, func(body []byte) (*qbo.Deleted, error) {
		return qbo.UnmarshalEntity[qbo.Deleted](e.name, body)
	})
}

// Query runs a query statement and returns the matching rows. A statement
// matching nothing returns an empty slice.
func (e *entityClient[T, PT]) Query(ctx context.Context, statement string) ([]T, error) {
	req := &qbohttp.Request{
		Method: http.MethodGet,
		Path:   e.context.path("query"),
		Query:  url.Values{"query": []string{statement}},
	}

	return Execute(ctx, e.context, req, func(body []byte) ([]T, error) {
		result, err := qbo.UnmarshalQueryResponse[T](e.name, body)
		if err != nil {
			return nil, err
		}

		return result.Entities, nil
	})
}

// QueryAll returns the first page of all entities of this type.
func (e *entityClient[T, PT]) QueryAll(ctx context.Context) ([]T, error) {
	statement := qbo.NewQuery(e.name).MaxResults(constants.DefaultQueryMaxResults).Build()

	return e.Query(ctx, statement)
}

func (e *entityClient[T, PT]) decode(body []byte) (*T, error) {
	return qbo.UnmarshalEntity[T](e.name, body)
}

// requireIdentity checks the fields every write-by-reference needs.
func requireIdentity(entity qbo.Entity) error {
	if entity.EntityID() == "" {
		return qbo.ErrMissingEntityID
	}

	if entity.EntitySyncToken() == "" {
		return qbo.ErrMissingSyncToken
	}

	return nil
}
