package qbo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	errNoEntityPayload = errors.New("item carries no entity payload")
	errNoQueryPayload  = errors.New("item carries no query payload")
)

// MaxBatchItems is the largest number of operations the provider accepts in
// one batch request.
const MaxBatchItems = 30

// BatchOperationKind distinguishes the four things a batch item can do.
type BatchOperationKind string

const (
	BatchKindQuery  BatchOperationKind = "query"
	BatchKindCreate BatchOperationKind = "create"
	BatchKindUpdate BatchOperationKind = "update"
	BatchKindDelete BatchOperationKind = "delete"
)

// BatchOperation is one item in a batch request. It is either a query or an
// entity operation, never both; construct values through BatchQuery,
// BatchCreate, BatchUpdate, or BatchDelete.
type BatchOperation struct {
	kind       BatchOperationKind
	query      string
	entityName string
	entity     interface{}
}

// BatchQuery builds a batch item that runs a query statement.
func BatchQuery(statement string) BatchOperation {
	return BatchOperation{kind: BatchKindQuery, query: statement}
}

// BatchCreate builds a batch item that creates an entity.
func BatchCreate(entity Entity) BatchOperation {
	return BatchOperation{kind: BatchKindCreate, entityName: entity.EntityName(), entity: entity}
}

// BatchUpdate builds a batch item that fully updates an entity.
func BatchUpdate(entity Entity) BatchOperation {
	return BatchOperation{kind: BatchKindUpdate, entityName: entity.EntityName(), entity: entity}
}

// BatchDelete builds a batch item that deletes an entity. Only the entity's
// ID and sync token are sent.
func BatchDelete(entity Entity) BatchOperation {
	return BatchOperation{kind: BatchKindDelete, entityName: entity.EntityName(), entity: entity}
}

// Kind returns what the operation does.
func (o BatchOperation) Kind() BatchOperationKind {
	return o.kind
}

// EntityName returns the resource name for entity operations, or "" for
// queries.
func (o BatchOperation) EntityName() string {
	return o.entityName
}

// Query returns the statement for query operations, or "" otherwise.
func (o BatchOperation) Query() string {
	return o.query
}

// batchItemRequest is the wire form of one batch item. A query item carries
// the statement under the "Query" key; an entity item carries the operation
// verb plus the entity under its own resource-name key.
type batchItemRequest struct {
	BID string
	Op  BatchOperation
}

func (r batchItemRequest) MarshalJSON() ([]byte, error) {
	item := map[string]interface{}{"bId": r.BID}

	if r.Op.kind == BatchKindQuery {
		item["Query"] = r.Op.query
	} else {
		item["operation"] = string(r.Op.kind)
		item[r.Op.entityName] = r.Op.entity
	}

	return json.Marshal(item)
}

// BatchRequest is the request envelope for the batch endpoint.
type BatchRequest struct {
	Items []batchItemRequest
}

func (b BatchRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"BatchItemRequest": b.Items})
}

// NewBatchRequest assigns sequential correlation IDs ("bId1".."bIdN") to the
// operations, in order.
func NewBatchRequest(operations []BatchOperation) BatchRequest {
	items := make([]batchItemRequest, 0, len(operations))

	for i, op := range operations {
		items = append(items, batchItemRequest{
			BID: fmt.Sprintf("bId%d", i+1),
			Op:  op,
		})
	}

	return BatchRequest{Items: items}
}

// BatchResponseItem is the decoded form of one item in a batch response. For
// each item exactly one of Fault, QueryResponse, or Entity is set, determined
// by which key the provider put next to the bId.
type BatchResponseItem struct {
	BID           string
	Fault         *Fault
	QueryResponse json.RawMessage
	EntityName    string
	Entity        json.RawMessage
}

// responseKeysToSkip are envelope keys that never identify an entity payload.
var responseKeysToSkip = map[string]bool{
	"bId":  true,
	"time": true,
}

func (i *BatchResponseItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("parsing batch item: %w", err)
	}

	if bid, ok := raw["bId"]; ok {
		err = json.Unmarshal(bid, &i.BID)
		if err != nil {
			return fmt.Errorf("parsing batch item bId: %w", err)
		}
	}

	if fault, ok := raw["Fault"]; ok {
		i.Fault = &Fault{}

		err = json.Unmarshal(fault, i.Fault)
		if err != nil {
			return fmt.Errorf("parsing batch item fault: %w", err)
		}

		return nil
	}

	if query, ok := raw["QueryResponse"]; ok {
		i.QueryResponse = query

		return nil
	}

	for key, value := range raw {
		if responseKeysToSkip[key] {
			continue
		}

		i.EntityName = key
		i.Entity = value

		return nil
	}

	// An item carrying only a bId happens for delete acks with empty bodies;
	// leave all three payload members unset.
	return nil
}

// BatchResponse is the response envelope from the batch endpoint.
type BatchResponse struct {
	Items []BatchResponseItem `json:"BatchItemResponse"`
	Time  string              `json:"time,omitempty"`
}

// DecodeBatchEntity decodes an item's entity payload into a concrete type.
func DecodeBatchEntity[T any](item *BatchResponseItem) (*T, error) {
	if item.Entity == nil {
		return nil, fmt.Errorf("batch item %s: %w", item.BID, errNoEntityPayload)
	}

	entity := new(T)

	err := json.Unmarshal(item.Entity, entity)
	if err != nil {
		return nil, fmt.Errorf("parsing batch item %s payload: %w", item.BID, err)
	}

	return entity, nil
}

// DecodeBatchQueryResponse decodes an item's query payload into typed rows.
func DecodeBatchQueryResponse[T any](name string, item *BatchResponseItem) (*QueryResponse[T], error) {
	if item.QueryResponse == nil {
		return nil, fmt.Errorf("batch item %s: %w", item.BID, errNoQueryPayload)
	}

	var inner map[string]json.RawMessage

	err := json.Unmarshal(item.QueryResponse, &inner)
	if err != nil {
		return nil, fmt.Errorf("parsing batch item %s query response: %w", item.BID, err)
	}

	result := &QueryResponse[T]{}

	if raw, ok := inner[name]; ok {
		err = json.Unmarshal(raw, &result.Entities)
		if err != nil {
			return nil, fmt.Errorf("parsing batch item %s %s rows: %w", item.BID, name, err)
		}
	}

	return result, nil
}
