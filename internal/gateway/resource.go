package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

// Resource is a typed view of one REST collection.
type Resource[T models.Record] struct {
	client *Client
	name   models.Resource
}

// For binds a typed resource to the client.
func For[T models.Record](c *Client, name models.Resource) *Resource[T] {
	return &Resource[T]{client: c, name: name}
}

// Name reports the collection name.
func (r *Resource[T]) Name() models.Resource { return r.name }

func (r *Resource[T]) collectionPath() string {
	return "/" + string(r.name)
}

func (r *Resource[T]) itemPath(id int64) string {
	return r.collectionPath() + "/" + strconv.FormatInt(id, 10)
}

// List fetches records matching q.
func (r *Resource[T]) List(ctx context.Context, q ListQuery) (*ListResult[T], error) {
	path := r.collectionPath()
	if values := q.Values(); len(values) > 0 {
		path += "?" + values.Encode()
	}
	var result ListResult[T]
	if err := r.client.doJSON(ctx, string(r.name), http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	for _, item := range result.Items {
		if err := checkRecord(item); err != nil {
			return nil, err
		}
	}
	if result.Total < len(result.Items) {
		result.Total = len(result.Items)
	}
	return &result, nil
}

// Get fetches a single record.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var record T
	if err := r.client.doJSON(ctx, string(r.name), http.MethodGet, r.itemPath(id), nil, &record); err != nil {
		return record, err
	}
	return record, checkRecord(record)
}

// Create posts a new record and returns the server's authoritative copy.
func (r *Resource[T]) Create(ctx context.Context, payload T) (T, error) {
	var record T
	if err := r.client.doJSON(ctx, string(r.name), http.MethodPost, r.collectionPath(), payload, &record); err != nil {
		return record, err
	}
	return record, checkRecord(record)
}

// Update sends only the changed fields.
func (r *Resource[T]) Update(ctx context.Context, id int64, changes map[string]any) (T, error) {
	var record T
	if err := r.client.doJSON(ctx, string(r.name), http.MethodPatch, r.itemPath(id), changes, &record); err != nil {
		return record, err
	}
	return record, checkRecord(record)
}

// Delete removes a record and returns the deleted id.
func (r *Resource[T]) Delete(ctx context.Context, id int64) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := r.client.doJSON(ctx, string(r.name), http.MethodDelete, r.itemPath(id), nil, &resp); err != nil {
		return 0, err
	}
	// 204 or an empty body acknowledges the requested id.
	if resp.ID == 0 {
		resp.ID = id
	}
	return resp.ID, nil
}

func checkRecord(record models.Record) error {
	if record.RecordID() <= 0 {
		return appErrors.Transport(fmt.Errorf("backend returned a record without an id"))
	}
	return nil
}
