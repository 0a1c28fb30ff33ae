package apiclient

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/erp/console/internal/domain/shared"
)

// Resource is a typed CRUD endpoint of the remote API, e.g. /products
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds path to c
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: "/" + strings.Trim(path, "/")}
}

// Path returns the collection path
func (r *Resource[T]) Path() string { return r.path }

// List fetches one page of the collection
func (r *Resource[T]) List(ctx context.Context, f shared.Filter) (shared.Page[T], error) {
	resp, err := r.client.Get(ctx, r.path, FilterQuery(f))
	if err != nil {
		return shared.Page[T]{}, err
	}
	return DecodePage[T](resp.Body, f)
}

// Get fetches one record
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	resp, err := r.client.Get(ctx, r.itemPath(id), nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeRecord[T](resp.Body)
}

// Create posts body (JSON, or *Multipart) and returns the created record
// when the API echoes it
func (r *Resource[T]) Create(ctx context.Context, body any) (T, error) {
	resp, err := r.client.Post(ctx, r.path, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOptional[T](resp.Body)
}

// Update puts body to the record
func (r *Resource[T]) Update(ctx context.Context, id string, body any) (T, error) {
	resp, err := r.client.Put(ctx, r.itemPath(id), body)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOptional[T](resp.Body)
}

// Delete removes the record. Deleting an already-deleted id only returns
// whatever error the API answers with.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.Delete(ctx, r.itemPath(id))
	return err
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// FetchOptions loads an option list (categories, currencies, units). The
// list may be enveloped or bare.
func FetchOptions[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	page, err := DecodePage[T](resp.Body, shared.Filter{Page: 1})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// FilterQuery maps a list filter onto the API's query parameters
func FilterQuery(f shared.Filter) url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("limit", strconv.Itoa(f.PageSize))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	for k, v := range f.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func decodeOptional[T any](body []byte) (T, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		var zero T
		return zero, nil
	}
	return DecodeRecord[T](body)
}
