// Package remote holds the per-screen state of remotely owned records: a
// paginated Collection for list screens and a Record for detail screens.
package remote

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/erp/console/internal/domain/shared"
	"github.com/erp/console/internal/infrastructure/apiclient"
)

// LoadFailedMessage is shown when a list fetch fails without a server message
const LoadFailedMessage = "Failed to load data"

// DeleteFailedMessage is shown when a delete fails without a server message
const DeleteFailedMessage = "Operation failed"

// Source is the remote endpoint behind a list screen
type Source[T any] interface {
	List(ctx context.Context, f shared.Filter) (shared.Page[T], error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user before a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Matcher reports whether item matches the free-text term
type Matcher[T any] func(item T, term string) bool

// MatchFields builds a case-insensitive substring matcher over the given
// display fields. An empty term matches everything.
func MatchFields[T any](fields ...func(T) string) Matcher[T] {
	return func(item T, term string) bool {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return true
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(item)), term) {
				return true
			}
		}
		return false
	}
}

// View is a consistent snapshot of a collection for rendering.
// TotalCount and PageCount are the server's numbers for the unfiltered
// page; FilteredCount is the number of rows left after client-side
// narrowing.
type View[T any] struct {
	Items         []T               `json:"items"`
	TotalCount    int               `json:"total_count"`
	PageCount     int               `json:"page_count"`
	CurrentPage   int               `json:"current_page"`
	FilteredCount int               `json:"filtered_count"`
	Estimated     bool              `json:"estimated,omitempty"`
	Loading       bool              `json:"loading"`
	Loaded        bool              `json:"loaded"`
	Error         string            `json:"error,omitempty"`
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
	Search        string            `json:"search,omitempty"`
	Filters       map[string]string `json:"filters,omitempty"`
}

// Collection is the list-screen state machine: a query (page, search,
// filters), the last page the server returned and the loading/error flags.
// Every query change reloads. Responses are sequenced so an older response
// arriving after a newer one is discarded.
type Collection[T any] struct {
	source Source[T]
	idOf   func(T) string
	match  Matcher[T]
	logger *zap.Logger

	mu      sync.Mutex
	query   shared.Filter
	page    shared.Page[T]
	loading bool
	loaded  bool
	errMsg  string
	issued  uint64
	applied uint64
}

// Option customizes a Collection
type Option[T any] func(*Collection[T])

// WithMatcher enables client-side narrowing by the search term
func WithMatcher[T any](m Matcher[T]) Option[T] {
	return func(c *Collection[T]) { c.match = m }
}

// WithLogger sets the logger
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(c *Collection[T]) { c.logger = l }
}

// WithQuery seeds the initial query
func WithQuery[T any](f shared.Filter) Option[T] {
	return func(c *Collection[T]) { c.query = normalize(f) }
}

// NewCollection creates a collection over source; idOf extracts a row's
// identifier for row actions
func NewCollection[T any](source Source[T], idOf func(T) string, opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{
		source: source,
		idOf:   idOf,
		logger: zap.NewNop(),
		query:  shared.DefaultFilter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalize(f shared.Filter) shared.Filter {
	f = f.Clone()
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = shared.DefaultFilter().PageSize
	}
	return f
}

// Load fetches the current query. On failure the previous rows stay and
// the inline error is set; the error is also returned.
func (c *Collection[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	query := c.query.Clone()
	c.loading = true
	c.mu.Unlock()

	page, err := c.source.List(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied {
		c.logger.Debug("discarding stale list response", zap.Uint64("seq", seq), zap.Uint64("applied", c.applied))
		return nil
	}
	c.applied = seq
	c.loading = seq != c.issued

	if err != nil {
		c.errMsg = apiclient.MessageOr(err, LoadFailedMessage)
		c.logger.Warn("list fetch failed", zap.Int("page", query.Page), zap.Error(err))
		return err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	c.page = page
	c.errMsg = ""
	c.loaded = true
	return nil
}

// SetPage moves to page n (1-based) and reloads. The page is always
// refetched, never served from a previous response.
func (c *Collection[T]) SetPage(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	c.query.Page = n
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetPageSize changes the page size, returns to page 1 and reloads
func (c *Collection[T]) SetPageSize(ctx context.Context, size int) error {
	c.mu.Lock()
	if size > 0 {
		c.query.PageSize = size
	}
	c.query.Page = 1
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetSearch changes the search term, returns to page 1 and reloads
func (c *Collection[T]) SetSearch(ctx context.Context, term string) error {
	c.mu.Lock()
	c.query.Search = strings.TrimSpace(term)
	c.query.Page = 1
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetFilter sets (or with an empty value removes) a structured filter,
// returns to page 1 and reloads
func (c *Collection[T]) SetFilter(ctx context.Context, key, value string) error {
	c.mu.Lock()
	if value == "" {
		delete(c.query.Filters, key)
	} else {
		c.query.Filters[key] = value
	}
	c.query.Page = 1
	c.mu.Unlock()
	return c.Load(ctx)
}

// Visible returns the rows left after client-side narrowing
func (c *Collection[T]) Visible() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

func (c *Collection[T]) visibleLocked() []T {
	if c.match == nil || c.query.Search == "" {
		return slices.Clone(c.page.Items)
	}
	out := make([]T, 0, len(c.page.Items))
	for _, item := range c.page.Items {
		if c.match(item, c.query.Search) {
			out = append(out, item)
		}
	}
	return out
}

// FilteredCount is len(Visible())
func (c *Collection[T]) FilteredCount() int {
	return len(c.Visible())
}

// Snapshot returns a consistent view of the state
func (c *Collection[T]) Snapshot() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	visible := c.visibleLocked()
	filters := make(map[string]string, len(c.query.Filters))
	for k, v := range c.query.Filters {
		filters[k] = v
	}
	return View[T]{
		Items:         visible,
		TotalCount:    c.page.TotalCount,
		PageCount:     c.page.PageCount,
		CurrentPage:   c.page.CurrentPage,
		FilteredCount: len(visible),
		Estimated:     c.page.Estimated,
		Loading:       c.loading,
		Loaded:        c.loaded,
		Error:         c.errMsg,
		Page:          c.query.Page,
		PageSize:      c.query.PageSize,
		Search:        c.query.Search,
		Filters:       filters,
	}
}

// Query returns a copy of the current query
func (c *Collection[T]) Query() shared.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

// Delete asks confirmer first; when declined nothing is sent and
// shared.ErrDeleteDeclined is returned. On success the row is removed
// right away and the page is refetched; on failure the rows are untouched
// and the error is returned.
func (c *Collection[T]) Delete(ctx context.Context, id string, confirmer Confirmer) error {
	if confirmer == nil || !confirmer.Confirm(ctx, "Are you sure you want to delete this record?") {
		return shared.ErrDeleteDeclined
	}

	if err := c.source.Delete(ctx, id); err != nil {
		c.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
		return err
	}

	c.mu.Lock()
	before := len(c.page.Items)
	c.page.Items = slices.DeleteFunc(slices.Clone(c.page.Items), func(item T) bool {
		return c.idOf(item) == id
	})
	if removed := before - len(c.page.Items); removed > 0 && c.page.TotalCount >= removed {
		c.page.TotalCount -= removed
	}
	c.mu.Unlock()

	// the row is already gone; a failed refetch only sets the inline error
	_ = c.Load(ctx)
	return nil
}
