// Package screen wires the generic list, form and detail workflows to every
// entity the console manages. Each entity is a Screen; the Registry looks
// them up by route name.
package screen

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/erp/console/internal/application/form"
	"github.com/erp/console/internal/application/remote"
	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/domain/shared"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/infrastructure/printing"
)

// ErrNotPrintable is returned by Print for entities without a document
var ErrNotPrintable = shared.NewDomainError("NOT_PRINTABLE", "This record has no printable document")

// Meta describes a screen
type Meta struct {
	Name     string          `json:"name"`
	Title    string          `json:"title"`
	Singular string          `json:"singular"`
	Roles    []identity.Role `json:"roles,omitempty"`
	Print    printing.Kind   `json:"print,omitempty"`
	Columns  []string        `json:"columns"`
	APIPath  string          `json:"-"`
}

// ListPath is the list screen's route
func (m Meta) ListPath() string { return "/" + m.Name }

// ViewPath is a record's detail route
func (m Meta) ViewPath(id string) string { return "/" + m.Name + "/" + id }

// EditPath is a record's update form route
func (m Meta) EditPath(id string) string { return "/" + m.Name + "/" + id + "/edit" }

// RowActions are the navigation targets of one row
type RowActions struct {
	ID   string `json:"id"`
	View string `json:"view"`
	Edit string `json:"edit"`
}

// ListPage is a rendered list screen: the collection view plus display
// cells and row actions for the visible rows
type ListPage struct {
	remote.View[any]
	Columns []string     `json:"columns"`
	Rows    [][]string   `json:"rows"`
	Actions []RowActions `json:"actions"`
}

// FormView is a rendered form screen
type FormView struct {
	Entity  string            `json:"entity"`
	Mode    form.Mode         `json:"mode"`
	ID      string            `json:"id,omitempty"`
	Draft   any               `json:"draft"`
	Errors  map[string]string `json:"errors,omitempty"`
	Options form.Options      `json:"options"`
	// Dependent holds option lists that follow another field's value
	Dependent map[string]any `json:"dependent,omitempty"`
}

// PrintOptions selects how a document is printed
type PrintOptions struct {
	// Auto asks for the print dialog on load (the ?print=1 case)
	Auto bool
	// Marker is a one-shot print marker; a valid one also prints on load
	Marker string
	PDF    bool
}

// PrintResult is a rendered document. When the record could not be
// fetched Record is in the not-found state and nothing was rendered.
type PrintResult struct {
	Record    remote.Record[any]
	AutoPrint bool
	HTML      string
	PDF       []byte
}

// Screen is one entity's list, form, detail and print workflows
type Screen interface {
	Meta() Meta
	List(ctx context.Context, f shared.Filter) (ListPage, error)
	Detail(ctx context.Context, id string) remote.Record[any]
	NewForm(ctx context.Context) FormView
	EditForm(ctx context.Context, id string) (FormView, view.Outcome)
	Submit(ctx context.Context, id string, draft json.RawMessage, file *apiclient.File) (FormView, view.Outcome)
	Delete(ctx context.Context, id string, f shared.Filter, c remote.Confirmer) (ListPage, view.Outcome)
	Print(ctx context.Context, id string, opts PrintOptions) (PrintResult, error)
}

// Registry holds every screen by name
type Registry struct {
	screens map[string]Screen
	product *ProductScreen
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{screens: make(map[string]Screen)}
}

// Register adds s, replacing a screen of the same name
func (r *Registry) Register(s Screen) {
	r.screens[s.Meta().Name] = s
	if p, ok := s.(*ProductScreen); ok {
		r.product = p
	}
}

// Get looks a screen up by route name
func (r *Registry) Get(name string) (Screen, bool) {
	s, ok := r.screens[name]
	return s, ok
}

// Products returns the product screen with its dependent-field workflow
func (r *Registry) Products() (*ProductScreen, bool) {
	return r.product, r.product != nil
}

// All returns every screen's meta sorted by name
func (r *Registry) All() []Meta {
	out := make([]Meta, 0, len(r.screens))
	for _, s := range r.screens {
		out = append(out, s.Meta())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns every screen name sorted
func (r *Registry) Names() []string {
	metas := r.All()
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = m.Name
	}
	return out
}

// IsNotPrintable reports whether err is ErrNotPrintable
func IsNotPrintable(err error) bool {
	return errors.Is(err, ErrNotPrintable)
}
