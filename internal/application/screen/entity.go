package screen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/erp/console/internal/application/form"
	"github.com/erp/console/internal/application/remote"
	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/domain/shared"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/infrastructure/printing"
)

// ErrPDFDisabled is returned when a PDF is requested without a renderer
var ErrPDFDisabled = shared.NewDomainError("PDF_DISABLED", "PDF output is not enabled")

// Backend is the remote resource behind an entity screen.
// apiclient.Resource satisfies it.
type Backend[T any] interface {
	remote.Source[T]
	form.Endpoint[T]
}

// Column is one list column
type Column[T any] struct {
	Header string
	Cell   func(T) string
}

// Spec describes one entity screen
type Spec[T, D any] struct {
	Meta    Meta
	IDOf    func(T) string
	Columns []Column[T]
	// Search lists the display fields the client-side search narrows by
	Search  []func(T) string
	Form    form.Config[T, D]
	Options map[string]form.OptionLoader
}

// Deps are the collaborators shared by every screen
type Deps struct {
	Client    *apiclient.Client
	Templates *printing.TemplateEngine
	PDF       printing.PDFRenderer
	Markers   *MarkerStore
	Logger    *zap.Logger
	PageSize  int
}

// EntityScreen implements Screen for record type T edited through draft D
type EntityScreen[T, D any] struct {
	spec    Spec[T, D]
	backend Backend[T]
	deps    Deps
	logger  *zap.Logger
}

// NewEntity builds a screen from spec over backend
func NewEntity[T, D any](spec Spec[T, D], backend Backend[T], deps Deps) *EntityScreen[T, D] {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	spec.Meta.Columns = make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		spec.Meta.Columns[i] = c.Header
	}
	if spec.Form.ListPath == "" {
		spec.Form.ListPath = spec.Meta.ListPath()
	}
	if spec.Form.Entity == "" {
		spec.Form.Entity = spec.Meta.Singular
	}
	return &EntityScreen[T, D]{
		spec:    spec,
		backend: backend,
		deps:    deps,
		logger:  logger.With(zap.String("screen", spec.Meta.Name)),
	}
}

// Meta implements Screen
func (s *EntityScreen[T, D]) Meta() Meta { return s.spec.Meta }

func (s *EntityScreen[T, D]) collection(f shared.Filter) *remote.Collection[T] {
	if f.PageSize < 1 && s.deps.PageSize > 0 {
		f.PageSize = s.deps.PageSize
	}
	opts := []remote.Option[T]{
		remote.WithQuery[T](f),
		remote.WithLogger[T](s.logger),
	}
	if len(s.spec.Search) > 0 {
		opts = append(opts, remote.WithMatcher(remote.MatchFields(s.spec.Search...)))
	}
	return remote.NewCollection[T](s.backend, s.spec.IDOf, opts...)
}

// List implements Screen. A failed fetch still returns the page with its
// inline error set.
func (s *EntityScreen[T, D]) List(ctx context.Context, f shared.Filter) (ListPage, error) {
	c := s.collection(f)
	err := c.Load(ctx)
	return s.page(c.Snapshot()), err
}

func (s *EntityScreen[T, D]) page(v remote.View[T]) ListPage {
	out := ListPage{
		View: remote.View[any]{
			Items:         make([]any, len(v.Items)),
			TotalCount:    v.TotalCount,
			PageCount:     v.PageCount,
			CurrentPage:   v.CurrentPage,
			FilteredCount: v.FilteredCount,
			Estimated:     v.Estimated,
			Loading:       v.Loading,
			Loaded:        v.Loaded,
			Error:         v.Error,
			Page:          v.Page,
			PageSize:      v.PageSize,
			Search:        v.Search,
			Filters:       v.Filters,
		},
		Columns: s.spec.Meta.Columns,
		Rows:    make([][]string, len(v.Items)),
		Actions: make([]RowActions, len(v.Items)),
	}
	for i, item := range v.Items {
		out.Items[i] = item
		cells := make([]string, len(s.spec.Columns))
		for j, c := range s.spec.Columns {
			cells[j] = c.Cell(item)
		}
		out.Rows[i] = cells
		id := s.spec.IDOf(item)
		out.Actions[i] = RowActions{ID: id, View: s.spec.Meta.ViewPath(id), Edit: s.spec.Meta.EditPath(id)}
	}
	return out
}

// Detail implements Screen
func (s *EntityScreen[T, D]) Detail(ctx context.Context, id string) remote.Record[any] {
	return erase(s.record(ctx, id))
}

func (s *EntityScreen[T, D]) record(ctx context.Context, id string) remote.Record[T] {
	return remote.LoadRecord[T](ctx, s.backend, id, s.spec.Meta.ListPath())
}

func erase[T any](r remote.Record[T]) remote.Record[any] {
	out := remote.Record[any]{ID: r.ID, State: r.State, Error: r.Error, BackTo: r.BackTo}
	if r.Item != nil {
		var item any = *r.Item
		out.Item = &item
	}
	return out
}

// NewForm implements Screen
func (s *EntityScreen[T, D]) NewForm(ctx context.Context) FormView {
	var draft D
	return FormView{
		Entity:  s.spec.Meta.Singular,
		Mode:    form.ModeCreate,
		Draft:   draft,
		Options: form.LoadOptions(ctx, s.spec.Options),
	}
}

// EditForm implements Screen. The record and the option lists are fetched
// concurrently; without the record the form redirects to the list.
func (s *EntityScreen[T, D]) EditForm(ctx context.Context, id string) (FormView, view.Outcome) {
	var (
		wg   sync.WaitGroup
		opts form.Options
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		opts = form.LoadOptions(ctx, s.spec.Options)
	}()
	f, out := form.Open[T, D](ctx, s.backend, s.spec.Form, id, s.logger)
	wg.Wait()

	if f == nil {
		return FormView{}, out
	}
	return FormView{
		Entity:  s.spec.Meta.Singular,
		Mode:    form.ModeUpdate,
		ID:      id,
		Draft:   f.Draft(),
		Options: opts,
	}, out
}

// Submit implements Screen. An empty id creates, otherwise updates.
func (s *EntityScreen[T, D]) Submit(ctx context.Context, id string, raw json.RawMessage, file *apiclient.File) (FormView, view.Outcome) {
	draft, err := decodeDraft[D](raw)
	if err != nil {
		return FormView{Entity: s.spec.Meta.Singular, Mode: modeFor(id), ID: id},
			view.Outcome{Toast: view.Error(invalidDraftMessage(err))}
	}

	f := form.Bind[T, D](s.backend, s.spec.Form, id, draft, s.logger)
	if file != nil {
		f.Attach(file)
	}
	out := f.Submit(ctx)
	return FormView{
		Entity: s.spec.Meta.Singular,
		Mode:   f.Mode(),
		ID:     id,
		Draft:  f.Draft(),
		Errors: f.Errors(),
	}, out
}

func modeFor(id string) form.Mode {
	if id == "" {
		return form.ModeCreate
	}
	return form.ModeUpdate
}

func decodeDraft[D any](raw json.RawMessage) (D, error) {
	var d D
	if len(bytes.TrimSpace(raw)) == 0 {
		return d, nil
	}
	err := json.Unmarshal(raw, &d)
	return d, err
}

func invalidDraftMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "Invalid form data"
}

// Delete implements Screen. A declined confirmation sends nothing.
// On success the returned page is the refetched list.
func (s *EntityScreen[T, D]) Delete(ctx context.Context, id string, f shared.Filter, c remote.Confirmer) (ListPage, view.Outcome) {
	coll := s.collection(f)
	err := coll.Delete(ctx, id, c)
	switch {
	case errors.Is(err, shared.ErrDeleteDeclined):
		return ListPage{}, view.Outcome{Toast: &view.Toast{Kind: view.ToastInfo, Message: "Delete cancelled"}}
	case err != nil:
		out := view.Outcome{Toast: view.Error(apiclient.MessageOr(err, remote.DeleteFailedMessage))}
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			out.Status = apiErr.Status
		}
		return ListPage{}, out
	}
	s.logger.Info("record deleted", zap.String("id", id))
	return s.page(coll.Snapshot()), view.Outcome{
		OK:    true,
		Toast: view.Success(fmt.Sprintf("%s deleted successfully", s.spec.Meta.Singular)),
	}
}

// Print implements Screen. A valid marker (or opts.Auto) embeds the print
// script; the marker is spent even when it does not match.
func (s *EntityScreen[T, D]) Print(ctx context.Context, id string, opts PrintOptions) (PrintResult, error) {
	kind := s.spec.Meta.Print
	if kind == "" {
		return PrintResult{}, ErrNotPrintable
	}
	if s.deps.Templates == nil {
		return PrintResult{}, fmt.Errorf("print templates are not configured")
	}

	rec := s.record(ctx, id)
	res := PrintResult{Record: erase(rec)}
	if !rec.Found() {
		return res, nil
	}

	auto := opts.Auto
	if s.deps.Markers != nil && s.deps.Markers.Consume(opts.Marker, s.spec.Meta.Name, id) {
		auto = true
	}
	if opts.PDF {
		auto = false
	}
	res.AutoPrint = auto

	html, err := s.deps.Templates.Render(kind, *rec.Item, auto)
	if err != nil {
		return res, err
	}
	res.HTML = html

	if !opts.PDF {
		return res, nil
	}
	if s.deps.PDF == nil {
		return res, ErrPDFDisabled
	}
	pdf, err := s.deps.PDF.Render(ctx, &printing.RenderRequest{
		HTML:  html,
		Title: s.spec.Meta.Singular + " " + id,
		Paper: kind.Paper(),
	})
	if err != nil {
		return res, err
	}
	res.PDF = pdf
	return res, nil
}

var _ Screen = (*EntityScreen[struct{ ID string }, struct{}])(nil)
