// Package form implements the create/update workflow shared by every
// entity form: a draft, advisory client-side validation with a keyed
// error map, and a single in-flight submission that redirects to the list
// on success and keeps the draft on failure.
package form

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/infrastructure/apiclient"
)

// FailedMessage is shown when a submission fails without a server message
const FailedMessage = "Operation failed"

// Mode distinguishes create forms from update forms
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// Endpoint is the remote resource a form reads and writes.
// apiclient.Resource satisfies it.
type Endpoint[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, body any) (T, error)
	Update(ctx context.Context, id string, body any) (T, error)
}

// Config describes one entity's form
type Config[T, D any] struct {
	// Entity is the singular display name used in toasts, e.g. "Product"
	Entity string
	// ListPath is where a successful submission navigates
	ListPath string
	// Seed turns a fetched record into an update draft
	Seed func(T) D
	// FileField names the multipart part for an attached file
	FileField string
}

// Form is one open create or update form
type Form[T, D any] struct {
	endpoint Endpoint[T]
	cfg      Config[T, D]
	validate *validator.Validate
	logger   *zap.Logger

	mu         sync.Mutex
	mode       Mode
	id         string
	draft      D
	errors     map[string]string
	submitting bool
	file       *apiclient.File
}

// New opens a create form with an empty draft
func New[T, D any](endpoint Endpoint[T], cfg Config[T, D], logger *zap.Logger) *Form[T, D] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Form[T, D]{
		endpoint: endpoint,
		cfg:      cfg,
		validate: NewValidator(),
		logger:   logger.Named("form"),
		mode:     ModeCreate,
		errors:   make(map[string]string),
	}
}

// Bind reopens a form around a draft the user already edited. An empty id
// means create mode.
func Bind[T, D any](endpoint Endpoint[T], cfg Config[T, D], id string, draft D, logger *zap.Logger) *Form[T, D] {
	f := New(endpoint, cfg, logger)
	if id != "" {
		f.mode = ModeUpdate
		f.id = id
	}
	f.draft = draft
	return f
}

// Open fetches record id and seeds an update form from it. When the fetch
// fails the form cannot be used: the outcome carries an error toast and a
// redirect to the list, and the returned form is nil.
func Open[T, D any](ctx context.Context, endpoint Endpoint[T], cfg Config[T, D], id string, logger *zap.Logger) (*Form[T, D], view.Outcome) {
	f := New(endpoint, cfg, logger)
	rec, err := endpoint.Get(ctx, id)
	if err != nil {
		f.logger.Warn("update form fetch failed", zap.String("entity", cfg.Entity), zap.String("id", id), zap.Error(err))
		return nil, view.Outcome{
			Toast:    view.Error(apiclient.MessageOr(err, fmt.Sprintf("%s not found", cfg.Entity))),
			Redirect: cfg.ListPath,
		}
	}
	f.mode = ModeUpdate
	f.id = id
	if cfg.Seed != nil {
		f.draft = cfg.Seed(rec)
	}
	return f, view.Outcome{OK: true}
}

// Mode returns the form mode
func (f *Form[T, D]) Mode() Mode { return f.mode }

// ID returns the record id in update mode
func (f *Form[T, D]) ID() string { return f.id }

// Draft returns a copy of the draft
func (f *Form[T, D]) Draft() D {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Edit mutates the draft in place
func (f *Form[T, D]) Edit(fn func(*D)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.draft)
}

// Attach sets the file submitted with the draft; nil detaches. A form
// with a file submits multipart.
func (f *Form[T, D]) Attach(file *apiclient.File) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file != nil && file.Field == "" {
		file.Field = f.cfg.FileField
		if file.Field == "" {
			file.Field = "image"
		}
	}
	f.file = file
}

// Errors returns a copy of the field errors
func (f *Form[T, D]) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errors)
}

// SetErrors replaces the field errors, e.g. when a form is rebound from a
// previous round trip
func (f *Form[T, D]) SetErrors(errs map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = maps.Clone(errs)
	if f.errors == nil {
		f.errors = make(map[string]string)
	}
}

// ClearErrors removes the errors of the named fields
func (f *Form[T, D]) ClearErrors(fields ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range fields {
		delete(f.errors, name)
	}
}

// Submitting reports whether a submission is in flight
func (f *Form[T, D]) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Validate runs the client-side checks and stores the resulting errors
func (f *Form[T, D]) Validate() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = FieldErrors(f.validate, f.draft)
	return maps.Clone(f.errors)
}

// Submit validates and sends the draft. Validation errors block the call.
// Only one submission runs at a time. Success redirects to the list;
// failure keeps the draft and surfaces the server message.
func (f *Form[T, D]) Submit(ctx context.Context) view.Outcome {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return view.Outcome{Toast: view.Warning("Submission already in progress")}
	}
	f.errors = FieldErrors(f.validate, f.draft)
	if len(f.errors) > 0 {
		errs := maps.Clone(f.errors)
		f.mu.Unlock()
		return view.Outcome{Errors: errs}
	}
	f.submitting = true
	draft, file := f.draft, f.file
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	var body any = draft
	if file != nil {
		mp, err := ToMultipart(draft, *file)
		if err != nil {
			return view.Outcome{Toast: view.Error(FailedMessage)}
		}
		body = mp
	}

	var err error
	verb := "created"
	if f.mode == ModeUpdate {
		verb = "updated"
		_, err = f.endpoint.Update(ctx, f.id, body)
	} else {
		_, err = f.endpoint.Create(ctx, body)
	}
	if err != nil {
		f.logger.Warn("form submission failed",
			zap.String("entity", f.cfg.Entity), zap.String("mode", string(f.mode)), zap.Error(err))
		return view.Outcome{Toast: view.Error(apiclient.MessageOr(err, FailedMessage))}
	}

	f.logger.Info("form submitted", zap.String("entity", f.cfg.Entity), zap.String("mode", string(f.mode)))
	return view.Outcome{
		OK:       true,
		Toast:    view.Success(fmt.Sprintf("%s %s successfully", f.cfg.Entity, verb)),
		Redirect: f.cfg.ListPath,
	}
}
