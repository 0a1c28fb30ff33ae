package remote

import (
	"context"

	"github.com/erp/console/internal/infrastructure/apiclient"
)

// NotFoundMessage is shown for a missing record without a server message
const NotFoundMessage = "Record not found"

// Getter fetches a single record
type Getter[T any] interface {
	Get(ctx context.Context, id string) (T, error)
}

// RecordState is the lifecycle of a detail screen's record
type RecordState string

const (
	RecordLoading  RecordState = "loading"
	RecordReady    RecordState = "ready"
	RecordNotFound RecordState = "not_found"
)

// Record is a detail screen's fetched record. A missing record and a
// failed fetch both end in RecordNotFound with a single way back to the
// list; nothing redirects automatically.
type Record[T any] struct {
	ID     string      `json:"id"`
	State  RecordState `json:"state"`
	Item   *T          `json:"item,omitempty"`
	Error  string      `json:"error,omitempty"`
	BackTo string      `json:"back_to,omitempty"`
}

// LoadRecord fetches id from g. backTo is the list screen offered when the
// record cannot be shown.
func LoadRecord[T any](ctx context.Context, g Getter[T], id, backTo string) Record[T] {
	rec := Record[T]{ID: id, State: RecordLoading, BackTo: backTo}
	if id == "" {
		rec.State = RecordNotFound
		rec.Error = NotFoundMessage
		return rec
	}

	item, err := g.Get(ctx, id)
	if err != nil {
		rec.State = RecordNotFound
		if apiclient.IsNotFound(err) {
			rec.Error = apiclient.MessageOr(err, NotFoundMessage)
		} else {
			rec.Error = apiclient.MessageOr(err, LoadFailedMessage)
		}
		return rec
	}
	rec.State = RecordReady
	rec.Item = &item
	return rec
}

// Found reports whether the record is ready
func (r Record[T]) Found() bool {
	return r.State == RecordReady && r.Item != nil
}
