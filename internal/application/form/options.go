package form

import (
	"context"
	"sync"

	"github.com/erp/console/internal/infrastructure/apiclient"
)

// OptionLoader fetches one option list (categories, currencies, ...)
type OptionLoader func(ctx context.Context) (any, error)

// Options are the option lists of a form, keyed by name. A list that
// failed to load is absent from Values and has a message in Errors; the
// other lists are unaffected.
type Options struct {
	Values map[string]any    `json:"values"`
	Errors map[string]string `json:"errors,omitempty"`
}

// LoadOptions runs every loader concurrently and waits for all of them
func LoadOptions(ctx context.Context, loaders map[string]OptionLoader) Options {
	out := Options{
		Values: make(map[string]any, len(loaders)),
		Errors: make(map[string]string),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, load := range loaders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := load(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Errors[name] = apiclient.MessageOr(err, "Failed to load "+name)
				return
			}
			out.Values[name] = v
		}()
	}
	wg.Wait()
	return out
}

// Fetch adapts a typed option fetch to an OptionLoader
func Fetch[T any](c *apiclient.Client, path string) OptionLoader {
	return func(ctx context.Context) (any, error) {
		return apiclient.FetchOptions[T](ctx, c, path, nil)
	}
}
