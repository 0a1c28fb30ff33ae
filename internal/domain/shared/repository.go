package shared

// Filter represents list query options sent to the remote API
type Filter struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		Filters:  make(map[string]string),
	}
}

// Clone returns a deep copy of the filter
func (f Filter) Clone() Filter {
	out := f
	out.Filters = make(map[string]string, len(f.Filters))
	for k, v := range f.Filters {
		out.Filters[k] = v
	}
	return out
}

// Page is the canonical list shape every envelope is normalized into.
// TotalCount and PageCount are the server's numbers; Estimated is set when
// the server omitted them and they were derived from the rows received.
type Page[T any] struct {
	Items       []T  `json:"items"`
	TotalCount  int  `json:"total_count"`
	PageCount   int  `json:"page_count"`
	CurrentPage int  `json:"current_page"`
	Estimated   bool `json:"estimated,omitempty"`
}
