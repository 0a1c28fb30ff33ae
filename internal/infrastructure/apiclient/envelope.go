package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/erp/console/internal/domain/shared"
)

// Field names the API uses, inconsistently across endpoints, for the same
// pagination facts. Checked in order.
var (
	rowKeys        = []string{"data", "items", "results", "rows"}
	totalKeys      = []string{"total", "count", "totalItems", "totalCount", "total_count", "results"}
	pageCountKeys  = []string{"pages", "totalPages", "pageCount", "total_pages"}
	currentPageKey = []string{"currentPage", "page", "current_page"}
)

// DecodePage normalizes a list envelope into shared.Page. requested is the
// filter the request was issued with and supplies fallbacks for the
// current page and for deriving a page count.
func DecodePage[T any](body []byte, requested shared.Filter) (shared.Page[T], error) {
	page := shared.Page[T]{Items: []T{}}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return page, fmt.Errorf("empty list response")
	}

	// A bare array carries no bookkeeping at all
	if body[0] == '[' {
		if err := json.Unmarshal(body, &page.Items); err != nil {
			return page, fmt.Errorf("decoding rows: %w", err)
		}
		fillMissing(&page, requested, false, false)
		return page, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return page, fmt.Errorf("decoding envelope: %w", err)
	}

	rows, found := findRows(env)
	if !found {
		return page, fmt.Errorf("list response has no rows field")
	}
	if err := json.Unmarshal(rows, &page.Items); err != nil {
		return page, fmt.Errorf("decoding rows: %w", err)
	}
	if page.Items == nil {
		page.Items = []T{}
	}

	// Bookkeeping may sit at the top level, inside "meta"/"pagination", or
	// next to the rows when "data" is itself an object.
	scopes := []map[string]json.RawMessage{env}
	for _, k := range []string{"meta", "pagination"} {
		if nested := asObject(env[k]); nested != nil {
			scopes = append(scopes, nested)
		}
	}
	if nested := asObject(env["data"]); nested != nil {
		scopes = append(scopes, nested)
	}

	total, hasTotal := firstInt(scopes, totalKeys)
	pages, hasPages := firstInt(scopes, pageCountKeys)
	current, _ := firstInt(scopes, currentPageKey)

	page.TotalCount = total
	page.PageCount = pages
	page.CurrentPage = current
	fillMissing(&page, requested, hasTotal, hasPages)
	return page, nil
}

// DecodeRecord accepts either {"data": {...}} or the bare record
func DecodeRecord[T any](body []byte) (T, error) {
	var out T
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err == nil {
		for _, k := range []string{"data", "item", "result"} {
			if raw, ok := env[k]; ok && len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '{' {
				if err := json.Unmarshal(raw, &out); err != nil {
					return out, fmt.Errorf("decoding record: %w", err)
				}
				return out, nil
			}
		}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decoding record: %w", err)
	}
	return out, nil
}

func findRows(env map[string]json.RawMessage) (json.RawMessage, bool) {
	for _, k := range rowKeys {
		raw, ok := env[k]
		if !ok {
			continue
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			continue
		}
		switch trimmed[0] {
		case '[':
			return trimmed, true
		case 'n': // null
			return json.RawMessage("[]"), true
		case '{':
			if rows, ok := findRows(asObject(trimmed)); ok {
				return rows, true
			}
		}
	}
	return nil, false
}

func asObject(raw json.RawMessage) map[string]json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var m map[string]json.RawMessage
	if json.Unmarshal(trimmed, &m) != nil {
		return nil
	}
	return m
}

// firstInt returns the first key, across scopes in order, holding a number
func firstInt(scopes []map[string]json.RawMessage, keys []string) (int, bool) {
	for _, scope := range scopes {
		for _, k := range keys {
			raw, ok := scope[k]
			if !ok {
				continue
			}
			var n json.Number
			if json.Unmarshal(raw, &n) != nil {
				// "results" doubles as the rows key on some endpoints
				var s string
				if json.Unmarshal(raw, &s) != nil {
					continue
				}
				n = json.Number(s)
			}
			if v, err := n.Int64(); err == nil {
				return int(v), true
			}
			if f, err := n.Float64(); err == nil {
				return int(f), true
			}
		}
	}
	return 0, false
}

func fillMissing[T any](page *shared.Page[T], requested shared.Filter, hasTotal, hasPages bool) {
	if page.CurrentPage < 1 {
		page.CurrentPage = requested.Page
		if page.CurrentPage < 1 {
			page.CurrentPage = 1
		}
	}
	if !hasTotal {
		page.TotalCount = len(page.Items)
		page.Estimated = true
	}
	if !hasPages {
		page.Estimated = true
		switch {
		case requested.PageSize > 0 && hasTotal:
			page.PageCount = (page.TotalCount + requested.PageSize - 1) / requested.PageSize
		case len(page.Items) > 0:
			page.PageCount = page.CurrentPage
		}
	}
}
