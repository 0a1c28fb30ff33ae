package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/console/internal/domain/shared"
	"github.com/erp/console/internal/domain/trade"
)

type row struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestDecodePage(t *testing.T) {
	req := shared.Filter{Page: 2, PageSize: 10}

	tests := []struct {
		name      string
		body      string
		rows      int
		total     int
		pages     int
		current   int
		estimated bool
	}{
		{
			name: "data with total and pages",
			body: `{"data":[{"id":"1"},{"id":"2"}],"total":12,"pages":2,"currentPage":2}`,
			rows: 2, total: 12, pages: 2, current: 2,
		},
		{
			name: "data with count and totalPages",
			body: `{"data":[{"id":"1"}],"count":31,"totalPages":4,"page":3}`,
			rows: 1, total: 31, pages: 4, current: 3,
		},
		{
			name: "results as number",
			body: `{"data":[{"id":"1"}],"results":7,"pageCount":1}`,
			rows: 1, total: 7, pages: 1, current: 2,
		},
		{
			name: "results as rows",
			body: `{"results":[{"id":"1"},{"id":"2"},{"id":"3"}],"totalItems":3,"pages":1,"currentPage":1}`,
			rows: 3, total: 3, pages: 1, current: 1,
		},
		{
			name: "nested data object",
			body: `{"success":true,"data":{"items":[{"id":"1"}],"total":41,"total_pages":5}}`,
			rows: 1, total: 41, pages: 5, current: 2,
		},
		{
			name: "meta block",
			body: `{"success":true,"data":[{"id":"1"}],"meta":{"total":25,"page":3,"total_pages":3}}`,
			rows: 1, total: 25, pages: 3, current: 3,
		},
		{
			name: "total without pages derives page count",
			body: `{"data":[{"id":"1"}],"total":21}`,
			rows: 1, total: 21, pages: 3, current: 2, estimated: true,
		},
		{
			name: "no bookkeeping",
			body: `{"data":[{"id":"1"},{"id":"2"}]}`,
			rows: 2, total: 2, pages: 2, current: 2, estimated: true,
		},
		{
			name: "bare array",
			body: `[{"id":"1"}]`,
			rows: 1, total: 1, pages: 2, current: 2, estimated: true,
		},
		{
			name: "null data",
			body: `{"data":null,"total":0,"pages":0}`,
			rows: 0, total: 0, pages: 0, current: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := DecodePage[row]([]byte(tt.body), req)
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.rows)
			assert.NotNil(t, page.Items)
			assert.Equal(t, tt.total, page.TotalCount)
			assert.Equal(t, tt.pages, page.PageCount)
			assert.Equal(t, tt.current, page.CurrentPage)
			assert.Equal(t, tt.estimated, page.Estimated)
		})
	}
}

func TestDecodePage_Errors(t *testing.T) {
	_, err := DecodePage[row]([]byte(``), shared.DefaultFilter())
	assert.Error(t, err)

	_, err = DecodePage[row]([]byte(`{"message":"ok"}`), shared.DefaultFilter())
	assert.Error(t, err)

	_, err = DecodePage[trade.Shipment]([]byte(`{"data":[{"id":"s1","status":"lost"}]}`), shared.DefaultFilter())
	assert.Error(t, err, "unknown shipment status must be rejected at the boundary")
}

func TestDecodeRecord(t *testing.T) {
	r, err := DecodeRecord[row]([]byte(`{"data":{"id":"1","name":"wrapped"}}`))
	require.NoError(t, err)
	assert.Equal(t, "wrapped", r.Name)

	r, err = DecodeRecord[row]([]byte(`{"id":"2","name":"bare"}`))
	require.NoError(t, err)
	assert.Equal(t, "bare", r.Name)

	_, err = DecodeRecord[row]([]byte(`not json`))
	assert.Error(t, err)
}

func TestRouteOf(t *testing.T) {
	assert.Equal(t, "/products/:id", routeOf("/products/42"))
	assert.Equal(t, "/sales/:id/print", routeOf("/sales/6512bd43d9caa6e02c990b0a/print"))
	assert.Equal(t, "/shipments/:id", routeOf("/shipments/0b7e8d2a-5c1f-4e7a-9d3b-2f6a1c8e9b40"))
	assert.Equal(t, "/expenses/rent", routeOf("/expenses/rent"))
}
