package screen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/console/internal/application/form"
	"github.com/erp/console/internal/application/remote"
	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/domain/catalog"
	"github.com/erp/console/internal/domain/finance"
	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/domain/shared"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/infrastructure/printing"
)

// fakeAPI is an in-process stand-in for the remote API
type fakeAPI struct {
	mu      sync.Mutex
	mux     *http.ServeMux
	deleted []string
	calls   map[string]int
}

func (f *fakeAPI) count(pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[pattern]
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[pattern]++
		f.mu.Unlock()
		h(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFakeAPI(t *testing.T) (*fakeAPI, Deps) {
	t.Helper()
	api := &fakeAPI{mux: http.NewServeMux(), calls: map[string]int{}}
	srv := httptest.NewServer(api.mux)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL}, apiclient.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	engine, err := printing.NewTemplateEngine(printing.Company{Name: "Corner Shop"})
	require.NoError(t, err)

	return api, Deps{
		Client:    client,
		Templates: engine,
		Markers:   NewMarkerStore(0),
		PageSize:  20,
	}
}

var (
	yes = remote.ConfirmFunc(func(context.Context, string) bool { return true })
	no  = remote.ConfirmFunc(func(context.Context, string) bool { return false })
)

func TestBuild_Registry(t *testing.T) {
	_, deps := newFakeAPI(t)
	r := Build(deps)

	names := r.Names()
	for _, want := range []string{"products", "suppliers", "customers", "warehouses", "shops",
		"transporters", "bank-accounts", "purchases", "sales", "shipments", "damages"} {
		assert.Contains(t, names, want)
	}
	for _, kind := range finance.AllExpenseKinds {
		s, ok := r.Get(ExpenseScreenName(kind))
		require.True(t, ok, kind)
		assert.Equal(t, kind.DisplayName(), s.Meta().Title)
	}
	assert.Len(t, names, 11+len(finance.AllExpenseKinds))

	_, ok := r.Products()
	assert.True(t, ok)

	bank, _ := r.Get("bank-accounts")
	assert.Equal(t, []identity.Role{identity.RoleAdmin}, bank.Meta().Roles)

	sales, _ := r.Get("sales")
	assert.Equal(t, printing.KindInvoice, sales.Meta().Print)
	assert.Empty(t, sales.Meta().Roles)
	assert.Contains(t, sales.Meta().Columns, "Due")

	_, ok = r.Get("nope")
	assert.False(t, ok)
}

func TestEntityScreen_List(t *testing.T) {
	api, deps := newFakeAPI(t)
	api.handle("GET /suppliers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{
				{"id": "s1", "name": "Acme Traders", "phone": "555-0101", "email": "acme@example.com"},
				{"id": "s2", "name": "Blue River", "phone": "555-0102"},
			},
			"meta": map[string]any{"total": 22, "totalPages": 2, "currentPage": 2},
		})
	})
	s, _ := Build(deps).Get("suppliers")

	page, err := s.List(context.Background(), shared.Filter{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, 22, page.TotalCount)
	assert.Equal(t, 2, page.PageCount)
	assert.Equal(t, []string{"Name", "Contact", "Phone", "Email"}, page.Columns)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, []string{"Acme Traders", "-", "555-0101", "acme@example.com"}, page.Rows[0])
	assert.Equal(t, "-", page.Rows[1][3])
	assert.Equal(t, RowActions{ID: "s2", View: "/suppliers/s2", Edit: "/suppliers/s2/edit"}, page.Actions[1])
}

func TestEntityScreen_ListFailure(t *testing.T) {
	api, deps := newFakeAPI(t)
	api.handle("GET /customers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "database unavailable"})
	})
	s, _ := Build(deps).Get("customers")

	page, err := s.List(context.Background(), shared.Filter{})
	require.Error(t, err)
	assert.Equal(t, "database unavailable", page.Error)
	assert.Empty(t, page.Rows)
}

func TestEntityScreen_Delete(t *testing.T) {
	newAPI := func(t *testing.T) (*fakeAPI, Screen) {
		api, deps := newFakeAPI(t)
		api.handle("GET /shops", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
				{"id": "sh2", "name": "Harbour", "location": "Pier 4"},
			}, "total": 1})
		})
		api.handle("DELETE /shops/{id}", func(w http.ResponseWriter, r *http.Request) {
			api.mu.Lock()
			api.deleted = append(api.deleted, r.PathValue("id"))
			api.mu.Unlock()
			if r.PathValue("id") == "locked" {
				writeJSON(w, http.StatusConflict, map[string]any{"message": "Shop has open sales"})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
		s, _ := Build(deps).Get("shops")
		return api, s
	}

	t.Run("declined sends nothing", func(t *testing.T) {
		api, s := newAPI(t)
		_, out := s.Delete(context.Background(), "sh1", shared.Filter{}, no)
		assert.False(t, out.OK)
		require.NotNil(t, out.Toast)
		assert.Equal(t, view.ToastInfo, out.Toast.Kind)
		assert.Empty(t, api.deleted)
	})

	t.Run("confirmed deletes and refetches", func(t *testing.T) {
		api, s := newAPI(t)
		page, out := s.Delete(context.Background(), "sh1", shared.Filter{}, yes)
		assert.True(t, out.OK)
		assert.Equal(t, "Shop deleted successfully", out.Toast.Message)
		assert.Equal(t, []string{"sh1"}, api.deleted)
		assert.Equal(t, 1, api.count("GET /shops"))
		require.Len(t, page.Rows, 1)
		assert.Equal(t, "Harbour", page.Rows[0][0])
	})

	t.Run("server refusal is reported", func(t *testing.T) {
		api, s := newAPI(t)
		_, out := s.Delete(context.Background(), "locked", shared.Filter{}, yes)
		assert.False(t, out.OK)
		assert.Equal(t, view.ToastError, out.Toast.Kind)
		assert.Equal(t, "Shop has open sales", out.Toast.Message)
		assert.Equal(t, http.StatusConflict, out.Status)
		assert.Zero(t, api.count("GET /shops"))
	})
}

func saleJSON(id string) map[string]any {
	return map[string]any{
		"id": id, "invoiceNumber": "INV-" + id, "shopId": "shop-1", "shopName": "Main Street",
		"saleDate": "2024-03-04T00:00:00Z", "paymentStatus": "paid", "totalAmount": "40.00",
		"items": []map[string]any{{"productId": "p1", "productName": "Green Tea", "quantity": "2", "rate": "20"}},
	}
}

func TestEntityScreen_Print(t *testing.T) {
	api, deps := newFakeAPI(t)
	api.handle("GET /sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Sale not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": saleJSON(r.PathValue("id"))})
	})
	r := Build(deps)
	sales, _ := r.Get("sales")
	ctx := context.Background()

	t.Run("marker prints once", func(t *testing.T) {
		token := deps.Markers.Issue("sales", "42")

		first, err := sales.Print(ctx, "42", PrintOptions{Marker: token})
		require.NoError(t, err)
		assert.True(t, first.AutoPrint)
		assert.Contains(t, first.HTML, "INV-42")
		assert.Contains(t, first.HTML, "window.print()")

		again, err := sales.Print(ctx, "42", PrintOptions{Marker: token})
		require.NoError(t, err)
		assert.False(t, again.AutoPrint)
		assert.NotContains(t, again.HTML, "window.print()")
	})

	t.Run("missing record keeps the marker", func(t *testing.T) {
		token := deps.Markers.Issue("sales", "missing")
		res, err := sales.Print(ctx, "missing", PrintOptions{Marker: token})
		require.NoError(t, err)
		assert.Equal(t, remote.RecordNotFound, res.Record.State)
		assert.Equal(t, "Sale not found", res.Record.Error)
		assert.Empty(t, res.HTML)
		assert.Equal(t, 1, deps.Markers.Len())
	})

	t.Run("pdf without renderer", func(t *testing.T) {
		_, err := sales.Print(ctx, "42", PrintOptions{PDF: true})
		assert.ErrorIs(t, err, ErrPDFDisabled)
	})

	t.Run("not printable", func(t *testing.T) {
		shops, _ := r.Get("shops")
		_, err := shops.Print(ctx, "1", PrintOptions{})
		assert.True(t, IsNotPrintable(err))
	})
}

func TestEntityScreen_Detail(t *testing.T) {
	api, deps := newFakeAPI(t)
	api.handle("GET /sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, saleJSON(r.PathValue("id")))
	})
	sales, _ := Build(deps).Get("sales")

	rec := sales.Detail(context.Background(), "7")
	require.True(t, rec.Found())
	assert.Equal(t, "/sales", rec.BackTo)

	empty := sales.Detail(context.Background(), "")
	assert.Equal(t, remote.RecordNotFound, empty.State)
}

func TestEntityScreen_Submit(t *testing.T) {
	api, deps := newFakeAPI(t)
	var got map[string]any
	api.handle("POST /warehouses", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, map[string]any{"id": "w9", "name": got["name"], "location": got["location"]})
	})
	s, _ := Build(deps).Get("warehouses")
	ctx := context.Background()

	t.Run("valid draft is created", func(t *testing.T) {
		fv, out := s.Submit(ctx, "", json.RawMessage(`{"name":"North Depot","location":"Ring Road 3"}`), nil)
		assert.True(t, out.OK)
		assert.Equal(t, "Warehouse created successfully", out.Toast.Message)
		assert.Equal(t, "/warehouses", out.Redirect)
		assert.Equal(t, form.ModeCreate, fv.Mode)
		assert.Equal(t, "North Depot", got["name"])
	})

	t.Run("missing fields stay on the form", func(t *testing.T) {
		before := api.count("POST /warehouses")
		fv, out := s.Submit(ctx, "", json.RawMessage(`{"name":"North Depot"}`), nil)
		assert.False(t, out.OK)
		assert.Equal(t, "This field is required", fv.Errors["location"])
		assert.Equal(t, before, api.count("POST /warehouses"))
	})

	t.Run("undecodable draft", func(t *testing.T) {
		fv, out := s.Submit(ctx, "w1", json.RawMessage(`{"name":`), nil)
		assert.False(t, out.OK)
		assert.Equal(t, view.ToastError, out.Toast.Kind)
		assert.Equal(t, form.ModeUpdate, fv.Mode)
	})
}

func TestEntityScreen_SubmitBlankFields(t *testing.T) {
	api, deps := newFakeAPI(t)
	var got map[string]any
	api.handle("POST /shipments", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, map[string]any{"id": "sp1"})
	})
	api.handle("POST /bank-accounts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": "b1"})
	})
	r := Build(deps)
	shipments, _ := r.Get("shipments")
	accounts, _ := r.Get("bank-accounts")
	ctx := context.Background()
	items := `"items":[{"productId":"p1","quantity":"2","rate":"10"}]`

	t.Run("blank select and date are field errors", func(t *testing.T) {
		fv, out := shipments.Submit(ctx, "", json.RawMessage(`{"transporterId":"t1","fromWarehouseId":"w1","toShopId":"s1",`+
			`"shipDate":"","status":"",`+items+`}`), nil)
		assert.False(t, out.OK)
		assert.Equal(t, "This field is required", fv.Errors["shipDate"])
		assert.Equal(t, "This field is required", fv.Errors["status"])
		assert.Zero(t, api.count("POST /shipments"))
	})

	t.Run("blank account type is a field error", func(t *testing.T) {
		fv, out := accounts.Submit(ctx, "", json.RawMessage(
			`{"accountName":"Ops","accountNumber":"111","bankName":"ABC Bank","accountType":""}`), nil)
		assert.False(t, out.OK)
		assert.Equal(t, map[string]string{"accountType": "This field is required"}, fv.Errors)
		assert.Zero(t, api.count("POST /bank-accounts"))
	})

	t.Run("unknown select value is still rejected", func(t *testing.T) {
		_, out := accounts.Submit(ctx, "", json.RawMessage(
			`{"accountName":"Ops","accountNumber":"111","bankName":"ABC Bank","accountType":"offshore"}`), nil)
		assert.False(t, out.OK)
		require.NotNil(t, out.Toast)
		assert.Equal(t, view.ToastError, out.Toast.Kind)
	})

	t.Run("date-only value is accepted", func(t *testing.T) {
		_, out := shipments.Submit(ctx, "", json.RawMessage(`{"transporterId":"t1","fromWarehouseId":"w1","toShopId":"s1",`+
			`"shipDate":"2024-05-01","status":"pending",`+items+`}`), nil)
		require.True(t, out.OK, out.Toast)
		assert.Equal(t, "2024-05-01", got["shipDate"])
		assert.Equal(t, "pending", got["status"])
	})
}

func TestEntityScreen_EditForm(t *testing.T) {
	api, deps := newFakeAPI(t)
	api.handle("GET /customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "gone" {
			writeJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "c1", "name": "Mira", "phone": "555", "balance": "0"})
	})
	api.handle("GET /shops", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "sh1", "name": "Harbour"}})
	})
	s, _ := Build(deps).Get("customers")

	fv, out := s.EditForm(context.Background(), "c1")
	assert.Empty(t, out.Redirect)
	assert.Equal(t, form.ModeUpdate, fv.Mode)
	assert.Contains(t, fv.Options.Values, "shops")
	assert.Empty(t, fv.Options.Errors)

	_, out = s.EditForm(context.Background(), "gone")
	assert.Equal(t, "/customers", out.Redirect)
	require.NotNil(t, out.Toast)
	assert.Equal(t, view.ToastError, out.Toast.Kind)
}

func TestProductScreen_Select(t *testing.T) {
	api, deps := newFakeAPI(t)
	api.handle("GET /packing-units", func(w http.ResponseWriter, r *http.Request) {
		qu := r.URL.Query().Get("quantityUnit")
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": qu + "-box", "name": "Box", "quantityUnitId": qu},
		})
	})
	api.handle("GET /pouches", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{}})
	})
	p, ok := Build(deps).Products()
	require.True(t, ok)
	ctx := context.Background()

	t.Run("quantity unit resets dependents", func(t *testing.T) {
		sel := ProductSelection{Field: FieldQuantityUnit, Value: "kg"}
		sel.Draft.QuantityUnit = "piece"
		sel.Draft.PackingUnit = "piece-box"
		sel.Draft.Pouch = "small"

		fv, err := p.Select(ctx, sel)
		require.NoError(t, err)
		draft := fv.Draft.(catalog.ProductInput)
		assert.Equal(t, "kg", draft.QuantityUnit)
		assert.Empty(t, draft.PackingUnit)
		assert.Empty(t, draft.Pouch)
		assert.Contains(t, fv.Dependent, "packingUnits")
		assert.Equal(t, 1, api.count("GET /packing-units"))
	})

	t.Run("supplier change drops purchasing errors", func(t *testing.T) {
		sel := ProductSelection{
			Field:  FieldSupplier,
			Value:  "",
			Errors: map[string]string{"currency": "This field is required", "name": "This field is required"},
		}
		sel.Draft.SupplierID = "sup-1"
		sel.Draft.WarehouseID = "wh-1"

		fv, err := p.Select(ctx, sel)
		require.NoError(t, err)
		assert.NotContains(t, fv.Errors, "currency")
		assert.Contains(t, fv.Errors, "name")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := p.Select(ctx, ProductSelection{Field: "colour"})
		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("empty quantity unit lists nothing", func(t *testing.T) {
		units, err := p.PackingUnits(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, units)
	})
}

func TestMeta_Paths(t *testing.T) {
	m := Meta{Name: "bank-accounts"}
	assert.Equal(t, "/bank-accounts", m.ListPath())
	assert.Equal(t, "/bank-accounts/9", m.ViewPath("9"))
	assert.Equal(t, fmt.Sprintf("/bank-accounts/%d/edit", 9), m.EditPath("9"))
}
