package form

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/console/internal/domain/catalog"
)

// fakeUnits serves a fixed unit tree
type fakeUnits struct {
	calls int
	fail  bool
}

var quantityUnits = []string{"piece", "kg", "litre", "dozen"}

func (u *fakeUnits) PackingUnits(_ context.Context, qu string) ([]catalog.PackingUnit, error) {
	u.calls++
	if u.fail {
		return nil, errors.New("units offline")
	}
	return []catalog.PackingUnit{
		{ID: qu + "-box", Name: "Box", QuantityUnitID: qu},
		{ID: qu + "-crate", Name: "Crate", QuantityUnitID: qu},
	}, nil
}

func (u *fakeUnits) Pouches(_ context.Context, pu string) ([]catalog.Pouch, error) {
	u.calls++
	return []catalog.Pouch{{ID: pu + "-small", Name: "Small", PackingUnitID: pu}}, nil
}

func newProductForm(ep Endpoint[catalog.Product], units UnitCatalog, draft catalog.ProductInput) *ProductForm {
	return NewProductForm(Bind[catalog.Product](ep, ProductConfig, "", draft, nil), units)
}

func baseProduct() catalog.ProductInput {
	return catalog.ProductInput{Name: "Green Tea", Code: "GT-1", CategoryID: "c1", QuantityUnit: "piece"}
}

func TestProductForm_DependentReset(t *testing.T) {
	ctx := context.Background()

	for _, first := range quantityUnits {
		for _, second := range quantityUnits {
			if first == second {
				continue
			}
			t.Run(first+" to "+second, func(t *testing.T) {
				p := newProductForm(new(MockEndpoint[catalog.Product]), &fakeUnits{}, catalog.ProductInput{})

				require.NoError(t, p.SelectQuantityUnit(ctx, first))
				require.NoError(t, p.SelectPackingUnit(ctx, first+"-box"))
				p.SelectPouch(first + "-box-small")
				require.Equal(t, first+"-box-small", p.Draft().Pouch)

				require.NoError(t, p.SelectQuantityUnit(ctx, second))
				d := p.Draft()
				assert.Equal(t, second, d.QuantityUnit)
				assert.Empty(t, d.PackingUnit)
				assert.Empty(t, d.Pouch)
				assert.Empty(t, p.PouchOptions())
				for _, pu := range p.PackingUnitOptions() {
					assert.Equal(t, second, pu.QuantityUnitID)
				}
			})
		}
	}
}

func TestProductForm_SameSelectionKeepsDependents(t *testing.T) {
	ctx := context.Background()
	units := &fakeUnits{}
	p := newProductForm(new(MockEndpoint[catalog.Product]), units, catalog.ProductInput{})

	require.NoError(t, p.SelectQuantityUnit(ctx, "kg"))
	require.NoError(t, p.SelectPackingUnit(ctx, "kg-box"))
	p.SelectPouch("kg-box-small")
	calls := units.calls

	require.NoError(t, p.SelectQuantityUnit(ctx, "kg"))
	assert.Equal(t, "kg-box", p.Draft().PackingUnit)
	assert.Equal(t, "kg-box-small", p.Draft().Pouch)
	assert.Equal(t, calls, units.calls)
}

func TestProductForm_PackingUnitChangeClearsPouch(t *testing.T) {
	ctx := context.Background()
	p := newProductForm(new(MockEndpoint[catalog.Product]), &fakeUnits{}, catalog.ProductInput{})

	require.NoError(t, p.SelectQuantityUnit(ctx, "kg"))
	require.NoError(t, p.SelectPackingUnit(ctx, "kg-box"))
	p.SelectPouch("kg-box-small")

	require.NoError(t, p.SelectPackingUnit(ctx, "kg-crate"))
	assert.Empty(t, p.Draft().Pouch)
	require.Len(t, p.PouchOptions(), 1)
	assert.Equal(t, "kg-crate", p.PouchOptions()[0].PackingUnitID)
}

func TestProductForm_OptionFetchFailure(t *testing.T) {
	p := newProductForm(new(MockEndpoint[catalog.Product]), &fakeUnits{fail: true}, catalog.ProductInput{PackingUnit: "old", Pouch: "old"})

	require.Error(t, p.SelectQuantityUnit(context.Background(), "kg"))
	assert.Empty(t, p.Draft().PackingUnit, "stale selection is cleared even when options fail")
	assert.Empty(t, p.PackingUnitOptions())
}

func TestProductForm_ConditionalRequired(t *testing.T) {
	ctx := context.Background()

	t.Run("no supplier and no warehouse submits without purchasing fields", func(t *testing.T) {
		ep := new(MockEndpoint[catalog.Product])
		ep.On("Create", mock.Anything, mock.Anything).Return(catalog.Product{}, nil).Once()

		out := newProductForm(ep, &fakeUnits{}, baseProduct()).Submit(ctx)
		assert.True(t, out.OK)
		assert.Empty(t, out.Errors)
		ep.AssertExpectations(t)
	})

	t.Run("only one of supplier or warehouse does not require them", func(t *testing.T) {
		for _, draft := range []catalog.ProductInput{
			func() catalog.ProductInput { d := baseProduct(); d.SupplierID = "s1"; return d }(),
			func() catalog.ProductInput { d := baseProduct(); d.WarehouseID = "w1"; return d }(),
		} {
			ep := new(MockEndpoint[catalog.Product])
			ep.On("Create", mock.Anything, mock.Anything).Return(catalog.Product{}, nil).Once()
			assert.True(t, newProductForm(ep, &fakeUnits{}, draft).Submit(ctx).OK)
		}
	})

	t.Run("both selected require exactly the blank purchasing fields", func(t *testing.T) {
		rate := decimal.NewFromInt(10)
		qty := 5
		cases := []struct {
			name  string
			fill  func(*catalog.ProductInput)
			blank []string
		}{
			{"all blank", func(*catalog.ProductInput) {}, catalog.PurchasingFields},
			{"only currency", func(d *catalog.ProductInput) { d.Currency = "USD" },
				[]string{"purchaseRate", "wholesaleRate", "retailRate", "stockQuantity"}},
			{"missing stock", func(d *catalog.ProductInput) {
				d.Currency = "USD"
				d.PurchaseRate, d.WholesaleRate, d.RetailRate = &rate, &rate, &rate
			}, []string{"stockQuantity"}},
			{"missing rates", func(d *catalog.ProductInput) {
				d.Currency = "USD"
				d.StockQuantity = &qty
			}, []string{"purchaseRate", "wholesaleRate", "retailRate"}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				ep := new(MockEndpoint[catalog.Product])
				d := baseProduct()
				d.SupplierID, d.WarehouseID = "s1", "w1"
				tc.fill(&d)

				out := newProductForm(ep, &fakeUnits{}, d).Submit(ctx)
				assert.False(t, out.OK)
				assert.ElementsMatch(t, tc.blank, keys(out.Errors))
				ep.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("leaving the combination clears errors but keeps values", func(t *testing.T) {
		ep := new(MockEndpoint[catalog.Product])
		d := baseProduct()
		d.SupplierID, d.WarehouseID, d.Currency = "s1", "w1", "USD"
		p := newProductForm(ep, &fakeUnits{}, d)

		out := p.Submit(ctx)
		require.Contains(t, out.Errors, "purchaseRate")

		p.SelectWarehouse("")
		for _, f := range catalog.PurchasingFields {
			assert.NotContains(t, p.Errors(), f)
		}
		assert.Equal(t, "USD", p.Draft().Currency)
		assert.Equal(t, "s1", p.Draft().SupplierID)

		// re-entering keeps the form clean until the next submit
		p.SelectWarehouse("w1")
		assert.Empty(t, p.Errors())
	})

	t.Run("other errors survive supplier change", func(t *testing.T) {
		ep := new(MockEndpoint[catalog.Product])
		d := baseProduct()
		d.Name = ""
		d.SupplierID, d.WarehouseID = "s1", "w1"
		p := newProductForm(ep, &fakeUnits{}, d)
		p.Submit(ctx)

		p.SelectSupplier("")
		assert.Equal(t, map[string]string{"name": "This field is required"}, p.Errors())
	})
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
