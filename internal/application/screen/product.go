package screen

import (
	"context"

	"github.com/erp/console/internal/application/form"
	"github.com/erp/console/internal/domain/catalog"
	"github.com/erp/console/internal/domain/shared"
)

// ErrUnknownField is returned by Select for a field without a selection rule
var ErrUnknownField = shared.NewDomainError("INVALID_INPUT", "Unknown product form field")

// Product form fields that Select understands
const (
	FieldQuantityUnit = "quantityUnit"
	FieldPackingUnit  = "packingUnit"
	FieldPouch        = "pouch"
	FieldSupplier     = "supplierId"
	FieldWarehouse    = "warehouseId"
)

// ProductScreen is the product entity screen plus the dependent unit
// fields of its form
type ProductScreen struct {
	*EntityScreen[catalog.Product, catalog.ProductInput]
	units form.UnitCatalog
}

// ProductSelection is one field change on an open product form
type ProductSelection struct {
	ID     string               `json:"id,omitempty"`
	Draft  catalog.ProductInput `json:"draft"`
	Errors map[string]string    `json:"errors,omitempty"`
	Field  string               `json:"field" binding:"required"`
	Value  string               `json:"value"`
}

// NewProductScreen wraps an entity screen with the unit catalog
func NewProductScreen(s *EntityScreen[catalog.Product, catalog.ProductInput], units form.UnitCatalog) *ProductScreen {
	return &ProductScreen{EntityScreen: s, units: units}
}

// PackingUnits lists the packing units offered for a quantity unit
func (p *ProductScreen) PackingUnits(ctx context.Context, quantityUnit string) ([]catalog.PackingUnit, error) {
	if quantityUnit == "" {
		return []catalog.PackingUnit{}, nil
	}
	return p.units.PackingUnits(ctx, quantityUnit)
}

// Pouches lists the pouches offered for a packing unit
func (p *ProductScreen) Pouches(ctx context.Context, packingUnit string) ([]catalog.Pouch, error) {
	if packingUnit == "" {
		return []catalog.Pouch{}, nil
	}
	return p.units.Pouches(ctx, packingUnit)
}

// Select applies one field change to the draft and returns the updated
// form. Dependent holds only the option lists the change refreshed.
// An option fetch failure is returned together with the updated form: the
// stale selections are cleared either way.
func (p *ProductScreen) Select(ctx context.Context, sel ProductSelection) (FormView, error) {
	f := form.Bind[catalog.Product, catalog.ProductInput](p.backend, p.spec.Form, sel.ID, sel.Draft, p.logger)
	f.SetErrors(sel.Errors)
	pf := form.NewProductForm(f, p.units)

	dependent := map[string]any{}
	var err error
	switch sel.Field {
	case FieldQuantityUnit:
		err = pf.SelectQuantityUnit(ctx, sel.Value)
		dependent["packingUnits"] = pf.PackingUnitOptions()
		dependent["pouches"] = pf.PouchOptions()
	case FieldPackingUnit:
		err = pf.SelectPackingUnit(ctx, sel.Value)
		dependent["pouches"] = pf.PouchOptions()
	case FieldPouch:
		pf.SelectPouch(sel.Value)
	case FieldSupplier:
		pf.SelectSupplier(sel.Value)
	case FieldWarehouse:
		pf.SelectWarehouse(sel.Value)
	default:
		return FormView{}, ErrUnknownField
	}

	return FormView{
		Entity:    p.spec.Meta.Singular,
		Mode:      pf.Mode(),
		ID:        sel.ID,
		Draft:     pf.Draft(),
		Errors:    pf.Errors(),
		Dependent: dependent,
	}, err
}
