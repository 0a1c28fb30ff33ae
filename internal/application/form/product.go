package form

import (
	"context"
	"net/url"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/erp/console/internal/domain/catalog"
	"github.com/erp/console/internal/infrastructure/apiclient"
)

// UnitCatalog serves the dependent unit option lists of the product form
type UnitCatalog interface {
	PackingUnits(ctx context.Context, quantityUnitID string) ([]catalog.PackingUnit, error)
	Pouches(ctx context.Context, packingUnitID string) ([]catalog.Pouch, error)
}

// RemoteUnits reads unit options from the API
type RemoteUnits struct {
	client *apiclient.Client
}

// NewRemoteUnits creates a UnitCatalog backed by the API
func NewRemoteUnits(c *apiclient.Client) *RemoteUnits {
	return &RemoteUnits{client: c}
}

// PackingUnits implements UnitCatalog
func (u *RemoteUnits) PackingUnits(ctx context.Context, quantityUnitID string) ([]catalog.PackingUnit, error) {
	return apiclient.FetchOptions[catalog.PackingUnit](ctx, u.client, "/packing-units",
		url.Values{"quantityUnit": {quantityUnitID}})
}

// Pouches implements UnitCatalog
func (u *RemoteUnits) Pouches(ctx context.Context, packingUnitID string) ([]catalog.Pouch, error) {
	return apiclient.FetchOptions[catalog.Pouch](ctx, u.client, "/pouches",
		url.Values{"packingUnit": {packingUnitID}})
}

// ProductConfig is the product form configuration
var ProductConfig = Config[catalog.Product, catalog.ProductInput]{
	Entity:    "Product",
	ListPath:  "/products",
	Seed:      func(p catalog.Product) catalog.ProductInput { return p.ProductInput },
	FileField: "image",
}

// ProductForm adds the product form's dependent fields to Form: the
// packing-unit options follow the quantity unit and the pouch options
// follow the packing unit. Changing a controlling field clears every
// selection below it and refetches the next option list.
type ProductForm struct {
	*Form[catalog.Product, catalog.ProductInput]
	units UnitCatalog

	optMu        sync.Mutex
	packingUnits []catalog.PackingUnit
	pouches      []catalog.Pouch
}

// NewProductForm wraps f
func NewProductForm(f *Form[catalog.Product, catalog.ProductInput], units UnitCatalog) *ProductForm {
	return &ProductForm{Form: f, units: units}
}

// PackingUnitOptions returns the packing units offered for the current
// quantity unit
func (p *ProductForm) PackingUnitOptions() []catalog.PackingUnit {
	p.optMu.Lock()
	defer p.optMu.Unlock()
	return slices.Clone(p.packingUnits)
}

// PouchOptions returns the pouches offered for the current packing unit
func (p *ProductForm) PouchOptions() []catalog.Pouch {
	p.optMu.Lock()
	defer p.optMu.Unlock()
	return slices.Clone(p.pouches)
}

// SelectQuantityUnit sets the quantity unit. A different value clears the
// packing unit and pouch and refetches the packing-unit options.
func (p *ProductForm) SelectQuantityUnit(ctx context.Context, id string) error {
	changed := false
	p.Edit(func(d *catalog.ProductInput) {
		if d.QuantityUnit != id {
			changed = true
			d.QuantityUnit = id
			d.PackingUnit = ""
			d.Pouch = ""
		}
	})
	if !changed {
		return nil
	}
	p.optMu.Lock()
	p.packingUnits = nil
	p.pouches = nil
	p.optMu.Unlock()

	if id == "" {
		return nil
	}
	units, err := p.units.PackingUnits(ctx, id)
	if err != nil {
		p.logger.Warn("packing unit options failed", zap.String("quantity_unit", id), zap.Error(err))
		return err
	}
	// drop the answer when the selection moved on meanwhile
	if p.Draft().QuantityUnit != id {
		return nil
	}
	p.optMu.Lock()
	p.packingUnits = units
	p.optMu.Unlock()
	return nil
}

// SelectPackingUnit sets the packing unit. A different value clears the
// pouch and refetches the pouch options.
func (p *ProductForm) SelectPackingUnit(ctx context.Context, id string) error {
	changed := false
	p.Edit(func(d *catalog.ProductInput) {
		if d.PackingUnit != id {
			changed = true
			d.PackingUnit = id
			d.Pouch = ""
		}
	})
	if !changed {
		return nil
	}
	p.optMu.Lock()
	p.pouches = nil
	p.optMu.Unlock()

	if id == "" {
		return nil
	}
	pouches, err := p.units.Pouches(ctx, id)
	if err != nil {
		p.logger.Warn("pouch options failed", zap.String("packing_unit", id), zap.Error(err))
		return err
	}
	if p.Draft().PackingUnit != id {
		return nil
	}
	p.optMu.Lock()
	p.pouches = pouches
	p.optMu.Unlock()
	return nil
}

// SelectPouch sets the pouch
func (p *ProductForm) SelectPouch(id string) {
	p.Edit(func(d *catalog.ProductInput) { d.Pouch = id })
}

// SelectSupplier sets the supplier
func (p *ProductForm) SelectSupplier(id string) {
	p.Edit(func(d *catalog.ProductInput) { d.SupplierID = id })
	p.syncPurchasingErrors()
}

// SelectWarehouse sets the warehouse
func (p *ProductForm) SelectWarehouse(id string) {
	p.Edit(func(d *catalog.ProductInput) { d.WarehouseID = id })
	p.syncPurchasingErrors()
}

// syncPurchasingErrors drops purchasing-field errors once the supplier and
// warehouse combination no longer requires them. Values are kept.
func (p *ProductForm) syncPurchasingErrors() {
	if !p.Draft().PurchasingRequired() {
		p.ClearErrors(catalog.PurchasingFields...)
	}
}
