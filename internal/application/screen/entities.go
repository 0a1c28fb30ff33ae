package screen

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/console/internal/application/form"
	"github.com/erp/console/internal/domain/catalog"
	"github.com/erp/console/internal/domain/finance"
	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/domain/partner"
	"github.com/erp/console/internal/domain/trade"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/infrastructure/printing"
)

// Option is a slim option-list entry (supplier, shop, warehouse, ...)
type Option struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	AccountName string `json:"accountName,omitempty"`
	Code        string `json:"code,omitempty"`
}

var (
	managers = []identity.Role{identity.RoleAdmin, identity.RoleManager}
	admins   = []identity.Role{identity.RoleAdmin}
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Build registers every entity screen against the API client in deps
func Build(deps Deps) *Registry {
	c := deps.Client
	r := NewRegistry()

	optionLists := map[string]form.OptionLoader{
		"categories":    form.Fetch[catalog.Category](c, "/categories"),
		"currencies":    form.Fetch[catalog.Currency](c, "/currencies"),
		"quantityUnits": form.Fetch[catalog.QuantityUnit](c, "/quantity-units"),
		"suppliers":     form.Fetch[Option](c, "/suppliers"),
		"warehouses":    form.Fetch[Option](c, "/warehouses"),
		"shops":         form.Fetch[Option](c, "/shops"),
		"customers":     form.Fetch[Option](c, "/customers"),
		"products":      form.Fetch[Option](c, "/products"),
		"transporters":  form.Fetch[Option](c, "/transporters"),
		"bankAccounts":  form.Fetch[Option](c, "/bank-accounts"),
	}
	pick := func(names ...string) map[string]form.OptionLoader {
		out := make(map[string]form.OptionLoader, len(names))
		for _, n := range names {
			out[n] = optionLists[n]
		}
		return out
	}

	products := NewEntity(Spec[catalog.Product, catalog.ProductInput]{
		Meta: Meta{Name: "products", Title: "Products", Singular: "Product", APIPath: "/products"},
		IDOf: func(p catalog.Product) string { return p.ID },
		Columns: []Column[catalog.Product]{
			{"Code", func(p catalog.Product) string { return p.Code }},
			{"Name", func(p catalog.Product) string { return p.Name }},
			{"Category", func(p catalog.Product) string { return orDash(p.CategoryName) }},
			{"Unit", func(p catalog.Product) string { return p.QuantityUnit }},
			{"Status", func(p catalog.Product) string { return string(p.Status) }},
		},
		Search: []func(catalog.Product) string{
			func(p catalog.Product) string { return p.Name },
			func(p catalog.Product) string { return p.Code },
			func(p catalog.Product) string { return p.CategoryName },
		},
		Form:    form.ProductConfig,
		Options: pick("categories", "currencies", "quantityUnits", "suppliers", "warehouses"),
	}, apiclient.NewResource[catalog.Product](c, "/products"), deps)
	r.Register(NewProductScreen(products, form.NewRemoteUnits(c)))

	r.Register(NewEntity(Spec[partner.Supplier, partner.SupplierInput]{
		Meta: Meta{Name: "suppliers", Title: "Suppliers", Singular: "Supplier", APIPath: "/suppliers", Roles: managers},
		IDOf: func(s partner.Supplier) string { return s.ID },
		Columns: []Column[partner.Supplier]{
			{"Name", func(s partner.Supplier) string { return s.Name }},
			{"Contact", func(s partner.Supplier) string { return orDash(s.ContactPerson) }},
			{"Phone", func(s partner.Supplier) string { return s.Phone }},
			{"Email", func(s partner.Supplier) string { return orDash(s.Email) }},
		},
		Search: []func(partner.Supplier) string{
			func(s partner.Supplier) string { return s.Name },
			func(s partner.Supplier) string { return s.Phone },
			func(s partner.Supplier) string { return s.Email },
		},
		Form: form.Config[partner.Supplier, partner.SupplierInput]{
			Seed: func(s partner.Supplier) partner.SupplierInput { return s.SupplierInput },
		},
	}, apiclient.NewResource[partner.Supplier](c, "/suppliers"), deps))

	r.Register(NewEntity(Spec[partner.Customer, partner.CustomerInput]{
		Meta: Meta{Name: "customers", Title: "Customers", Singular: "Customer", APIPath: "/customers"},
		IDOf: func(cu partner.Customer) string { return cu.ID },
		Columns: []Column[partner.Customer]{
			{"Name", func(cu partner.Customer) string { return cu.Name }},
			{"Phone", func(cu partner.Customer) string { return cu.Phone }},
			{"Email", func(cu partner.Customer) string { return orDash(cu.Email) }},
			{"Balance", func(cu partner.Customer) string { return money(cu.Balance) }},
		},
		Search: []func(partner.Customer) string{
			func(cu partner.Customer) string { return cu.Name },
			func(cu partner.Customer) string { return cu.Phone },
		},
		Form: form.Config[partner.Customer, partner.CustomerInput]{
			Seed: func(cu partner.Customer) partner.CustomerInput { return cu.CustomerInput },
		},
		Options: pick("shops"),
	}, apiclient.NewResource[partner.Customer](c, "/customers"), deps))

	r.Register(NewEntity(Spec[partner.Warehouse, partner.WarehouseInput]{
		Meta: Meta{Name: "warehouses", Title: "Warehouses", Singular: "Warehouse", APIPath: "/warehouses", Roles: managers},
		IDOf: func(w partner.Warehouse) string { return w.ID },
		Columns: []Column[partner.Warehouse]{
			{"Name", func(w partner.Warehouse) string { return w.Name }},
			{"Location", func(w partner.Warehouse) string { return w.Location }},
			{"Manager", func(w partner.Warehouse) string { return orDash(w.Manager) }},
		},
		Form: form.Config[partner.Warehouse, partner.WarehouseInput]{
			Seed: func(w partner.Warehouse) partner.WarehouseInput { return w.WarehouseInput },
		},
	}, apiclient.NewResource[partner.Warehouse](c, "/warehouses"), deps))

	r.Register(NewEntity(Spec[partner.Shop, partner.ShopInput]{
		Meta: Meta{Name: "shops", Title: "Shops", Singular: "Shop", APIPath: "/shops", Roles: managers},
		IDOf: func(s partner.Shop) string { return s.ID },
		Columns: []Column[partner.Shop]{
			{"Name", func(s partner.Shop) string { return s.Name }},
			{"Location", func(s partner.Shop) string { return s.Location }},
			{"Phone", func(s partner.Shop) string { return orDash(s.Phone) }},
		},
		Search: []func(partner.Shop) string{
			func(s partner.Shop) string { return s.Name },
			func(s partner.Shop) string { return s.Location },
		},
		Form: form.Config[partner.Shop, partner.ShopInput]{
			Seed: func(s partner.Shop) partner.ShopInput { return s.ShopInput },
		},
		Options: pick("warehouses"),
	}, apiclient.NewResource[partner.Shop](c, "/shops"), deps))

	r.Register(NewEntity(Spec[partner.Transporter, partner.TransporterInput]{
		Meta: Meta{Name: "transporters", Title: "Transporters", Singular: "Transporter", APIPath: "/transporters", Roles: managers},
		IDOf: func(t partner.Transporter) string { return t.ID },
		Columns: []Column[partner.Transporter]{
			{"Name", func(t partner.Transporter) string { return t.Name }},
			{"Phone", func(t partner.Transporter) string { return t.Phone }},
			{"Vehicle", func(t partner.Transporter) string { return orDash(t.VehicleNumber) }},
		},
		Search: []func(partner.Transporter) string{
			func(t partner.Transporter) string { return t.Name },
			func(t partner.Transporter) string { return t.VehicleNumber },
		},
		Form: form.Config[partner.Transporter, partner.TransporterInput]{
			Seed: func(t partner.Transporter) partner.TransporterInput { return t.TransporterInput },
		},
	}, apiclient.NewResource[partner.Transporter](c, "/transporters"), deps))

	r.Register(NewEntity(Spec[partner.BankAccount, partner.BankAccountInput]{
		Meta: Meta{Name: "bank-accounts", Title: "Bank Accounts", Singular: "Bank Account", APIPath: "/bank-accounts", Roles: admins},
		IDOf: func(a partner.BankAccount) string { return a.ID },
		Columns: []Column[partner.BankAccount]{
			{"Account", func(a partner.BankAccount) string { return a.AccountName }},
			{"Number", func(a partner.BankAccount) string { return a.AccountNumber }},
			{"Bank", func(a partner.BankAccount) string { return a.BankName }},
			{"Type", func(a partner.BankAccount) string { return string(a.AccountType) }},
			{"Balance", func(a partner.BankAccount) string { return money(a.Balance) }},
		},
		Search: []func(partner.BankAccount) string{
			func(a partner.BankAccount) string { return a.AccountName },
			func(a partner.BankAccount) string { return a.AccountNumber },
			func(a partner.BankAccount) string { return a.BankName },
		},
		Form: form.Config[partner.BankAccount, partner.BankAccountInput]{
			Seed: func(a partner.BankAccount) partner.BankAccountInput { return a.BankAccountInput },
		},
	}, apiclient.NewResource[partner.BankAccount](c, "/bank-accounts"), deps))

	r.Register(NewEntity(Spec[trade.Purchase, trade.PurchaseInput]{
		Meta: Meta{Name: "purchases", Title: "Purchases", Singular: "Purchase", APIPath: "/purchases",
			Roles: managers, Print: printing.KindReceipt},
		IDOf: func(p trade.Purchase) string { return p.ID },
		Columns: []Column[trade.Purchase]{
			{"Invoice", func(p trade.Purchase) string { return orDash(p.InvoiceNumber) }},
			{"Date", func(p trade.Purchase) string { return date(p.PurchaseDate.Time) }},
			{"Supplier", func(p trade.Purchase) string { return p.SupplierName }},
			{"Warehouse", func(p trade.Purchase) string { return p.WarehouseName }},
			{"Total", func(p trade.Purchase) string { return p.Currency + " " + money(p.TotalAmount) }},
			{"Status", func(p trade.Purchase) string { return string(p.Status) }},
		},
		Search: []func(trade.Purchase) string{
			func(p trade.Purchase) string { return p.InvoiceNumber },
			func(p trade.Purchase) string { return p.SupplierName },
		},
		Form: form.Config[trade.Purchase, trade.PurchaseInput]{
			Seed: func(p trade.Purchase) trade.PurchaseInput { return p.PurchaseInput },
		},
		Options: pick("suppliers", "warehouses", "products", "currencies"),
	}, apiclient.NewResource[trade.Purchase](c, "/purchases"), deps))

	r.Register(NewEntity(Spec[trade.Sale, trade.SaleInput]{
		Meta: Meta{Name: "sales", Title: "Sales", Singular: "Sale", APIPath: "/sales", Print: printing.KindInvoice},
		IDOf: func(s trade.Sale) string { return s.ID },
		Columns: []Column[trade.Sale]{
			{"Invoice", func(s trade.Sale) string { return orDash(s.InvoiceNumber) }},
			{"Date", func(s trade.Sale) string { return date(s.SaleDate.Time) }},
			{"Customer", func(s trade.Sale) string { return orDash(s.CustomerName) }},
			{"Shop", func(s trade.Sale) string { return s.ShopName }},
			{"Total", func(s trade.Sale) string { return money(s.TotalAmount) }},
			{"Due", func(s trade.Sale) string { return money(s.Due()) }},
			{"Payment", func(s trade.Sale) string { return string(s.PaymentStatus) }},
		},
		Search: []func(trade.Sale) string{
			func(s trade.Sale) string { return s.InvoiceNumber },
			func(s trade.Sale) string { return s.CustomerName },
			func(s trade.Sale) string { return s.ShopName },
		},
		Form: form.Config[trade.Sale, trade.SaleInput]{
			Seed: func(s trade.Sale) trade.SaleInput { return s.SaleInput },
		},
		Options: pick("shops", "customers", "products", "bankAccounts"),
	}, apiclient.NewResource[trade.Sale](c, "/sales"), deps))

	r.Register(NewEntity(Spec[trade.Shipment, trade.ShipmentInput]{
		Meta: Meta{Name: "shipments", Title: "Shipments", Singular: "Shipment", APIPath: "/shipments",
			Roles: managers, Print: printing.KindJourney},
		IDOf: func(s trade.Shipment) string { return s.ID },
		Columns: []Column[trade.Shipment]{
			{"Tracking", func(s trade.Shipment) string { return orDash(s.TrackingNumber) }},
			{"Date", func(s trade.Shipment) string { return date(s.ShipDate.Time) }},
			{"Transporter", func(s trade.Shipment) string { return s.TransporterName }},
			{"Status", func(s trade.Shipment) string { return string(s.Status) }},
		},
		Search: []func(trade.Shipment) string{
			func(s trade.Shipment) string { return s.TrackingNumber },
			func(s trade.Shipment) string { return s.TransporterName },
		},
		Form: form.Config[trade.Shipment, trade.ShipmentInput]{
			Seed: func(s trade.Shipment) trade.ShipmentInput { return s.ShipmentInput },
		},
		Options: pick("transporters", "warehouses", "shops", "products"),
	}, apiclient.NewResource[trade.Shipment](c, "/shipments"), deps))

	r.Register(NewEntity(Spec[trade.DamageRecord, trade.DamageInput]{
		Meta: Meta{Name: "damages", Title: "Damage Records", Singular: "Damage Record", APIPath: "/damages", Roles: managers},
		IDOf: func(d trade.DamageRecord) string { return d.ID },
		Columns: []Column[trade.DamageRecord]{
			{"Date", func(d trade.DamageRecord) string { return date(d.Date.Time) }},
			{"Product", func(d trade.DamageRecord) string { return d.ProductName }},
			{"Warehouse", func(d trade.DamageRecord) string { return d.WarehouseName }},
			{"Quantity", func(d trade.DamageRecord) string { return d.Quantity.String() }},
			{"Reason", func(d trade.DamageRecord) string { return d.Reason }},
		},
		Search: []func(trade.DamageRecord) string{
			func(d trade.DamageRecord) string { return d.ProductName },
			func(d trade.DamageRecord) string { return d.Reason },
		},
		Form: form.Config[trade.DamageRecord, trade.DamageInput]{
			Seed: func(d trade.DamageRecord) trade.DamageInput { return d.DamageInput },
		},
		Options: pick("products", "warehouses"),
	}, apiclient.NewResource[trade.DamageRecord](c, "/damages"), deps))

	for _, kind := range finance.AllExpenseKinds {
		r.Register(expenseScreen(kind, deps, pick("bankAccounts", "shops")))
	}
	return r
}

// ExpenseScreenName is the route name of an expense kind's screen
func ExpenseScreenName(kind finance.ExpenseKind) string {
	return string(kind) + "-expenses"
}

func expenseScreen(kind finance.ExpenseKind, deps Deps, options map[string]form.OptionLoader) *EntityScreen[finance.ExpenseRecord, finance.ExpenseInput] {
	title := kind.DisplayName()
	return NewEntity(Spec[finance.ExpenseRecord, finance.ExpenseInput]{
		Meta: Meta{
			Name:     ExpenseScreenName(kind),
			Title:    title,
			Singular: kind.SingularName(),
			APIPath:  "/expenses/" + string(kind),
			Roles:    managers,
		},
		IDOf: func(e finance.ExpenseRecord) string { return e.ID },
		Columns: []Column[finance.ExpenseRecord]{
			{"Date", func(e finance.ExpenseRecord) string { return date(e.Date.Time) }},
			{"Title", func(e finance.ExpenseRecord) string { return e.Title }},
			{"Amount", func(e finance.ExpenseRecord) string { return money(e.Amount) }},
		},
		Search: []func(finance.ExpenseRecord) string{
			func(e finance.ExpenseRecord) string { return e.Title },
			func(e finance.ExpenseRecord) string { return e.Description },
		},
		Form: form.Config[finance.ExpenseRecord, finance.ExpenseInput]{
			Seed: func(e finance.ExpenseRecord) finance.ExpenseInput { return e.ExpenseInput },
		},
		Options: options,
	}, apiclient.NewResource[finance.ExpenseRecord](deps.Client, "/expenses/"+string(kind)), deps)
}
