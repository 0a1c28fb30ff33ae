// Package printing renders the console's printable documents: sale
// invoices, purchase receipts and shipment journeys. Documents are HTML
// built from embedded html/template files; when PDF output is enabled the
// HTML is printed to PDF through headless Chrome.
//
// Example usage:
//
//	engine, err := NewTemplateEngine(Company{Name: "Corner Shop"})
//	if err != nil {
//	    return err
//	}
//	html, err := engine.Render(KindInvoice, sale, false)
//	if err != nil {
//	    return err
//	}
//	pdf, err := renderer.Render(ctx, &RenderRequest{HTML: html, Paper: KindInvoice.Paper()})
package printing
