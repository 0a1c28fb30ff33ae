package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

// Company is printed in every document header
type Company struct {
	Name    string
	Address string
}

// Document is the data every template receives
type Document struct {
	Kind        Kind
	Title       string
	Company     Company
	Record      any
	AutoPrint   bool
	GeneratedAt time.Time
}

// TemplateEngine renders the embedded document templates
type TemplateEngine struct {
	company   Company
	templates map[Kind]*template.Template
	now       func() time.Time
}

var titles = map[Kind]string{
	KindInvoice: "Invoice",
	KindReceipt: "Purchase Receipt",
	KindJourney: "Shipment Journey",
}

// NewTemplateEngine parses every embedded template once
func NewTemplateEngine(company Company) (*TemplateEngine, error) {
	e := &TemplateEngine{
		company:   company,
		templates: make(map[Kind]*template.Template),
		now:       time.Now,
	}

	for kind := range titles {
		tmpl, err := template.New("layout.html").
			Funcs(funcMap()).
			ParseFS(templateFS, "templates/layout.html", "templates/"+string(kind)+".html")
		if err != nil {
			return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse "+string(kind)+" template", err)
		}
		e.templates[kind] = tmpl
	}
	return e, nil
}

// Render produces the HTML document for record. autoPrint embeds a script
// that opens the browser's print dialog once the page has loaded.
func (e *TemplateEngine) Render(kind Kind, record any, autoPrint bool) (string, error) {
	tmpl, ok := e.templates[kind]
	if !ok {
		return "", NewRenderError(ErrCodeUnknownTemplate, "no template for "+string(kind), nil)
	}

	doc := Document{
		Kind:        kind,
		Title:       titles[kind],
		Company:     e.company,
		Record:      record,
		AutoPrint:   autoPrint,
		GeneratedAt: e.now(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatMoney":  formatMoney,
		"formatNumber": formatNumber,
		"formatDate":   formatDate,
		"statusText":   statusText,
		"upper":        strings.ToUpper,
		"mul":          func(a, b decimal.Decimal) decimal.Decimal { return a.Mul(b) },
		"sub":          func(a, b decimal.Decimal) decimal.Decimal { return a.Sub(b) },
		"deref": func(d *decimal.Decimal) decimal.Decimal {
			if d == nil {
				return decimal.Zero
			}
			return *d
		},
		"inc": func(i int) int { return i + 1 },
	}
}

var printer = message.NewPrinter(language.English)

// formatNumber formats with thousand separators and two decimals.
// Example: 1234.5 -> "1,234.50"
func formatNumber(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	parts := strings.SplitN(d.StringFixed(2), ".", 2)
	whole, frac := parts[0], parts[1]

	var out strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return sign + out.String() + "." + frac
}

// formatMoney prefixes the amount with the currency symbol when the code is
// a known ISO 4217 currency, otherwise with the code itself.
// Example: (1234.5, "USD") -> "$ 1,234.50"
func formatMoney(d decimal.Decimal, code string) string {
	amount := formatNumber(d)
	code = strings.TrimSpace(code)
	if code == "" {
		return amount
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return strings.ToUpper(code) + " " + amount
	}
	return printer.Sprint(currency.Symbol(unit)) + " " + amount
}

// formatDate takes a time.Time or a shared.Date
func formatDate(t interface {
	IsZero() bool
	Format(layout string) string
}) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// statusText turns enum values into labels: "in_transit" -> "In Transit"
func statusText(v any) string {
	return cases.Title(language.English).String(strings.ReplaceAll(fmt.Sprint(v), "_", " "))
}
