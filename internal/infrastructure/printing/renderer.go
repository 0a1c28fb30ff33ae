package printing

import (
	"context"
	"time"
)

// Kind is a printable document layout
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindReceipt Kind = "receipt"
	KindJourney Kind = "journey"
)

// Paper describes page dimensions in millimeters
type Paper struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
	// Continuous paper (thermal rolls) is printed as one tall page
	Continuous bool
}

var (
	PaperA4      = Paper{WidthMM: 210, HeightMM: 297, MarginMM: 10}
	PaperReceipt = Paper{WidthMM: 80, HeightMM: 297, MarginMM: 3, Continuous: true}
)

// Paper returns the default paper for the layout
func (k Kind) Paper() Paper {
	if k == KindReceipt {
		return PaperReceipt
	}
	return PaperA4
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML    string
	Title   string
	Paper   Paper
	Timeout time.Duration
}

// PDFRenderer renders HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) ([]byte, error)
	Close() error
}

// RenderError represents an error during rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout   = "RENDER_TIMEOUT"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeInvalidHTML     = "INVALID_HTML"
	ErrCodeUnknownTemplate = "UNKNOWN_TEMPLATE"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
