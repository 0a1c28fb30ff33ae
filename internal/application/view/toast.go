// Package view holds the notification and navigation values that screen
// workflows hand back to whichever surface presents them.
package view

// ToastKind is the severity of a toast
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
	ToastInfo    ToastKind = "info"
)

// Toast is a transient notification
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}

// Success builds a success toast
func Success(msg string) *Toast { return &Toast{Kind: ToastSuccess, Message: msg} }

// Error builds an error toast
func Error(msg string) *Toast { return &Toast{Kind: ToastError, Message: msg} }

// Warning builds a warning toast
func Warning(msg string) *Toast { return &Toast{Kind: ToastWarning, Message: msg} }

// Outcome is what a user action resolved to: an optional toast and an
// optional navigation target. Status is the HTTP status the API refused
// the action with, zero when there was no API answer.
type Outcome struct {
	OK       bool              `json:"ok"`
	Toast    *Toast            `json:"toast,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
	Status   int               `json:"-"`
}
