// Package errors renders HTTP errors as RFC 7807 problem documents.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// AppError is an error that knows its HTTP status.
type AppError struct {
	Status int               `json:"status"`
	Title  string            `json:"title"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
	Err    error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail == "" {
		return e.Title
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

func (e *AppError) Unwrap() error { return e.Err }

// New builds an AppError.
func New(status int, title, detail string) *AppError {
	return &AppError{Status: status, Title: title, Detail: detail}
}

// Wrap builds an AppError around a cause. The cause is not rendered.
func Wrap(err error, status int, title, detail string) *AppError {
	return &AppError{Status: status, Title: title, Detail: detail, Err: err}
}

// WithFieldErrors attaches per-field messages.
func (e *AppError) WithFieldErrors(fields map[string]string) *AppError {
	e.Errors = fields
	return e
}

type problem struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	TraceID  string            `json:"trace_id,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// WriteError writes err as application/problem+json. Errors that are not
// an *AppError become a 500 without leaking their message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		appErr = New(http.StatusInternalServerError, "Internal Server Error", "")
	}
	p := problem{
		Type:   "about:blank",
		Title:  appErr.Title,
		Status: appErr.Status,
		Detail: appErr.Detail,
		Errors: appErr.Errors,
	}
	if r != nil {
		p.Instance = r.URL.Path
		if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
			p.TraceID = sc.TraceID().String()
		}
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(p)
}
