package services

import "github.com/viktorvidual/invoices/validation"

// ResultKind tags the outcome of a mutation.
type ResultKind int

const (
	// ResultSuccess: side effects applied, nothing else to do.
	ResultSuccess ResultKind = iota
	// ResultFailure: nothing was invalidated or navigated; Message is set.
	ResultFailure
	// ResultRedirect: side effects applied, the caller must transfer to Target.
	ResultRedirect
)

// Result is what a mutation hands back to the HTTP boundary.
// FieldErrors is only set for validation failures.
type Result struct {
	Kind        ResultKind            `json:"-"`
	Message     string                `json:"message,omitempty"`
	FieldErrors validation.Violations `json:"errors,omitempty"`
	Target      string                `json:"-"`
}

func Success() Result { return Result{Kind: ResultSuccess} }

func Failure(message string, fieldErrors validation.Violations) Result {
	return Result{Kind: ResultFailure, Message: message, FieldErrors: fieldErrors}
}

func Redirect(target string) Result { return Result{Kind: ResultRedirect, Target: target} }

func (r Result) Failed() bool { return r.Kind == ResultFailure }

// HasFieldErrors distinguishes bad input from a backend failure.
func (r Result) HasFieldErrors() bool { return r.Failed() && !r.FieldErrors.Empty() }
