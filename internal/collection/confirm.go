package collection

import "context"

// Prompt is the text of a confirmation dialog.
type Prompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Confirmer asks the user to confirm a destructive action.  A false answer
// with a nil error means the user cancelled.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) { return f(ctx, p) }

// AlwaysConfirm accepts every prompt.  Callers that already collected an
// explicit confirmation, such as an HTTP request carrying confirm=true, use it.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, Prompt) (bool, error) { return true, nil })
