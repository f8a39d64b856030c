package pipeline

import (
	"context"

	"github.com/skyaboveme/yourgency/internal/models"
)

// Confirmer is the blocking yes/no gate Remove must pass before it mutates
// anything.
type Confirmer interface {
	Confirm(ctx context.Context, deal models.Deal) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, deal models.Deal) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, deal models.Deal) (bool, error) {
	return f(ctx, deal)
}

// AlwaysConfirm approves every removal. Use only where the user already
// confirmed out of band (e.g. a --yes flag).
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, models.Deal) (bool, error) {
	return true, nil
})
