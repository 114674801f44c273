package service

import (
	"context"

	"autofill-service/internal/autofill/model"
)

const (
	EventChange = "change"
	EventInput  = "input"
)

// Document is the live page the engine reads controls from and writes into.
// It is queried afresh on every call; implementations must not cache.
type Document interface {
	// Controls lists the interactive controls in document order.
	Controls(ctx context.Context) ([]model.Control, error)
	// RadioGroup lists the inputs named group, each with Value set.
	RadioGroup(ctx context.Context, group string) ([]model.Control, error)

	SetValue(ctx context.Context, c model.Control, value string) error
	SetChecked(ctx context.Context, c model.Control, checked bool) error
	SetText(ctx context.Context, c model.Control, text string) error
	// SelectOption selects the option of c whose value is value.
	SelectOption(ctx context.Context, c model.Control, value string) error

	// Dispatch fires a bubbling event named event on c.
	Dispatch(ctx context.Context, c model.Control, event string) error
}
