package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"autofill-service/internal/autofill/model"
)

var ErrNilDocument = errors.New("autofill: nil document")

// Filler runs one batch: match, format, write and notify, field by field.
type Filler struct {
	matcher *Matcher
	logger  zerolog.Logger
}

func NewFiller(matcher *Matcher, logger zerolog.Logger) *Filler {
	return &Filler{
		matcher: matcher,
		logger:  logger.With().Str("component", "filler").Logger(),
	}
}

func (f *Filler) Matcher() *Matcher { return f.matcher }

// FillForm processes fields in order. Each field lands in exactly one of
// Successful or Failed; a failing field never stops the batch. The only
// batch-level error is a nil document.
func (f *Filler) FillForm(ctx context.Context, doc Document, fields model.Fields) (*model.FillOutcome, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	out := model.NewFillOutcome()
	for _, fv := range fields {
		filled, err := f.fillField(ctx, doc, fv)
		switch {
		case err != nil:
			out.Fail(fv.Name, err.Error())
			f.logger.Error().Err(err).Str("field", fv.Name).Msg("error filling field")
		case !filled:
			out.Fail(fv.Name, model.ReasonNoMatch)
		default:
			out.Succeed(fv.Name)
		}
	}
	return out, nil
}

// fillField reports false when no control matched. Panics from the document
// are turned into errors so they stay inside this field.
func (f *Filler) fillField(ctx context.Context, doc Document, fv model.FieldValue) (filled bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			filled, err = false, fmt.Errorf("%v", rec)
		}
	}()

	controls, err := doc.Controls(ctx)
	if err != nil {
		return false, fmt.Errorf("enumerate controls: %w", err)
	}

	match, ok := f.matcher.FindMatch(fv.Name, controls)
	if !ok {
		return false, nil
	}

	formatted := FormatValue(fv.Name, fv.Raw)
	if formatted.Fallback {
		f.logger.Debug().Str("field", fv.Name).Msg("value kept unformatted")
	}

	if err := f.apply(ctx, doc, match.Control, formatted.Value); err != nil {
		return false, err
	}
	if err := notify(ctx, doc, match.Control); err != nil {
		return false, err
	}

	f.logger.Info().
		Str("field", fv.Name).
		Str("match", string(match.Type)).
		Float64("score", match.Score).
		Str("value", formatted.Value.String()).
		Msg("filled field")
	return true, nil
}

// apply writes v into c with the strategy of c.Kind.
func (f *Filler) apply(ctx context.Context, doc Document, c model.Control, v model.FormattedValue) error {
	switch c.Kind {
	case model.KindRadio:
		return f.applyRadio(ctx, doc, c, v.String())
	case model.KindCheckbox:
		return doc.SetChecked(ctx, c, v.Truthy())
	case model.KindSelect:
		return applySelect(ctx, doc, c, v.String())
	case model.KindFile:
		f.logger.Warn().Str("name", c.View.Name).Msg("file inputs cannot be automatically filled")
		return nil
	case model.KindContentEditable:
		return doc.SetText(ctx, c, v.String())
	default:
		return doc.SetValue(ctx, c, v.String())
	}
}

// applyRadio checks the first member of c's group whose value matches.
// No match leaves the group untouched.
func (f *Filler) applyRadio(ctx context.Context, doc Document, c model.Control, v string) error {
	group := []model.Control{c}
	if c.Group != "" {
		members, err := doc.RadioGroup(ctx, c.Group)
		if err != nil {
			return fmt.Errorf("radio group %q: %w", c.Group, err)
		}
		group = members
	}
	want := fold(v)
	for _, r := range group {
		if fold(r.Value) == want {
			return doc.SetChecked(ctx, r, true)
		}
	}
	f.logger.Debug().Str("group", c.Group).Str("value", v).Msg("no radio with matching value")
	return nil
}

// applySelect picks the first option whose value or text matches; no match
// leaves the selection unchanged.
func applySelect(ctx context.Context, doc Document, c model.Control, v string) error {
	want := fold(v)
	for _, o := range c.Options {
		if fold(o.Value) == want || fold(o.Text) == want {
			return doc.SelectOption(ctx, c, o.Value)
		}
	}
	return nil
}

// notify fires change then input, whatever the write did.
func notify(ctx context.Context, doc Document, c model.Control) error {
	for _, ev := range []string{EventChange, EventInput} {
		if err := doc.Dispatch(ctx, c, ev); err != nil {
			return fmt.Errorf("dispatch %s: %w", ev, err)
		}
	}
	return nil
}
