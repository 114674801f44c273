package service

import (
	"context"

	"github.com/rs/zerolog"

	"autofill-service/internal/autofill/model"
)

// Controller is the entry point for one fill request: it runs the batch and
// shapes the response.
type Controller struct {
	filler *Filler
	logger zerolog.Logger
}

func NewController(filler *Filler, logger zerolog.Logger) *Controller {
	return &Controller{filler: filler, logger: logger}
}

// New wires Matcher, Filler and Controller over one mapping.
func New(mapping model.FieldMapping, threshold float64, logger zerolog.Logger) *Controller {
	return NewController(NewFiller(NewMatcher(mapping, threshold, logger), logger), logger)
}

func (c *Controller) Filler() *Filler { return c.filler }

func (c *Controller) Handle(ctx context.Context, doc Document, fields model.Fields) model.Response {
	res, err := c.filler.FillForm(ctx, doc, fields)
	if err != nil {
		c.logger.Error().Err(err).Msg("form filling error")
		return model.Response{Status: model.StatusError, Error: err.Error()}
	}

	for _, f := range res.Successful {
		c.logger.Info().Str("field", f).Msg("successfully filled field")
	}
	for _, f := range res.Failed {
		c.logger.Warn().Str("field", f.Field).Str("reason", f.Reason).Msg("failed to fill field")
	}
	return model.Response{Status: model.StatusSuccess, Results: res}
}
