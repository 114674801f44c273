package handler

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"autofill-service/internal/autofill/model"
	"autofill-service/internal/autofill/service"
	"autofill-service/internal/sse"
)

// Verifier stream event names.
const (
	EventScannedData = "SCANNED_DATA"
	EventErrorData   = "ERROR_DATA"
	EventMessage     = "message"
)

// DocumentSource yields the page scanned data should be written to.
type DocumentSource func(ctx context.Context) (service.Document, error)

// Events turns verifier stream events into fills of the active page.
type Events struct {
	ctrl   *service.Controller
	source DocumentSource
	logger zerolog.Logger
}

func NewEvents(ctrl *service.Controller, source DocumentSource, logger zerolog.Logger) *Events {
	return &Events{ctrl: ctrl, source: source, logger: logger.With().Str("component", "events").Logger()}
}

func (e *Events) Register(c *sse.Client) {
	c.On(EventScannedData, func(ctx context.Context, ev sse.Event) { e.Scanned(ctx, ev) })
	c.On(EventErrorData, e.Error)
	c.On(EventMessage, e.Message)
}

// Scanned fills the active page with the decoded field values.
func (e *Events) Scanned(ctx context.Context, ev sse.Event) model.Response {
	log := e.logger.With().Str("event", ev.Name).Str("id", ev.ID).Logger()

	var fields model.Fields
	if err := json.Unmarshal([]byte(ev.Data), &fields); err != nil {
		log.Error().Err(err).Msg("error parsing scanned data")
		return model.Response{Status: model.StatusError, Error: err.Error()}
	}
	log.Info().Int("fields", len(fields)).Msg("received scanned data")

	doc, err := e.source(ctx)
	if err != nil {
		log.Error().Err(err).Msg("no page to fill")
		return model.Response{Status: model.StatusError, Error: err.Error()}
	}

	res := e.ctrl.Handle(ctx, doc, fields)
	if res.Status == model.StatusSuccess {
		log.Info().
			Int("successful", len(res.Results.Successful)).
			Int("failed", len(res.Results.Failed)).
			Msg("form filled")
	}
	return res
}

func (e *Events) Error(_ context.Context, ev sse.Event) {
	e.logger.Error().Str("id", ev.ID).Str("data", ev.Data).Msg("verifier reported an error")
}

// Message logs unnamed events; payloads are expected to be JSON.
func (e *Events) Message(_ context.Context, ev sse.Event) {
	var payload any
	if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
		e.logger.Warn().Err(err).Str("data", ev.Data).Msg("error parsing message")
		return
	}
	e.logger.Info().Interface("payload", payload).Msg("message received")
}
