package handler

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"autofill-service/internal/autofill/model"
	"autofill-service/internal/autofill/service"
	"autofill-service/internal/htmldoc"
	"autofill-service/internal/middleware"
)

type fillRequest struct {
	HTML string       `json:"html"`
	Data model.Fields `json:"data"`
}

type fillResponse struct {
	model.Response
	HTML   string          `json:"html,omitempty"`
	Events []htmldoc.Event `json:"events,omitempty"`
}

type matchRequest struct {
	HTML  string `json:"html"`
	Field string `json:"field"`
}

type matchView struct {
	Control string            `json:"control"`
	Kind    string            `json:"kind"`
	Type    model.MatchType   `json:"type"`
	Score   float64           `json:"score,omitempty"`
	View    model.ControlView `json:"view"`
}

type matchResponse struct {
	Field string     `json:"field"`
	Match *matchView `json:"match"`
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Fill parses the posted HTML, fills it with data and returns the updated
// markup with the batch outcome.
func Fill(ctrl *service.Controller, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With().Str("rid", middleware.GetRequestID(r)).Logger()

		var req fillRequest
		if !decode(w, r, &req) {
			return
		}
		doc, err := htmldoc.ParseString(req.HTML)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res := fillResponse{Response: ctrl.Handle(r.Context(), doc, req.Data)}
		if res.Status == model.StatusSuccess {
			if res.HTML, err = doc.HTML(); err != nil {
				log.Error().Err(err).Msg("render html")
				writeError(w, http.StatusInternalServerError, "render html: "+err.Error())
				return
			}
			res.Events = doc.Events()
		}
		if res.Results != nil {
			log.Info().
				Int("fields", len(req.Data)).
				Int("successful", len(res.Results.Successful)).
				Int("failed", len(res.Results.Failed)).
				Str("charset", doc.Charset()).
				Msg("fill done")
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Match reports which control, if any, a field would be written to.
func Match(matcher *service.Matcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		if !decode(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Field) == "" {
			writeError(w, http.StatusBadRequest, "field is required")
			return
		}
		doc, err := htmldoc.ParseString(req.HTML)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		controls, err := doc.Controls(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := matchResponse{Field: req.Field}
		if m, ok := matcher.FindMatch(req.Field, controls); ok {
			resp.Match = &matchView{
				Control: htmldoc.Describe(m.Control),
				Kind:    m.Control.Kind.String(),
				Type:    m.Type,
				Score:   m.Score,
				View:    m.Control.View,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Mapping serves the loaded field -> labels table.
func Mapping(mapping model.FieldMapping) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, mapping.Table())
	}
}
