package handler

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofill-service/internal/autofill/model"
	"autofill-service/internal/autofill/service"
	"autofill-service/internal/htmldoc"
	"autofill-service/internal/mapping"
	"autofill-service/internal/sse"
)

func TestEvents_Scanned(t *testing.T) {
	doc, err := htmldoc.ParseString(signupForm)
	require.NoError(t, err)

	ctrl := service.New(mapping.Default(), service.DefaultThreshold, zerolog.Nop())
	ev := NewEvents(ctrl, func(context.Context) (service.Document, error) { return doc, nil }, zerolog.Nop())

	res := ev.Scanned(context.Background(), sse.Event{
		Name: EventScannedData,
		Data: `{"email":"ada@example.com","firstName":"Ada"}`,
	})
	require.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, []string{"email", "firstName"}, res.Results.Successful)

	out, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, out, `value="ada@example.com"`)
	assert.Len(t, doc.Events(), 4)
}

func TestEvents_ScannedFailures(t *testing.T) {
	ctrl := service.New(mapping.Default(), service.DefaultThreshold, zerolog.Nop())

	t.Run("malformed data", func(t *testing.T) {
		called := false
		ev := NewEvents(ctrl, func(context.Context) (service.Document, error) {
			called = true
			return nil, nil
		}, zerolog.Nop())

		res := ev.Scanned(context.Background(), sse.Event{Name: EventScannedData, Data: `{"email":`})
		assert.Equal(t, model.StatusError, res.Status)
		assert.False(t, called)
	})

	t.Run("no page", func(t *testing.T) {
		ev := NewEvents(ctrl, func(context.Context) (service.Document, error) {
			return nil, errors.New("browser: no open page")
		}, zerolog.Nop())

		res := ev.Scanned(context.Background(), sse.Event{Name: EventScannedData, Data: `{"email":"a"}`})
		assert.Equal(t, model.StatusError, res.Status)
		assert.Equal(t, "browser: no open page", res.Error)
	})

	t.Run("nil document", func(t *testing.T) {
		ev := NewEvents(ctrl, func(context.Context) (service.Document, error) { return nil, nil }, zerolog.Nop())

		res := ev.Scanned(context.Background(), sse.Event{Name: EventScannedData, Data: `{"email":"a"}`})
		assert.Equal(t, model.StatusError, res.Status)
		assert.Equal(t, service.ErrNilDocument.Error(), res.Error)
	})
}

func TestEvents_MessageAndError(t *testing.T) {
	var buf bytes.Buffer
	ev := NewEvents(nil, nil, zerolog.New(&buf))

	ev.Message(context.Background(), sse.Event{Name: EventMessage, Data: `{"hello":"world"}`})
	assert.Contains(t, buf.String(), "message received")

	buf.Reset()
	ev.Message(context.Background(), sse.Event{Name: EventMessage, Data: `not json`})
	assert.Contains(t, buf.String(), "error parsing message")

	buf.Reset()
	ev.Error(context.Background(), sse.Event{Name: EventErrorData, Data: "scanner offline"})
	assert.Contains(t, buf.String(), "scanner offline")
}
