package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofill-service/internal/autofill/model"
)

func newTestFiller() *Filler {
	mapping := model.NewFieldMapping(map[string][]string{
		"firstName":   {"first_name", "given_name"},
		"lastName":    {"last_name", "surname"},
		"birthDate":   {"birth_date", "dob"},
		"sex":         {"sex", "gender"},
		"country":     {"country"},
		"isAgeOver18": {"over18", "age_over_18"},
		"photo":       {"photo"},
		"notes":       {"notes"},
	})
	return NewFiller(NewMatcher(mapping, DefaultThreshold, zerolog.Nop()), zerolog.Nop())
}

func fields(kv ...any) model.Fields {
	out := model.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, model.FieldValue{Name: kv[i].(string), Raw: kv[i+1]})
	}
	return out
}

func TestFillForm_ExactMatch(t *testing.T) {
	doc := &fakeDoc{controls: []model.Control{
		textControl("fn", model.ControlView{Name: "given_name"}),
	}}

	res, err := newTestFiller().FillForm(context.Background(), doc, fields("firstName", "Ada"))
	require.NoError(t, err)

	assert.Equal(t, []string{"firstName"}, res.Successful)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []op{{Kind: "value", Handle: "fn", Value: "Ada"}}, doc.writes)
	assert.Equal(t, []op{{Kind: EventChange, Handle: "fn"}, {Kind: EventInput, Handle: "fn"}}, doc.events)
}

func TestFillForm_FuzzyMatch(t *testing.T) {
	doc := &fakeDoc{controls: []model.Control{
		textControl("fn", model.ControlView{Name: "firstnme"}),
	}}

	res, err := newTestFiller().FillForm(context.Background(), doc, fields("firstName", "Ada"))
	require.NoError(t, err)

	assert.Equal(t, []string{"firstName"}, res.Successful)
	assert.Equal(t, []op{{Kind: "value", Handle: "fn", Value: "Ada"}}, doc.writes)
}

func TestFillForm_MalformedDateWrittenVerbatim(t *testing.T) {
	doc := &fakeDoc{controls: []model.Control{
		textControl("dob", model.ControlView{ID: "dob"}),
	}}

	res, err := newTestFiller().FillForm(context.Background(), doc, fields("birthDate", "not-a-date"))
	require.NoError(t, err)

	assert.Equal(t, []string{"birthDate"}, res.Successful)
	assert.Equal(t, "not-a-date", doc.writes[0].Value)
}

func TestFillForm_DateFormatted(t *testing.T) {
	doc := &fakeDoc{controls: []model.Control{
		textControl("dob", model.ControlView{Name: "birth_date"}),
	}}

	_, err := newTestFiller().FillForm(context.Background(), doc, fields("birthDate", "1985-10-26T09:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "1985-10-26", doc.writes[0].Value)
}

func TestFillForm_UnmappedFieldDoesNotStopBatch(t *testing.T) {
	doc := &fakeDoc{controls: []model.Control{
		textControl("fn", model.ControlView{Name: "first_name"}),
		textControl("ln", model.ControlView{Name: "surname"}),
	}}

	res, err := newTestFiller().FillForm(context.Background(), doc,
		fields("firstName", "Ada", "favouriteColour", "green", "lastName", "Lovelace"))
	require.NoError(t, err)

	assert.Equal(t, []string{"firstName", "lastName"}, res.Successful)
	assert.Equal(t, []model.FailedField{{Field: "favouriteColour", Reason: model.ReasonNoMatch}}, res.Failed)
}

func TestFillForm_NoControlsAtAll(t *testing.T) {
	doc := &fakeDoc{}

	res, err := newTestFiller().FillForm(context.Background(), doc, fields("unmapped", "x", "firstName", "Ada"))
	require.NoError(t, err)

	assert.Empty(t, res.Successful)
	assert.Equal(t, []model.FailedField{
		{Field: "unmapped", Reason: model.ReasonNoMatch},
		{Field: "firstName", Reason: model.ReasonNoMatch},
	}, res.Failed)
}

func TestFillForm_Radio(t *testing.T) {
	radio := func(h, v string) model.Control {
		return model.Control{Handle: h, Kind: model.KindRadio, Group: "gender", Value: v,
			View: model.ControlView{Name: "gender", ID: h}}
	}

	t.Run("checks matching member", func(t *testing.T) {
		doc := &fakeDoc{controls: []model.Control{radio("m", "M"), radio("f", "F")}}

		res, err := newTestFiller().FillForm(context.Background(), doc, fields("sex", "f"))
		require.NoError(t, err)
		assert.Equal(t, []string{"sex"}, res.Successful)
		assert.Equal(t, []op{{Kind: "checked", Handle: "f", Value: "true"}}, doc.writes)
		// notifications go to the matched control
		assert.Equal(t, "m", doc.events[0].Handle)
	})

	t.Run("no member matches", func(t *testing.T) {
		doc := &fakeDoc{controls: []model.Control{radio("m", "M"), radio("f", "F")}}

		res, err := newTestFiller().FillForm(context.Background(), doc, fields("sex", "X"))
		require.NoError(t, err)
		assert.Equal(t, []string{"sex"}, res.Successful)
		assert.Empty(t, doc.writes)
		assert.Len(t, doc.events, 2)
	})
}

func TestFillForm_Checkbox(t *testing.T) {
	box := model.Control{Handle: "cb", Kind: model.KindCheckbox, View: model.ControlView{Name: "over18"}}

	tests := []struct {
		raw  any
		want string
	}{
		{"true", "true"},
		{true, "true"},
		{"TRUE", "true"},
		{"false", "false"},
		{"1", "false"},
		{json.Number("1"), "false"},
	}
	for _, tt := range tests {
		doc := &fakeDoc{controls: []model.Control{box}}
		res, err := newTestFiller().FillForm(context.Background(), doc, fields("isAgeOver18", tt.raw))
		require.NoError(t, err)
		assert.Equal(t, []string{"isAgeOver18"}, res.Successful)
		assert.Equal(t, tt.want, doc.writes[0].Value, "%v", tt.raw)
	}
}

func TestFillForm_CheckboxTextValueIsTruthy(t *testing.T) {
	box := model.Control{Handle: "cb", Kind: model.KindCheckbox, View: model.ControlView{Name: "notes"}}
	doc := &fakeDoc{controls: []model.Control{box}}

	_, err := newTestFiller().FillForm(context.Background(), doc, fields("notes", "false"))
	require.NoError(t, err)
	assert.Equal(t, "true", doc.writes[0].Value)
}

func TestFillForm_Select(t *testing.T) {
	sel := model.Control{Handle: "sel", Kind: model.KindSelect, View: model.ControlView{Name: "country"},
		Options: []model.Option{
			{Value: "", Text: "Choose"},
			{Value: "DE", Text: "Germany"},
			{Value: "FR", Text: "France"},
		}}

	t.Run("by value", func(t *testing.T) {
		doc := &fakeDoc{controls: []model.Control{sel}}
		_, err := newTestFiller().FillForm(context.Background(), doc, fields("country", "fr"))
		require.NoError(t, err)
		assert.Equal(t, []op{{Kind: "select", Handle: "sel", Value: "FR"}}, doc.writes)
	})

	t.Run("by text", func(t *testing.T) {
		doc := &fakeDoc{controls: []model.Control{sel}}
		_, err := newTestFiller().FillForm(context.Background(), doc, fields("country", "GERMANY"))
		require.NoError(t, err)
		assert.Equal(t, []op{{Kind: "select", Handle: "sel", Value: "DE"}}, doc.writes)
	})

	t.Run("no option", func(t *testing.T) {
		doc := &fakeDoc{controls: []model.Control{sel}}
		res, err := newTestFiller().FillForm(context.Background(), doc, fields("country", "Narnia"))
		require.NoError(t, err)
		assert.Equal(t, []string{"country"}, res.Successful)
		assert.Empty(t, doc.writes)
		assert.Len(t, doc.events, 2)
	})
}

func TestFillForm_FileInputIsNoopSuccess(t *testing.T) {
	doc := &fakeDoc{controls: []model.Control{
		{Handle: "f", Kind: model.KindFile, View: model.ControlView{Name: "photo"}},
	}}

	res, err := newTestFiller().FillForm(context.Background(), doc, fields("photo", "me.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"photo"}, res.Successful)
	assert.Empty(t, doc.writes)
	assert.Len(t, doc.events, 2)
}

func TestFillForm_ContentEditable(t *testing.T) {
	doc := &fakeDoc{controls: []model.Control{
		{Handle: "ce", Kind: model.KindContentEditable, View: model.ControlView{AriaLabel: "Notes"}},
	}}

	_, err := newTestFiller().FillForm(context.Background(), doc, fields("notes", "hello"))
	require.NoError(t, err)
	assert.Equal(t, []op{{Kind: "text", Handle: "ce", Value: "hello"}}, doc.writes)
}

func TestFillForm_FaultsStayInField(t *testing.T) {
	t.Run("enumeration error", func(t *testing.T) {
		doc := &fakeDoc{controlsErr: errors.New("detached")}
		res, err := newTestFiller().FillForm(context.Background(), doc, fields("firstName", "Ada", "lastName", "L"))
		require.NoError(t, err)
		require.Len(t, res.Failed, 2)
		assert.Equal(t, "enumerate controls: detached", res.Failed[0].Reason)
	})

	t.Run("panic while writing", func(t *testing.T) {
		doc := &fakeDoc{panicOnSet: true, controls: []model.Control{
			textControl("fn", model.ControlView{Name: "first_name"}),
			{Handle: "cb", Kind: model.KindCheckbox, View: model.ControlView{Name: "over18"}},
		}}
		res, err := newTestFiller().FillForm(context.Background(), doc, fields("firstName", "Ada", "isAgeOver18", "true"))
		require.NoError(t, err)
		assert.Equal(t, []model.FailedField{{Field: "firstName", Reason: "boom"}}, res.Failed)
		assert.Equal(t, []string{"isAgeOver18"}, res.Successful)
	})
}

func TestFillForm_RescansPerField(t *testing.T) {
	doc := &fakeDoc{controls: []model.Control{
		textControl("fn", model.ControlView{Name: "first_name"}),
	}}
	// the first write reveals the surname input
	doc.afterWrite = func(d *fakeDoc) {
		if len(d.controls) == 1 {
			d.controls = append(d.controls, textControl("ln", model.ControlView{Name: "surname"}))
		}
	}

	res, err := newTestFiller().FillForm(context.Background(), doc, fields("firstName", "Ada", "lastName", "Lovelace"))
	require.NoError(t, err)
	assert.Equal(t, []string{"firstName", "lastName"}, res.Successful)
	assert.Equal(t, 2, doc.scans)
}

func TestFillForm_EveryFieldHasOneOutcome(t *testing.T) {
	doc := &fakeDoc{controls: []model.Control{
		textControl("fn", model.ControlView{Name: "first_name"}),
	}}
	var in model.Fields
	require.NoError(t, json.Unmarshal([]byte(`{"firstName":"A","lastName":"B","nope":"C","firstName":"D"}`), &in))
	require.Len(t, in, 3)

	res, err := newTestFiller().FillForm(context.Background(), doc, in)
	require.NoError(t, err)
	assert.Equal(t, len(in), len(res.Successful)+len(res.Failed))
	assert.Equal(t, []string{"firstName"}, res.Successful)
	assert.Equal(t, []op{{Kind: "value", Handle: "fn", Value: "D"}}, doc.writes)
}

func TestFillForm_NilDocument(t *testing.T) {
	_, err := newTestFiller().FillForm(context.Background(), nil, fields("firstName", "Ada"))
	assert.ErrorIs(t, err, ErrNilDocument)
}

func TestController_Handle(t *testing.T) {
	c := NewController(newTestFiller(), zerolog.Nop())

	doc := &fakeDoc{controls: []model.Control{textControl("fn", model.ControlView{Name: "first_name"})}}
	resp := c.Handle(context.Background(), doc, fields("firstName", "Ada", "lastName", "L"))
	assert.Equal(t, model.StatusSuccess, resp.Status)
	require.NotNil(t, resp.Results)
	assert.Equal(t, []string{"firstName"}, resp.Results.Successful)
	assert.Empty(t, resp.Error)

	resp = c.Handle(context.Background(), nil, fields("firstName", "Ada"))
	assert.Equal(t, model.StatusError, resp.Status)
	assert.Nil(t, resp.Results)
	assert.Equal(t, ErrNilDocument.Error(), resp.Error)
}
