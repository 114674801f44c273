package service

import (
	"context"

	"autofill-service/internal/autofill/model"
)

type op struct {
	Kind   string
	Handle any
	Value  string
}

// fakeDoc is an in-memory Document recording writes and events.
type fakeDoc struct {
	controls    []model.Control
	scans       int
	writes      []op
	events      []op
	controlsErr error
	panicOnSet  bool
	afterWrite  func(d *fakeDoc)
}

func (d *fakeDoc) Controls(context.Context) ([]model.Control, error) {
	d.scans++
	if d.controlsErr != nil {
		return nil, d.controlsErr
	}
	return append([]model.Control(nil), d.controls...), nil
}

func (d *fakeDoc) RadioGroup(_ context.Context, group string) ([]model.Control, error) {
	var out []model.Control
	for _, c := range d.controls {
		if c.Kind == model.KindRadio && c.Group == group {
			out = append(out, c)
		}
	}
	return out, nil
}

func (d *fakeDoc) record(kind string, c model.Control, v string) error {
	d.writes = append(d.writes, op{Kind: kind, Handle: c.Handle, Value: v})
	if d.afterWrite != nil {
		d.afterWrite(d)
	}
	return nil
}

func (d *fakeDoc) SetValue(_ context.Context, c model.Control, v string) error {
	if d.panicOnSet {
		panic("boom")
	}
	return d.record("value", c, v)
}

func (d *fakeDoc) SetChecked(_ context.Context, c model.Control, checked bool) error {
	v := "false"
	if checked {
		v = "true"
	}
	return d.record("checked", c, v)
}

func (d *fakeDoc) SetText(_ context.Context, c model.Control, text string) error {
	return d.record("text", c, text)
}

func (d *fakeDoc) SelectOption(_ context.Context, c model.Control, v string) error {
	return d.record("select", c, v)
}

func (d *fakeDoc) Dispatch(_ context.Context, c model.Control, event string) error {
	d.events = append(d.events, op{Kind: event, Handle: c.Handle})
	return nil
}

func textControl(handle string, view model.ControlView) model.Control {
	return model.Control{Handle: handle, Kind: model.KindText, View: view}
}
