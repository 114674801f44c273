// Package htmldoc implements the autofill Document over a parsed HTML tree.
// Writes change attributes and text in the tree; events cannot run page
// scripts here, so they are recorded instead.
package htmldoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"autofill-service/internal/autofill/model"
	"autofill-service/internal/fileio"
)

// controlSelector is what counts as an interactive control.
const controlSelector = `input, select, textarea, [contenteditable="true"]`

var ErrUnknownControl = errors.New("htmldoc: control does not belong to this document")

// Event is a notification dispatched on a control.
type Event struct {
	Name    string `json:"name"`
	Target  string `json:"target"`
	Bubbles bool   `json:"bubbles"`
}

type Document struct {
	doc     *goquery.Document
	charset string
	events  []Event
}

// Parse reads an HTML document in any charset chardet recognises.
func Parse(r io.Reader) (*Document, error) {
	utf8, cs := fileio.UTF8Reader(r)
	doc, err := goquery.NewDocumentFromReader(utf8)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc, charset: cs}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Charset is the encoding the input was decoded from.
func (d *Document) Charset() string { return d.charset }

// Events returns the dispatched events in order.
func (d *Document) Events() []Event {
	return append([]Event(nil), d.events...)
}

// HTML renders the document with all writes applied.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

func (d *Document) Controls(_ context.Context) ([]model.Control, error) {
	labels := d.labels()
	var out []model.Control
	d.doc.Find(controlSelector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, control(s, labels))
	})
	return out, nil
}

func (d *Document) RadioGroup(_ context.Context, group string) ([]model.Control, error) {
	labels := d.labels()
	var out []model.Control
	d.doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		if name, ok := s.Attr("name"); ok && name == group {
			out = append(out, control(s, labels))
		}
	})
	return out, nil
}

func (d *Document) SetValue(_ context.Context, c model.Control, value string) error {
	s, err := d.selection(c)
	if err != nil {
		return err
	}
	if goquery.NodeName(s) == "textarea" {
		s.SetText(value)
		return nil
	}
	s.SetAttr("value", value)
	return nil
}

// SetChecked toggles the checked attribute. Checking a radio unchecks the
// other radios of its group, as a browser would.
func (d *Document) SetChecked(_ context.Context, c model.Control, checked bool) error {
	s, err := d.selection(c)
	if err != nil {
		return err
	}
	if !checked {
		s.RemoveAttr("checked")
		return nil
	}
	if t, _ := s.Attr("type"); strings.EqualFold(t, "radio") {
		name, _ := s.Attr("name")
		d.doc.Find("input").Each(func(_ int, r *goquery.Selection) {
			rt, _ := r.Attr("type")
			if n, _ := r.Attr("name"); strings.EqualFold(rt, "radio") && n == name && name != "" {
				r.RemoveAttr("checked")
			}
		})
	}
	s.SetAttr("checked", "")
	return nil
}

func (d *Document) SetText(_ context.Context, c model.Control, text string) error {
	s, err := d.selection(c)
	if err != nil {
		return err
	}
	s.SetText(text)
	return nil
}

func (d *Document) SelectOption(_ context.Context, c model.Control, value string) error {
	s, err := d.selection(c)
	if err != nil {
		return err
	}
	found := false
	s.Find("option").Each(func(_ int, o *goquery.Selection) {
		if !found && optionValue(o) == value {
			found = true
			o.SetAttr("selected", "")
			return
		}
		o.RemoveAttr("selected")
	})
	if !found {
		return fmt.Errorf("select %s: no option %q", Describe(c), value)
	}
	return nil
}

func (d *Document) Dispatch(_ context.Context, c model.Control, event string) error {
	if _, err := d.selection(c); err != nil {
		return err
	}
	d.events = append(d.events, Event{Name: event, Target: Describe(c), Bubbles: true})
	return nil
}

func (d *Document) selection(c model.Control) (*goquery.Selection, error) {
	n, ok := c.Handle.(*html.Node)
	if !ok || n == nil {
		return nil, ErrUnknownControl
	}
	s := d.doc.FindNodes(n)
	if s.Length() == 0 {
		return nil, ErrUnknownControl
	}
	return s, nil
}

// labels maps label[for] to its text; the first label for an id wins.
func (d *Document) labels() map[string]string {
	out := make(map[string]string)
	d.doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("for")
		if _, seen := out[id]; !seen {
			out[id] = strings.TrimSpace(s.Text())
		}
	})
	return out
}
