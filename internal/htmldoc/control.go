package htmldoc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"autofill-service/internal/autofill/model"
)

// control builds the model view of one element.
func control(s *goquery.Selection, labels map[string]string) model.Control {
	tag := goquery.NodeName(s)
	id, _ := s.Attr("id")
	class, _ := s.Attr("class")
	aria, _ := s.Attr("aria-label")
	testID, _ := s.Attr("data-testid")

	view := model.ControlView{
		ID:        id,
		Class:     class,
		AriaLabel: aria,
		TestID:    testID,
	}
	if id != "" {
		view.Label = labels[id]
	}
	// name and placeholder only exist on form elements
	switch tag {
	case "input", "textarea":
		view.Name, _ = s.Attr("name")
		view.Placeholder, _ = s.Attr("placeholder")
	case "select":
		view.Name, _ = s.Attr("name")
	}

	c := model.Control{Handle: s.Get(0), View: view}
	switch tag {
	case "select":
		c.Kind = model.KindSelect
		s.Find("option").Each(func(_ int, o *goquery.Selection) {
			c.Options = append(c.Options, model.Option{Value: optionValue(o), Text: optionText(o)})
		})
	case "input":
		t, _ := s.Attr("type")
		c.Kind = model.KindFromInputType(t)
		c.Group = view.Name
		c.Value = inputValue(s, c.Kind)
	case "textarea":
		c.Kind = model.KindText
	default:
		c.Kind = model.KindContentEditable
	}
	if c.Kind == model.KindText {
		if _, ok := s.Attr("contenteditable"); ok {
			c.Kind = model.KindContentEditable
		}
	}
	return c
}

// inputValue is the value attribute; radios and checkboxes default to "on".
func inputValue(s *goquery.Selection, kind model.ControlKind) string {
	if v, ok := s.Attr("value"); ok {
		return v
	}
	if kind == model.KindRadio || kind == model.KindCheckbox {
		return "on"
	}
	return ""
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return optionText(o)
}

// optionText is the option's text with whitespace collapsed.
func optionText(o *goquery.Selection) string {
	return strings.Join(strings.Fields(o.Text()), " ")
}

// Describe renders a short selector-like name for c, e.g. input#email or
// select[name="country"].
func Describe(c model.Control) string {
	tag := "element"
	if n, ok := c.Handle.(*html.Node); ok && n != nil {
		tag = n.Data
	}
	switch {
	case c.View.ID != "":
		return fmt.Sprintf("%s#%s", tag, c.View.ID)
	case c.View.Name != "":
		return fmt.Sprintf("%s[name=%q]", tag, c.View.Name)
	default:
		return tag
	}
}
