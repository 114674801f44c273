package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"autofill-service/internal/autofill/model"
)

const controlSelector = `input, select, textarea, [contenteditable="true"]`

// viewJS reads the matchable surface of one element.
const viewJS = `function () {
	const el = this;
	const attr = (n) => el.getAttribute(n) || '';
	let label = '';
	if (el.id) {
		const l = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
		if (l) label = l.textContent.trim();
	}
	const tag = el.tagName.toLowerCase();
	return {
		tag: tag,
		type: typeof el.type === 'string' ? el.type.toLowerCase() : '',
		contentEditable: el.hasAttribute('contenteditable'),
		id: el.id || '',
		name: typeof el.name === 'string' ? el.name : '',
		className: typeof el.className === 'string' ? el.className : '',
		placeholder: typeof el.placeholder === 'string' ? el.placeholder : '',
		label: label,
		ariaLabel: attr('aria-label'),
		testId: attr('data-testid'),
		value: typeof el.value === 'string' ? el.value : '',
		options: tag === 'select' ? Array.from(el.options).map((o) => ({ value: o.value, text: o.text })) : [],
	};
}`

const (
	setValueJS   = `function (v) { this.value = v; }`
	setCheckedJS = `function (v) { this.checked = v; }`
	setTextJS    = `function (v) { this.textContent = v; }`
	selectJS     = `function (v) {
		for (const o of this.options) {
			if (o.value === v) { o.selected = true; return true; }
		}
		return false;
	}`
	dispatchJS = `function (name) { this.dispatchEvent(new Event(name, { bubbles: true })); }`
)

var ErrUnknownControl = errors.New("browser: control does not belong to a page")

type elementView struct {
	Tag             string         `json:"tag"`
	Type            string         `json:"type"`
	ContentEditable bool           `json:"contentEditable"`
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	ClassName       string         `json:"className"`
	Placeholder     string         `json:"placeholder"`
	Label           string         `json:"label"`
	AriaLabel       string         `json:"ariaLabel"`
	TestID          string         `json:"testId"`
	Value           string         `json:"value"`
	Options         []model.Option `json:"options"`
}

// kind follows the type first, then contenteditable, like a page script
// switching on element.type would.
func (v elementView) kind() model.ControlKind {
	if v.Tag == "select" {
		return model.KindSelect
	}
	if v.Tag == "input" {
		if k := model.KindFromInputType(v.Type); k != model.KindText {
			return k
		}
	}
	if v.ContentEditable {
		return model.KindContentEditable
	}
	return model.KindText
}

func (v elementView) control(el *rod.Element) model.Control {
	c := model.Control{
		Handle: el,
		Kind:   v.kind(),
		View: model.ControlView{
			ID:          v.ID,
			Name:        v.Name,
			Class:       v.ClassName,
			Placeholder: v.Placeholder,
			Label:       v.Label,
			AriaLabel:   v.AriaLabel,
			TestID:      v.TestID,
		},
	}
	switch c.Kind {
	case model.KindRadio, model.KindCheckbox:
		c.Group = v.Name
		c.Value = v.Value
	case model.KindSelect:
		c.Options = v.Options
	}
	return c
}

// Document is a live page. Every call reads the page again.
type Document struct {
	page    *rod.Page
	timeout time.Duration
}

func NewDocument(page *rod.Page, timeout time.Duration) *Document {
	return &Document{page: page, timeout: timeout}
}

func (d *Document) Controls(ctx context.Context) ([]model.Control, error) {
	return d.query(ctx, controlSelector)
}

func (d *Document) RadioGroup(ctx context.Context, group string) ([]model.Control, error) {
	return d.query(ctx, `input[name=`+quoteCSS(group)+`]`)
}

func (d *Document) query(ctx context.Context, selector string) ([]model.Control, error) {
	page := d.page.Context(ctx).Timeout(d.timeout)
	defer page.CancelTimeout()

	els, err := page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	out := make([]model.Control, 0, len(els))
	for _, el := range els {
		res, err := el.Eval(viewJS)
		if err != nil {
			return nil, fmt.Errorf("read control: %w", err)
		}
		raw, err := res.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		var v elementView
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode control: %w", err)
		}
		out = append(out, v.control(el))
	}
	return out, nil
}

func (d *Document) SetValue(ctx context.Context, c model.Control, value string) error {
	return d.call(ctx, c, setValueJS, value)
}

func (d *Document) SetChecked(ctx context.Context, c model.Control, checked bool) error {
	return d.call(ctx, c, setCheckedJS, checked)
}

func (d *Document) SetText(ctx context.Context, c model.Control, text string) error {
	return d.call(ctx, c, setTextJS, text)
}

func (d *Document) SelectOption(ctx context.Context, c model.Control, value string) error {
	el, err := d.element(ctx, c)
	if err != nil {
		return err
	}
	defer el.CancelTimeout()

	res, err := el.Eval(selectJS, value)
	if err != nil {
		return err
	}
	if !res.Value.Bool() {
		return fmt.Errorf("select: no option %q", value)
	}
	return nil
}

func (d *Document) Dispatch(ctx context.Context, c model.Control, event string) error {
	return d.call(ctx, c, dispatchJS, event)
}

func (d *Document) call(ctx context.Context, c model.Control, js string, arg any) error {
	el, err := d.element(ctx, c)
	if err != nil {
		return err
	}
	defer el.CancelTimeout()

	_, err = el.Eval(js, arg)
	return err
}

// element returns c's element bound to ctx with the per-call timeout; the
// caller releases it with CancelTimeout.
func (d *Document) element(ctx context.Context, c model.Control) (*rod.Element, error) {
	el, ok := c.Handle.(*rod.Element)
	if !ok || el == nil {
		return nil, ErrUnknownControl
	}
	return el.Context(ctx).Timeout(d.timeout), nil
}

// quoteCSS renders s as a double-quoted CSS string.
func quoteCSS(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return `"` + r.Replace(s) + `"`
}
