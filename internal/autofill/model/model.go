package model

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
)

// ControlKind selects the write strategy used for a control.
type ControlKind int

const (
	KindText            ControlKind = iota // input (any non-special type), textarea
	KindRadio                              // input[type=radio]
	KindCheckbox                           // input[type=checkbox]
	KindSelect                             // select (single)
	KindContentEditable                    // [contenteditable="true"]
	KindFile                               // input[type=file]
)

func (k ControlKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRadio:
		return "radio"
	case KindCheckbox:
		return "checkbox"
	case KindSelect:
		return "select"
	case KindContentEditable:
		return "contenteditable"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// KindFromInputType maps the type attribute of an <input> to a ControlKind.
func KindFromInputType(t string) ControlKind {
	switch Fold(t) {
	case "radio":
		return KindRadio
	case "checkbox":
		return KindCheckbox
	case "file":
		return KindFile
	default:
		return KindText
	}
}

type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// ControlView is the matchable surface of a control.
type ControlView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Placeholder string `json:"placeholder"`
	Label       string `json:"label"`     // text of label[for=id]
	AriaLabel   string `json:"ariaLabel"` // aria-label
	TestID      string `json:"testId"`    // data-testid
}

// Attributes returns the folded attribute texts in a fixed order:
// id, name, class, placeholder, label, aria-label, data-testid.
func (v ControlView) Attributes() []string {
	return []string{
		Fold(v.ID),
		Fold(v.Name),
		Fold(v.Class),
		Fold(v.Placeholder),
		Fold(v.Label),
		Fold(v.AriaLabel),
		Fold(v.TestID),
	}
}

// Control is one interactive control of a document. Only the fields relevant
// to Kind are populated.
type Control struct {
	Handle  any         `json:"-"` // opaque, owned by the Document that produced it
	Kind    ControlKind `json:"kind"`
	View    ControlView `json:"view"`
	Group   string      `json:"group,omitempty"`   // radio: shared name attribute
	Value   string      `json:"value,omitempty"`   // radio: the button's own value
	Options []Option    `json:"options,omitempty"` // select
}

type MatchResult struct {
	Control Control
	Type    MatchType
	Score   float64 // fuzzy only
}

// Fold lower-cases s with Unicode rules. A Caser is stateful, so one is
// built per call.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Lower(language.Und).String(s)
}
