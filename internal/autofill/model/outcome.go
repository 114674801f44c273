package model

const (
	StatusSuccess = "success"
	StatusError   = "error"

	ReasonNoMatch = "No matching field found"
)

type FailedField struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// FillOutcome collects per-field results of one batch in processing order.
type FillOutcome struct {
	Successful []string      `json:"successful"`
	Failed     []FailedField `json:"failed"`
}

func NewFillOutcome() *FillOutcome {
	return &FillOutcome{Successful: []string{}, Failed: []FailedField{}}
}

func (o *FillOutcome) Succeed(field string) {
	o.Successful = append(o.Successful, field)
}

func (o *FillOutcome) Fail(field, reason string) {
	o.Failed = append(o.Failed, FailedField{Field: field, Reason: reason})
}

// Response is what the caller of a batch gets back.
type Response struct {
	Status  string       `json:"status"`
	Results *FillOutcome `json:"results,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// FormattedValue is either a string or a boolean, the two shapes a formatter
// can produce.
type FormattedValue struct {
	text    string
	boolean bool
	isBool  bool
}

func TextValue(s string) FormattedValue { return FormattedValue{text: s} }
func BoolValue(b bool) FormattedValue   { return FormattedValue{boolean: b, isBool: true} }

func (v FormattedValue) IsBool() bool { return v.isBool }

func (v FormattedValue) String() string {
	if v.isBool {
		if v.boolean {
			return "true"
		}
		return "false"
	}
	return v.text
}

// Truthy coerces the value to a checked state: booleans as-is, strings
// true when non-empty.
func (v FormattedValue) Truthy() bool {
	if v.isBool {
		return v.boolean
	}
	return v.text != ""
}

// Formatted is the result of formatting a raw value. Fallback is set when a
// formatter could not parse the input and the original text was kept.
type Formatted struct {
	Value    FormattedValue
	Fallback bool
}
