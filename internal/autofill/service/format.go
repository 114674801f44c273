package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"autofill-service/internal/autofill/model"
)

// Formatter turns a raw payload value into the value written to a control.
type Formatter func(raw any) model.Formatted

var formatters = map[string]Formatter{
	"birthDate":   FormatDate,
	"expiryDate":  FormatDate,
	"issueDate":   FormatDate,
	"isAgeOver18": FormatBoolean,
	"isAgeOver21": FormatBoolean,
}

// FormatValue dispatches on the field name; unknown fields pass through as text.
func FormatValue(field string, raw any) model.Formatted {
	if f, ok := formatters[field]; ok {
		return f(raw)
	}
	return model.Formatted{Value: model.TextValue(Stringify(raw))}
}

// accepted date layouts, tried in order; zone-less layouts are read as UTC
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
}

// maxDateMillis bounds representable instants to +-8.64e15 ms around the epoch.
const maxDateMillis = 8.64e15

// FormatDate renders a date as YYYY-MM-DD (UTC). Numbers are epoch
// milliseconds. Anything unparsable is kept verbatim with Fallback set.
func FormatDate(raw any) model.Formatted {
	orig := Stringify(raw)
	fallback := model.Formatted{Value: model.TextValue(orig), Fallback: true}

	var t time.Time
	switch v := raw.(type) {
	case json.Number:
		ms, err := v.Float64()
		if err != nil || math.Abs(ms) > maxDateMillis {
			return fallback
		}
		t = time.UnixMilli(int64(ms))
	case float64:
		if math.IsNaN(v) || math.Abs(v) > maxDateMillis {
			return fallback
		}
		t = time.UnixMilli(int64(v))
	case string:
		parsed, ok := parseDate(v)
		if !ok {
			return fallback
		}
		t = parsed
	case time.Time:
		t = v
	default:
		return fallback
	}
	return model.Formatted{Value: model.TextValue(t.UTC().Format("2006-01-02"))}
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatBoolean is true only when the stringified, folded value is exactly
// "true". Everything else, including "1" and "yes", is false.
func FormatBoolean(raw any) model.Formatted {
	return model.Formatted{Value: model.BoolValue(fold(Stringify(raw)) == "true")}
}

// Stringify renders a raw payload value the way a JSON-fed page would see it.
func Stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			if p != nil {
				parts[i] = Stringify(p)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return fmt.Sprint(v)
	}
}
