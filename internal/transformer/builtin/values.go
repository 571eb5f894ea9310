package builtin

import (
	"strconv"
	"strings"
	"time"
)

// numericCleaner strips the currency noise seen in raw listing exports
// ("$1,234.00") before parsing.
var numericCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// toFloat coerces a scalar to float64. Strings are cleaned of currency
// symbols and thousands separators first. The second return is false when
// the value cannot be coerced (including nil).
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case bool:
		return 0, false
	case string:
		s := numericCleaner.Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toString renders a scalar as text. nil maps to "".
func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}
