package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Validate checks that every required field is non-blank after trimming.
// The result maps field id to message; an empty map means the form may be submitted.
func Validate(values map[string]any) map[string]string {
	errs := map[string]string{}
	for _, f := range Fields() {
		if !f.Required {
			continue
		}
		s, _ := scalar(values[f.ID])
		if strings.TrimSpace(s) == "" {
			errs[f.ID] = f.Message
		}
	}
	return errs
}

// Coerce converts raw submitted values (decoded JSON or multipart form values)
// into the typed shape of the record: strings for text-like fields, float64 for
// numbers and a list for skills. Blank numbers are dropped. Unknown keys,
// malformed numbers and dates, and values outside a field's options are reported
// per field.
func Coerce(raw map[string]any) (map[string]any, map[string]string) {
	out := make(map[string]any, len(raw)+1)
	errs := map[string]string{}

	for key, v := range raw {
		f, ok := byID[key]
		if !ok {
			// The record is typed: keys outside the registry are refused, not stored.
			errs[key] = "unknown field"
			continue
		}
		if f.Kind == KindSkills {
			continue
		}
		s, ok := scalar(v)
		if !ok {
			errs[key] = "expected a single value"
			continue
		}
		s = strings.TrimSpace(s)

		switch f.Kind {
		case KindNumber:
			if s == "" {
				continue
			}
			n, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				errs[key] = "must be a number"
				continue
			}
			if msg := checkRange(f, n); msg != "" {
				errs[key] = msg
				continue
			}
			out[key] = n
		case KindDate:
			if s != "" {
				if _, err := time.Parse(DateLayout, s); err != nil {
					errs[key] = "must be a date in YYYY-MM-DD format"
					continue
				}
			}
			out[key] = s
		case KindChoice:
			if s != "" && !f.HasOption(s) {
				errs[key] = fmt.Sprintf("%q is not one of the allowed answers", s)
				continue
			}
			out[key] = s
		default:
			out[key] = s
		}
	}

	skills, err := NormalizeSkills(raw[FieldSkills])
	if err != nil {
		errs[FieldSkills] = err.Error()
	} else {
		out[FieldSkills] = skills
	}
	return out, errs
}

// NormalizeSkills materializes the skills value as a list: absent becomes an
// empty list, a single value a one-element list, and a list is kept in order.
// Every entry must be a registered skill.
func NormalizeSkills(v any) ([]string, error) {
	var list []string
	switch t := v.(type) {
	case nil:
	case string:
		if strings.TrimSpace(t) != "" {
			list = []string{t}
		}
	case []string:
		list = append(list, t...)
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("skills must be strings, got %T", item)
			}
			list = append(list, s)
		}
	default:
		return nil, fmt.Errorf("skills must be a list of strings, got %T", v)
	}

	f := byID[FieldSkills]
	for _, s := range list {
		if !f.HasOption(s) {
			return nil, fmt.Errorf("%q is not a known skill", s)
		}
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func checkRange(f Field, n float64) string {
	if f.Integer && n != math.Trunc(n) {
		return "must be a whole number"
	}
	if f.Min != nil && n < *f.Min {
		return fmt.Sprintf("must be at least %v", *f.Min)
	}
	if f.Max != nil && n > *f.Max {
		return fmt.Sprintf("must be at most %v", *f.Max)
	}
	return ""
}

// scalar flattens a submitted value to a string. Multipart values arrive as
// one-element slices; JSON numbers are formatted without exponent.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case []string:
		if len(t) == 0 {
			return "", true
		}
		if len(t) == 1 {
			return t[0], true
		}
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	}
	return "", false
}
