// Package redact hides sensitive values before they reach logs.
//
// A Redactor knows two key sets. Masked keys have their value replaced by
// Mask. Partial keys keep enough of an email address to correlate log lines
// for the same identity without exposing the whole mailbox.
package redact

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// Mask replaces a fully redacted value.
const Mask = "***"

// Redactor masks values by case-insensitive key name.
type Redactor struct {
	masked  map[string]struct{}
	partial map[string]struct{}
}

// New returns a Redactor. Blank names are ignored.
func New(masked, partial []string) *Redactor {
	return &Redactor{masked: keyset(masked), partial: keyset(partial)}
}

func keyset(fields []string) map[string]struct{} {
	fields = lo.FilterMap(fields, func(f string, _ int) (string, bool) {
		f = strings.ToLower(strings.TrimSpace(f))
		return f, f != ""
	})
	return lo.Keyify(fields)
}

// Empty reports whether the Redactor would leave every value untouched.
func (r *Redactor) Empty() bool {
	return r == nil || (len(r.masked) == 0 && len(r.partial) == 0)
}

// Field returns the redacted form of a scalar value stored under key.
// ok is false when key is not sensitive.
func (r *Redactor) Field(key string, v any) (any, bool) {
	if r == nil {
		return v, false
	}

	key = strings.ToLower(key)
	if _, found := r.masked[key]; found {
		return Mask, true
	}
	if _, found := r.partial[key]; found {
		switch val := v.(type) {
		case string:
			return Email(val), true
		case []string:
			return lo.Map(val, func(s string, _ int) string { return Email(s) }), true
		default:
			return Mask, true
		}
	}

	return v, false
}

// Value walks decoded JSON-like data and redacts sensitive keys at any depth.
func (r *Redactor) Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if red, ok := r.Field(k, v2); ok {
				out[k] = red
				continue
			}
			out[k] = r.Value(v2)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			out[k] = v2
		}
		return r.Value(out)
	case []any:
		return lo.Map(val, func(v2 any, _ int) any { return r.Value(v2) })
	default:
		return v
	}
}

// JSON decodes payload and returns its redacted form.
// ok is false when payload is not a JSON document.
func (r *Redactor) JSON(payload []byte) (any, bool) {
	if len(payload) == 0 {
		return nil, false
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, false
	}
	return r.Value(doc), true
}

// JSONString is JSON for string payloads that look like an object or array.
// The result is re-encoded so it can replace the original string.
func (r *Redactor) JSONString(payload string) (string, bool) {
	if payload == "" || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	doc, ok := r.JSON([]byte(payload))
	if !ok {
		return "", false
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Header returns a copy of h with sensitive header values masked.
func (r *Redactor) Header(h http.Header) http.Header {
	if r.Empty() {
		return h
	}

	out := h.Clone()
	for key := range out {
		if _, found := r.masked[strings.ToLower(key)]; found {
			out.Set(key, Mask)
		}
	}
	return out
}

// Form flattens url-encoded values and redacts sensitive keys.
func (r *Redactor) Form(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		var val any = v
		if len(v) == 1 {
			val = v[0]
		}
		if red, ok := r.Field(k, val); ok {
			val = red
		}
		out[k] = val
	}
	return out
}

// Email keeps the first character of the local part and the domain.
// Values that are not a single address are masked completely.
func Email(s string) string {
	local, domain, found := strings.Cut(s, "@")
	if !found || local == "" || domain == "" || strings.Contains(domain, "@") {
		return Mask
	}
	return local[:1] + Mask + "@" + domain
}
