package envelope

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

var emptyPayload = Payload{r: gjson.Parse("{}")}

// Payload is a read-only view over an event payload. Paths use gjson dot
// syntax ("env.reused", "counts.rows"). Getters never fail: a missing or
// mistyped field reads as absent.
type Payload struct {
	r gjson.Result
}

// ParsePayload wraps a JSON document. Invalid input yields an empty payload.
func ParsePayload(raw string) Payload {
	if !gjson.Valid(raw) {
		return emptyPayload
	}
	return Payload{r: gjson.Parse(raw)}
}

func (p Payload) get(path string) gjson.Result {
	if path == "" {
		return p.r
	}
	return p.r.Get(path)
}

// Exists reports whether path holds a non-null value.
func (p Payload) Exists(path string) bool {
	v := p.get(path)
	return v.Exists() && v.Type != gjson.Null
}

// String returns the trimmed string at path; non-strings read as "".
func (p Payload) String(path string) string {
	v := p.get(path)
	if v.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(v.Str)
}

// FirstString returns the first non-empty string among paths.
func (p Payload) FirstString(paths ...string) string {
	for _, path := range paths {
		if s := p.String(path); s != "" {
			return s
		}
	}
	return ""
}

// Number returns the number at path. Strings, booleans and non-finite values
// are rejected.
func (p Payload) Number(path string) (float64, bool) {
	v := p.get(path)
	if v.Type != gjson.Number {
		return 0, false
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FirstNumber returns the first present number among paths.
func (p Payload) FirstNumber(paths ...string) (float64, bool) {
	for _, path := range paths {
		if f, ok := p.Number(path); ok {
			return f, true
		}
	}
	return 0, false
}

// Int returns the number at path truncated toward zero.
func (p Payload) Int(path string) (int64, bool) {
	f, ok := p.Number(path)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// FirstInt returns the first present integer among paths.
func (p Payload) FirstInt(paths ...string) (int64, bool) {
	for _, path := range paths {
		if n, ok := p.Int(path); ok {
			return n, true
		}
	}
	return 0, false
}

// Bool returns the boolean at path.
func (p Payload) Bool(path string) (bool, bool) {
	v := p.get(path)
	switch v.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	default:
		return false, false
	}
}

// Array returns the elements of the array at path, or nil.
func (p Payload) Array(path string) []Payload {
	v := p.get(path)
	if !v.IsArray() {
		return nil
	}
	items := v.Array()
	out := make([]Payload, 0, len(items))
	for _, item := range items {
		out = append(out, Payload{r: item})
	}
	return out
}

// Strings returns the non-empty string elements of the array at path.
func (p Payload) Strings(path string) []string {
	var out []string
	for _, item := range p.Array(path) {
		if item.r.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(item.r.Str); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Raw returns the payload encoded as JSON; "{}" when absent.
func (p Payload) Raw() string {
	if !p.r.Exists() {
		return "{}"
	}
	return p.r.Raw
}
