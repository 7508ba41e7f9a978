package ocpp

import (
	"strings"
	"unicode"
)

// acronymSubstitutions are applied to a snake_case key, as a plain string
// replace, before it is split on underscores. They let a handful of
// OCPP 1.6 domain acronyms (SoC, V2X) survive the snake<->camel round trip
// instead of becoming "Soc"/"V2x". Extend this table, not the code, for new
// acronyms (§9 Design Notes).
var acronymSubstitutions = []struct{ from, to string }{
	{"soc", "SoC"},
	{"_v2x", "V2X"},
}

// SnakeToCamel converts a single snake_case key to camelCase, applying the
// acronym table first. The first token is left as-is; subsequent tokens
// have their first rune upper-cased.
func SnakeToCamel(key string) string {
	substituted := key
	for _, sub := range acronymSubstitutions {
		substituted = strings.ReplaceAll(substituted, sub.from, sub.to)
	}

	parts := strings.Split(substituted, "_")
	if len(parts) == 0 {
		return substituted
	}

	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}

// CamelToSnake converts a single camelCase (or PascalCase / acronym-laden)
// key to snake_case. A new token starts before an uppercase letter that is
// followed by a lowercase letter; a run of uppercase letters is one token
// unless a lowercase letter ends it. This is the left-inverse of
// SnakeToCamel for every key defined by the OCPP 1.6 schemas (§8); the
// behavior on arbitrary trailing uppercase runs not exercised by those keys
// is intentionally unspecified beyond what's implemented here.
func CamelToSnake(key string) string {
	runes := []rune(key)
	n := len(runes)

	var tokens []string
	var cur []rune

	for i, r := range runes {
		if unicode.IsUpper(r) && i+1 < n {
			next := runes[i+1]
			if !unicode.IsUpper(next) {
				if i != 0 && len(cur) > 0 {
					tokens = append(tokens, string(cur))
					cur = nil
				}
			} else if hasLowerOrDigit(cur) {
				tokens = append(tokens, string(cur))
				cur = nil
			}
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		tokens = append(tokens, string(cur))
	}

	return strings.ToLower(strings.Join(tokens, "_"))
}

func hasLowerOrDigit(rs []rune) bool {
	for _, r := range rs {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// TranslateKeysToCamel recursively rewrites every map key from snake_case to
// camelCase, leaving values (and list contents) otherwise untouched. Used
// when translating an internal handler payload back to the wire.
func TranslateKeysToCamel(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[SnakeToCamel(k)] = TranslateKeysToCamel(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = TranslateKeysToCamel(val)
		}
		return out
	default:
		return v
	}
}

// TranslateKeysToSnake recursively rewrites every map key from camelCase to
// snake_case. Used when translating a wire payload to the internal handler
// argument convention.
func TranslateKeysToSnake(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[CamelToSnake(k)] = TranslateKeysToSnake(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = TranslateKeysToSnake(val)
		}
		return out
	default:
		return v
	}
}

// StripNulls recursively removes map entries whose value is nil, mirroring
// the handler-response pipeline's "strip null-valued entries" step (§4.5).
// Applying it twice yields the same result as once (§8).
func StripNulls(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			if val == nil {
				continue
			}
			out[k] = StripNulls(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, val := range v {
			if val == nil {
				continue
			}
			out = append(out, StripNulls(val))
		}
		return out
	default:
		return v
	}
}

// AsStringMap asserts value is a map[string]interface{}, treating nil as an
// empty map. It is a small helper for call sites that build payloads from
// loosely typed sources.
func AsStringMap(value interface{}) map[string]interface{} {
	if value == nil {
		return map[string]interface{}{}
	}
	if m, ok := value.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}
