package router

import "encoding/json"

// fields is a loosely-typed view over a decoded JSON object, used to
// resolve the dynamic field aliases spec §9 describes (e.g. room|roomId|
// roomName): pick the first alias present, in the precedence order given
// in spec §6.2's event list.
type fields map[string]json.RawMessage

// parseFields decodes a raw payload into a field map. A malformed or
// non-object payload yields an empty map rather than an error — the
// caller's required-field checks turn that into the correct validation
// error anyway.
func parseFields(raw json.RawMessage) fields {
	var m map[string]json.RawMessage
	_ = json.Unmarshal(raw, &m)
	return fields(m)
}

// str returns the first non-empty string value found under any of keys.
func (f fields) str(keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := f[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s, true
		}
	}
	return "", false
}

// strDefault is str with a fallback default.
func (f fields) strDefault(def string, keys ...string) string {
	if s, ok := f.str(keys...); ok {
		return s
	}
	return def
}

// strSlice decodes key as a []string, returning nil if absent or malformed.
func (f fields) strSlice(key string) []string {
	v, ok := f[key]
	if !ok {
		return nil
	}
	var out []string
	_ = json.Unmarshal(v, &out)
	return out
}

// raw returns the undecoded bytes for key, if present.
func (f fields) raw(key string) (json.RawMessage, bool) {
	v, ok := f[key]
	return v, ok
}

// has reports whether any of keys is present with a non-null value.
func (f fields) has(keys ...string) bool {
	for _, k := range keys {
		if v, ok := f[k]; ok && string(v) != "null" {
			return true
		}
	}
	return false
}

// assertPayload decodes a raw JSON payload directly into T. Mirrors the
// teacher's assertPayload[T any](payload any) helper (session/handlers.go),
// narrowed to json.RawMessage since every inbound payload here arrives
// that way off the wire (tests can still construct T by hand and skip
// this entirely).
func assertPayload[T any](raw json.RawMessage) (T, bool) {
	var out T
	if len(raw) == 0 {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}
