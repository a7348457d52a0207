package instrument

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const masked = "***"

// MaskSet holds lower-cased field names whose values never reach a log sink.
type MaskSet map[string]struct{}

// MaskKeys builds a MaskSet from config values. Blank entries are ignored.
func MaskKeys(fields []string) MaskSet {
	set := make(MaskSet, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

// Has reports whether key is masked, ignoring case.
func (m MaskSet) Has(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

// MaskJSON decodes payload and hides masked keys at any depth.
// ok is false when payload is not JSON.
func MaskJSON(payload []byte, keys MaskSet) (any, bool) {
	if len(payload) == 0 {
		return nil, false
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, false
	}
	return keys.walk(doc), true
}

// attr masks a single log attribute. Strings and byte slices that hold JSON
// are rewritten in place. Maps, including template variable maps, are walked.
func (m MaskSet) attr(a slog.Attr) slog.Attr {
	if m.Has(a.Key) {
		return slog.String(a.Key, masked)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = m.attr(ga)
		}
		a.Value = slog.GroupValue(out...)

	case slog.KindString:
		if s := a.Value.String(); looksLikeJSON(s) {
			if text, ok := m.jsonText([]byte(s)); ok {
				a.Value = slog.StringValue(text)
			}
		}

	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any, []any:
			a.Value = slog.AnyValue(m.walk(v))
		case map[string]string:
			doc := make(map[string]any, len(v))
			for k, s := range v {
				doc[k] = s
			}
			a.Value = slog.AnyValue(m.walk(doc))
		case []byte:
			if text, ok := m.jsonText(v); ok {
				a.Value = slog.StringValue(text)
			}
		}
	}

	return a
}

func looksLikeJSON(s string) bool {
	return s != "" && (s[0] == '{' || s[0] == '[')
}

func (m MaskSet) jsonText(b []byte) (string, bool) {
	doc, ok := MaskJSON(b, m)
	if !ok {
		return "", false
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (m MaskSet) walk(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			if m.Has(k) {
				out[k] = masked
				continue
			}
			out[k] = m.walk(child)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = m.walk(child)
		}
		return out
	default:
		return v
	}
}
