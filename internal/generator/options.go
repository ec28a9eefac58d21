package generator

import (
	"sort"
	"strings"
)

// encodeIndexOptions renders an option map as the JSON object the engine
// expects inside INDEX_OPTIONS='...'. Keys are sorted so compilation stays
// deterministic.
func encodeIndexOptions(options map[string]string) string {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(jsonString(key))
		sb.WriteByte(':')
		sb.WriteString(jsonString(options[key]))
	}
	sb.WriteByte('}')
	return sb.String()
}

func jsonString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
