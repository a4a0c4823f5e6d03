// Package dispatch holds the per-request routing logic: model alias
// resolution, history truncation, assistant mode inference, and BYOK client
// selection. Everything here is pure except the selector's client
// construction.
package dispatch

import "strings"

// AliasTable maps the caller-facing model aliases to concrete provider
// model ids. Injected from configuration, immutable after load.
type AliasTable struct {
	Fast     string
	Balanced string
	Creative string
}

// ResolveModel maps a caller-supplied alias to a model id. Empty and
// "balanced" resolve to the balanced id; any unrecognized string passes
// through verbatim, letting callers name provider model ids directly.
func ResolveModel(raw string, table AliasTable) string {
	switch strings.TrimSpace(raw) {
	case "", "balanced":
		return table.Balanced
	case "fast":
		return table.Fast
	case "creative":
		return table.Creative
	default:
		return strings.TrimSpace(raw)
	}
}

// ResolveImageModel trims the caller value and falls back to the
// configured default image model when blank.
func ResolveImageModel(raw, defaultModel string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return defaultModel
}
