package cta

import (
	"sort"
	"strings"
)

// Render replaces every [KEY] token of template with its customization value.
// Keys are matched upper-cased; tokens without a value stay verbatim.
// Replacement is a single pass, so values are never re-expanded.
func Render(template string, customization map[string]string) string {
	if len(customization) == 0 || !strings.Contains(template, "[") {
		return template
	}

	resolved := NormalizeKeys(customization)
	keys := make([]string, 0, len(resolved))
	for k := range resolved {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "["+k+"]", resolved[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// NormalizeKeys upper-cases customization keys. When two keys collide the one
// sorting last wins, so "score" overrides "SCORE".
func NormalizeKeys(customization map[string]string) map[string]string {
	keys := make([]string, 0, len(customization))
	for k := range customization {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(customization))
	for _, k := range keys {
		out[strings.ToUpper(k)] = customization[k]
	}
	return out
}
