package mapping

import (
	"net/url"
	"strings"
)

// splitMatrixSegments strips matrix variables (";name=value" pairs) from
// every path segment and returns the cleaned path together with the
// per-segment variable values. segVars is aligned with the non-empty
// path segments; entries without matrix content are nil.
//
// A segment like "42;q=11;r=12,13" cleans to "42" with q=[11] and
// r=[12 13]. Multi-valued parameters may be comma-separated or repeat
// the name.
func splitMatrixSegments(path string) (cleanPath string, segVars []url.Values) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}

		clean, vars := splitMatrixSegment(part)
		cleanParts = append(cleanParts, clean)
		segVars = append(segVars, vars)
	}

	if len(cleanParts) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(cleanParts, "/"), segVars
}

// splitMatrixSegment separates one segment from its matrix content.
func splitMatrixSegment(segment string) (clean string, vars url.Values) {
	idx := strings.IndexByte(segment, ';')
	if idx < 0 {
		return segment, nil
	}

	clean = segment[:idx]
	vars = make(url.Values)

	for _, pair := range strings.Split(segment[idx+1:], ";") {
		if pair == "" {
			continue
		}

		name, value, found := strings.Cut(pair, "=")
		if !found {
			vars[name] = append(vars[name], "")
			continue
		}
		for _, v := range strings.Split(value, ",") {
			vars[name] = append(vars[name], v)
		}
	}

	if len(vars) == 0 {
		vars = nil
	}
	return clean, vars
}
