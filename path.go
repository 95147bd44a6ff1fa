package wizard

import "strings"

// LookupPath navigates v along a dot-separated path of object keys, e.g.
// "data.potential_causes". A missing key or a non-object intermediate value
// reports false. The empty path returns v itself.
func LookupPath(v any, path string) (any, bool) {
	if path == "" {
		return v, true
	}
	cur := v
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
