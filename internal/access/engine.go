package access

import "strings"

// Authorize reports whether at least one grant matches the requested
// module and action. Matching is case-insensitive exact on both fields and
// is a pure existence check: all grants are equally authoritative, there
// is no deny-overrides or ranking. Input validation happens at the query
// surface; by the time a pair reaches here both fields are non-blank.
func Authorize(grants []Grant, moduleName, action string) bool {
	for _, g := range grants {
		if strings.EqualFold(g.Module, moduleName) && strings.EqualFold(g.Action, action) {
			return true
		}
	}
	return false
}
