package ratelimit

import "strings"

// MatchEndpoint maps a request path and method to an endpoint rule, or nil
// when only the default applies. The health check is always unlimited.
func MatchEndpoint(path, method string, rules []EndpointRule) *EndpointRule {
	if path == "/health" && method == "GET" {
		return &EndpointRule{Limit: 0}
	}

	for i := range rules {
		rule := &rules[i]
		if rule.Path == path && rule.Method == method {
			return rule
		}
	}

	// Prefix match for patterns ending in "/".
	for i := range rules {
		rule := &rules[i]
		if rule.Method == method && strings.HasSuffix(rule.Path, "/") && strings.HasPrefix(path, rule.Path) {
			return rule
		}
	}

	return nil
}
