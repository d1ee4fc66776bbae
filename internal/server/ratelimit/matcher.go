package ratelimit

import (
	"strings"
)

// unlimited is returned for endpoints that are never rate limited.
var unlimited = EndpointConfig{Limit: 0}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found. Full pattern
// matches win over prefix matches; within each kind the first config listed wins.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/metrics") {
		cfg := unlimited
		cfg.Path = path
		cfg.Method = method
		return &cfg
	}

	segments := splitPath(path)

	for i := range configs {
		config := &configs[i]
		if config.Method == method && !strings.HasSuffix(config.Path, "/") &&
			matchSegments(splitPath(config.Path), segments, false) {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") &&
			matchSegments(splitPath(config.Path), segments, true) {
			return config
		}
	}

	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// matchSegments compares pattern to path one segment at a time. With prefix set, path
// must be strictly deeper than pattern.
func matchSegments(pattern, path []string, prefix bool) bool {
	if prefix {
		if len(path) <= len(pattern) {
			return false
		}
	} else if len(path) != len(pattern) {
		return false
	}
	for i, seg := range pattern {
		if seg != "*" && seg != path[i] {
			return false
		}
	}
	return true
}
