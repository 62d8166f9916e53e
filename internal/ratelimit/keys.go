// Package ratelimit builds the rate-limit keys consumed by the gateway-level
// limiter and records hits against them. Enforcement (thresholds, windows,
// 429s) lives outside this service.
package ratelimit

import (
	"fmt"
	"strings"
)

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// to prevent key collision attacks where user-controlled identifiers
// containing ':' could manipulate adjacent rate limit buckets.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// Key builds the canonical rate-limit key for an action/ip pair.
func Key(action, ip string) string {
	return fmt.Sprintf("rate_limit:%s:%s", SanitizeKeySegment(action), SanitizeKeySegment(ip))
}
