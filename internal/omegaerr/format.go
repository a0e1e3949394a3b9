package omegaerr

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Sensitive patterns to redact before any message or context field
// reaches a log line. Provider API keys (hosted mode) are the main
// source of leakage risk in this module; the rest are carried over from
// general-purpose hygiene so that a caller embedding OMEGA behind a
// service does not need a second redaction pass.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]?\s*)["']?[a-zA-Z0-9_\-]{8,}["']?`),
	regexp.MustCompile(`(?i)(bearer\s+)["']?[a-zA-Z0-9_\-\.]{10,}["']?`),
	regexp.MustCompile(`(?i)(token\s*[:=]?\s*)["']?[a-zA-Z0-9_\-]{8,}["']?`),
	regexp.MustCompile(`(?i)(secret\s*[:=]?\s*)["']?[a-zA-Z0-9_\-]{4,}["']?`),
	regexp.MustCompile(`(?i)(password\s*[:=]\s*)["']?[^\s"']+["']?`),
	regexp.MustCompile(`(?i)(https?://)[a-zA-Z0-9_\-]+:[^@\s"']+@[^\s"']+`),
}

// Redact removes sensitive information from a string, replacing matches
// with [REDACTED].
func Redact(s string) string {
	if s == "" {
		return s
	}
	result := s
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}

// RedactMap redacts all values in a map.
func RedactMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = Redact(v)
	}
	return result
}

// FormatSafe returns a safe string representation of an error for
// logging, never including internal cause details for non-OmegaErrors.
func FormatSafe(err error) string {
	if err == nil {
		return ""
	}
	if oe, ok := err.(*OmegaError); ok {
		return oe.SafeError()
	}
	return Redact(err.Error())
}

// FormatJSON returns a JSON representation of the error, safe for logging.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return []byte("null"), nil
	}
	if oe, ok := err.(*OmegaError); ok {
		return json.Marshal(oe)
	}
	safe := map[string]interface{}{
		"code":    string(CodeUnknown),
		"message": Redact(err.Error()),
	}
	return json.Marshal(safe)
}

func FormatJSONString(err error) string {
	b, e := FormatJSON(err)
	if e != nil {
		return ""
	}
	return string(b)
}

// Truncate truncates a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// SanitizeContextKey keeps only alphanumeric, underscore, hyphen, and dot.
func SanitizeContextKey(key string) string {
	var result strings.Builder
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.' {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}
	return result.String()
}
