package errors

import (
	"strings"
	"unicode"
)

// ValidateRepoKey validates a repository identifier for safety and correctness.
// It rejects keys that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty keys
//   - No control characters
//   - No path traversal sequences (.., //)
//   - No null bytes or backslashes
//   - Maximum length of 256 characters
func ValidateRepoKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidRepo, "repository key cannot be empty")
	}

	if len(key) > 256 {
		return New(ErrCodeInvalidRepo, "repository key too long (max 256 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRepo, "repository key contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidRepo, "repository key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateListLimit validates a list page size for operation queries.
// The accepted range is 1..500.
func ValidateListLimit(limit int) error {
	if limit < 1 || limit > 500 {
		return New(ErrCodeInvalidLimit, "limit must be between 1 and 500, got %d", limit)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
