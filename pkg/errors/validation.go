package errors

import (
	"strings"
	"unicode"
)

// ValidateTraceName validates a trace name used to register or look up a
// trace in the catalog. It rejects names that could be used for path
// traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateTraceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTrace, "trace name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidTrace, "trace name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTrace, "trace name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidTrace, "trace name cannot contain path components")
	}

	return nil
}

// ValidateTracePath validates a trace file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateTracePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
