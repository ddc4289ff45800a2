package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds block, joint, and connection identifiers.
const maxIDLength = 128

// ValidateID validates a block, joint, or connection identifier.
// kind names the element in the error message (e.g. "block", "joint").
//
// The rules are conservative so ids can be embedded in SVG element ids and
// URL paths unescaped:
//   - No empty ids
//   - Maximum length of 128 characters
//   - No whitespace or control characters
//   - No path separators or quotes
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "%s id cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidGraph, "%s id too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidGraph, "%s id %q contains whitespace or control characters", kind, id)
		}
	}

	if strings.ContainsAny(id, `/\"'<>&`) {
		return New(ErrCodeInvalidGraph, "%s id %q contains reserved characters", kind, id)
	}

	return nil
}

// ValidatePath validates a graph or output file path supplied on the command
// line or to the HTTP editor.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
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
