package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateGeneratorName validates a move name used as a generator label.
// Names appear inside rendered words, so they must not collide with the
// word syntax:
//   - No empty names
//   - No whitespace or control characters
//   - No "." (the letter separator)
//   - No leading "-" (the inverse marker)
//   - Maximum length of 64 characters
func ValidateGeneratorName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "generator name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "generator name too long (max 64 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "generator name %q contains whitespace or control characters", name)
		}
	}

	if strings.Contains(name, ".") {
		return New(ErrCodeInvalidInput, "generator name %q cannot contain '.'", name)
	}

	if strings.HasPrefix(name, "-") {
		return New(ErrCodeInvalidInput, "generator name %q cannot start with '-'", name)
	}

	return nil
}

// definitionNameRegex matches puzzle definition names usable as cache keys
// and file names.
var definitionNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDefinitionName validates the name of a puzzle definition.
func ValidateDefinitionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "definition name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "definition name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "definition name cannot contain path traversal sequences (..)")
	}
	if !definitionNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid definition name: %q", name)
	}
	return nil
}

// ValidatePath validates a table or definition path given on the command
// line or in an API request.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
