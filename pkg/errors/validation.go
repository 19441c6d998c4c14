package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// tagPattern is the recommended form for driving-template tags: <mytagname>.
var tagPattern = regexp.MustCompile(`^<.*>$`)

// ValidTag reports whether a driving-template tag matches the recommended
// <mytagname> form. Malformed tags are warned about by the substitution
// engine but substitution is still attempted, so this is advisory.
func ValidTag(tag string) bool {
	return tagPattern.MatchString(strings.TrimSpace(tag))
}

// ValidateDatasetPath validates a hierarchical dataset path for safety and
// correctness. The empty path and "/" are legal (they mean "absent") and are
// accepted here; callers decide whether an absent path is allowed.
//
// The validation rules are intentionally conservative:
//   - No control characters or null bytes
//   - No parent-directory sequences
//   - Maximum length of 500 characters
func ValidateDatasetPath(path string) error {
	if len(path) > 500 {
		return New(ErrCodeInvalidConfig, "dataset path too long (max 500 characters): %q", path[:40]+"...")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "dataset path contains control characters: %q", path)
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidConfig, "dataset path contains parent traversal: %q", path)
	}

	return nil
}

// ValidateDataName validates a VTK data name (attribute or field-array name).
// Names end up verbatim in the grid output header lines, so whitespace or
// control characters would corrupt the format.
func ValidateDataName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "data name cannot be empty")
	}

	if strings.ContainsAny(name, " \t\n\r") {
		return New(ErrCodeInvalidConfig, "data name cannot contain whitespace: %q", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "data name contains control characters: %q", name)
		}
	}

	return nil
}
