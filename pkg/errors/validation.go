package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// MaxDocumentNameLength bounds workspace document names.
const MaxDocumentNameLength = 128

// documentNameRegex matches workspace document names: letters, digits, dot,
// dash and underscore, starting with a letter or digit.
var documentNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDocumentName validates the name of a workspace document. Names
// map directly to file names, so the rules are conservative:
//   - No empty names
//   - Maximum length of MaxDocumentNameLength characters
//   - No path separators or traversal sequences
//   - No hidden names (leading dot)
//   - No ".json" suffix, which the workspace adds itself
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "document name cannot be empty")
	}

	if len(name) > MaxDocumentNameLength {
		return New(ErrCodeInvalidName, "document name too long (max %d characters)", MaxDocumentNameLength)
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "document name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "document name cannot contain %q", "..")
	}

	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return New(ErrCodeInvalidName, "document name must not include the .json extension")
	}

	if !documentNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid document name: %q", name)
	}

	return nil
}

// ValidatePath validates the path of a document file given on the command
// line or in configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must name a file with a .json extension
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return New(ErrCodeInvalidPath, "document files must have a .json extension: %q", path)
	}

	return nil
}
