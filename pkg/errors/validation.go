package errors

import (
	"strings"
	"unicode"
)

// MaxColumnNameLength bounds user-supplied column names (derived columns).
const MaxColumnNameLength = 256

// ValidateColumnName validates a user-supplied column name, such as the
// target of a derived column. Names from uploaded files are not checked.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidColumn, "column name cannot be empty")
	}

	if len(name) > MaxColumnNameLength {
		return New(ErrCodeInvalidColumn, "column name too long (max %d characters)", MaxColumnNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidColumn, "column name contains invalid control characters")
		}
	}

	return nil
}

// ValidateUploadFilename validates the declared filename of an uploaded
// dataset. It must be a plain basename with a supported extension.
func ValidateUploadFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidFile, "filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidFile, "filename cannot contain path separators")
	}

	if strings.ContainsRune(filename, 0) {
		return New(ErrCodeInvalidFile, "filename contains invalid characters")
	}

	lower := strings.ToLower(filename)
	if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".txt") {
		return New(ErrCodeInvalidFile, "unsupported file type %q (want .csv or .xlsx)", filename)
	}

	return nil
}

// ValidatePath validates a local output path for safety.
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
