// Package naming validates user supplied folder and file names against the
// rules shared by every client surface: length, forbidden characters and
// reserved device names.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var ErrInvalidName = errors.New("invalid name")

const forbiddenChars = `/\:*?"<>|`

const maxNameLength = 255

var reservedNames = func() map[string]struct{} {
	names := []string{"CON", "PRN", "AUX", "NUL"}
	for i := 1; i <= 9; i++ {
		names = append(names, fmt.Sprintf("COM%d", i), fmt.Sprintf("LPT%d", i))
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}()

// Validate rejects names that would be unrepresentable on client
// filesystems. Errors wrap ErrInvalidName and name the violated rule.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidName, maxNameLength)
	}
	if i := strings.IndexAny(name, forbiddenChars); i >= 0 {
		return fmt.Errorf("%w: name must not contain %q", ErrInvalidName, name[i:i+1])
	}
	base := strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name)))
	if _, ok := reservedNames[base]; ok {
		return fmt.Errorf("%w: %q is a reserved name", ErrInvalidName, name)
	}
	if _, ok := reservedNames[strings.ToUpper(name)]; ok {
		return fmt.Errorf("%w: %q is a reserved name", ErrInvalidName, name)
	}
	return nil
}

// Extension returns the lowercased extension of name without the leading
// dot, or "" when the name has none.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}
